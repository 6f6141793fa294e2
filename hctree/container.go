package hctree

import (
	"sort"
	"strings"
)

// Container is a named inner node of the parameter tree. The root
// container's name is the empty string and its parent is nil; every
// other container has a non-empty name, unique among its siblings.
type Container struct {
	name   string
	parent *Container
	conts  []*Container
	params []*Parameter
}

// NewRoot returns an unattached root container, suitable as the
// dummy top a client uses to anchor PID-addressed operations or as
// the real top container a server builds its schema under.
func NewRoot() *Container {
	return &Container{}
}

// NewContainer returns an unattached container with the given name.
// Attach it to a parent with AddContainer.
func NewContainer(name string) (*Container, error) {
	if !validName(name) {
		return nil, errInvalidName(name)
	}
	return &Container{name: name}, nil
}

// Name returns the container's name, empty for the root.
func (sf *Container) Name() string {
	return sf.name
}

// Parent returns the container's parent, nil for the root.
func (sf *Container) Parent() *Container {
	return sf.parent
}

// Containers returns the direct child containers in registration
// order.
func (sf *Container) Containers() []*Container {
	return sf.conts
}

// Parameters returns the direct child parameters in registration
// order.
func (sf *Container) Parameters() []*Parameter {
	return sf.params
}

// IsRoot reports whether this is a root container (no parent).
func (sf *Container) IsRoot() bool {
	return sf.parent == nil
}

// AddContainer links child under sf, failing if a sibling already
// uses that name.
func (sf *Container) AddContainer(child *Container) error {
	if child == nil {
		return errInvalidName("")
	}
	for _, c := range sf.conts {
		if c.name == child.name {
			return errDuplicateName(child.name)
		}
	}
	child.parent = sf
	sf.conts = append(sf.conts, child)
	return nil
}

// AddParameter links p under sf, failing if a sibling parameter
// already uses that name.
func (sf *Container) AddParameter(p *Parameter) error {
	if p == nil {
		return errInvalidName("")
	}
	for _, existing := range sf.params {
		if existing.name == p.name {
			return errDuplicateName(p.name)
		}
	}
	p.owner = sf
	sf.params = append(sf.params, p)
	return nil
}

// Path reconstructs the absolute path from the root to sf, e.g.
// "/sys/net/ip". The root's own path is "/".
func (sf *Container) Path() string {
	if sf.parent == nil {
		return "/"
	}
	var segs []string
	for c := sf; c.parent != nil; c = c.parent {
		segs = append([]string{c.name}, segs...)
	}
	return "/" + strings.Join(segs, "/")
}

// childContainer returns the direct child container named name, or
// nil.
func (sf *Container) childContainer(name string) *Container {
	for _, c := range sf.conts {
		if c.name == name {
			return c
		}
	}
	return nil
}

// childParameter returns the direct child parameter named name, or
// nil.
func (sf *Container) childParameter(name string) *Parameter {
	for _, p := range sf.params {
		if p.name == name {
			return p
		}
	}
	return nil
}

// Resolve walks path segment by segment starting at sf, exactly as
// the original GetCont: empty and "." segments are no-ops, ".." moves
// to the parent (or stays put at the root), everything else must
// match a child container by exact name. Returns nil if any segment
// fails to resolve.
func (sf *Container) Resolve(path string) *Container {
	cur := sf
	for _, seg := range splitPath(path) {
		switch seg {
		case "", ".":
			continue
		case "..":
			if cur.parent != nil {
				cur = cur.parent
			}
			continue
		default:
			next := cur.childContainer(seg)
			if next == nil {
				return nil
			}
			cur = next
		}
	}
	return cur
}

// ResolveParam resolves every directory segment of path like Resolve,
// then looks up the final segment as a parameter name in the
// resulting container. Returns nil if the directory portion or the
// parameter itself is not found.
func (sf *Container) ResolveParam(path string) *Parameter {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil
	}
	dir, leaf := segs[:len(segs)-1], segs[len(segs)-1]

	cur := sf
	for _, seg := range dir {
		switch seg {
		case "", ".":
			continue
		case "..":
			if cur.parent != nil {
				cur = cur.parent
			}
			continue
		default:
			next := cur.childContainer(seg)
			if next == nil {
				return nil
			}
			cur = next
		}
	}

	switch leaf {
	case "", ".", "..":
		return nil
	default:
		return cur.childParameter(leaf)
	}
}

func splitPath(path string) []string {
	return strings.Split(path, "/")
}

// Match reports whether a single path segment pattern containing '*'
// (any run, including empty) and '?' (exactly one character) matches
// name.
func Match(pattern, name string) bool {
	return matchGlob(pattern, name)
}

func matchGlob(pattern, name string) bool {
	if pattern == "" {
		return name == ""
	}
	switch pattern[0] {
	case '*':
		if matchGlob(pattern[1:], name) {
			return true
		}
		for i := 0; i < len(name); i++ {
			if matchGlob(pattern[1:], name[i+1:]) {
				return true
			}
		}
		return false
	case '?':
		if len(name) == 0 {
			return false
		}
		return matchGlob(pattern[1:], name[1:])
	default:
		if len(name) == 0 || name[0] != pattern[0] {
			return false
		}
		return matchGlob(pattern[1:], name[1:])
	}
}

// Listing is one matched entry returned by FindMatches/FindRecursive: a
// container or a parameter, never both.
type Listing struct {
	Path  string
	Cont  *Container
	Param *Parameter
}

// FindMatches glob-matches every segment of pattern starting at sf,
// fanning out across every container that matches an intermediate
// segment (unlike Resolve, which requires an exact name match at each
// segment), then glob-matches the final segment against the child
// containers and parameters of all surviving directories. This lets a
// pattern like "/sys/*/ip" match the "ip" parameter under every
// interface container, not just one named literally "*". Used by the
// shell's "ls"/"info" commands.
func (sf *Container) FindMatches(pattern string) []Listing {
	segs := splitPath(pattern)
	if len(segs) == 0 {
		return nil
	}
	dir, leaf := segs[:len(segs)-1], segs[len(segs)-1]

	cur := []*Container{sf}
	for _, seg := range dir {
		switch seg {
		case "", ".":
			continue
		case "..":
			next := make([]*Container, 0, len(cur))
			for _, c := range cur {
				if c.parent != nil {
					next = append(next, c.parent)
				} else {
					next = append(next, c)
				}
			}
			cur = next
		default:
			var next []*Container
			for _, c := range cur {
				for _, child := range c.conts {
					if matchGlob(seg, child.name) {
						next = append(next, child)
					}
				}
			}
			if len(next) == 0 {
				return nil
			}
			cur = next
		}
	}

	var out []Listing
	for _, c := range cur {
		for _, child := range c.conts {
			if matchGlob(leaf, child.name) {
				out = append(out, Listing{Path: child.Path(), Cont: child})
			}
		}
		for _, p := range c.params {
			if matchGlob(leaf, p.name) {
				out = append(out, Listing{Path: p.Path(), Param: p})
			}
		}
	}
	return out
}

// FindRecursive walks the whole subtree rooted at sf, glob-matching
// pattern against every container and parameter's own name
// (ignoring directory structure entirely), used by the shell's "find"
// command.
func (sf *Container) FindRecursive(pattern string) []Listing {
	var out []Listing
	var walk func(c *Container)
	walk = func(c *Container) {
		if c != sf && matchGlob(pattern, c.name) {
			out = append(out, Listing{Path: c.Path(), Cont: c})
		}
		for _, p := range c.params {
			if matchGlob(pattern, p.name) {
				out = append(out, Listing{Path: p.Path(), Param: p})
			}
		}
		for _, child := range c.conts {
			walk(child)
		}
	}
	walk(sf)
	return out
}

// NextCommonChar implements the interactive shell's tab-completion
// lookahead: given a partial final path segment, it resolves the
// directory portion starting at sf, collects every child container
// and parameter name with that prefix, and reports the next character
// they all agree on (so repeated tab presses walk one character at a
// time, same as the original console's GetNextCommonChar). ok is false
// when no candidate shares the prefix or candidates disagree on the
// next character.
func (sf *Container) NextCommonChar(partial string) (ch byte, ok bool) {
	segs := splitPath(partial)
	if len(segs) == 0 {
		return 0, false
	}
	dir, prefix := segs[:len(segs)-1], segs[len(segs)-1]

	cur := sf
	for _, seg := range dir {
		switch seg {
		case "", ".":
			continue
		case "..":
			if cur.parent != nil {
				cur = cur.parent
			}
			continue
		default:
			next := cur.childContainer(seg)
			if next == nil {
				return 0, false
			}
			cur = next
		}
	}

	var names []string
	for _, c := range cur.conts {
		names = append(names, c.name)
	}
	for _, p := range cur.params {
		names = append(names, p.name)
	}
	sort.Strings(names)

	found := false
	for _, n := range names {
		if len(n) <= len(prefix) || n[:len(prefix)] != prefix {
			continue
		}
		next := n[len(prefix)]
		if !found {
			ch, ok, found = next, true, true
			continue
		}
		if next != ch {
			return 0, false
		}
	}
	return ch, ok
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= ' ' || r > '~' {
			return false
		}
		switch r {
		case '/', '=', '<', '>', '(', ')', '[', ']', '@', '#', '"':
			return false
		}
	}
	return true
}
