package hctree

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LineExecutor runs one line of the shell command grammar, satisfied
// by shell.Processor. Defining the narrow interface here instead of
// importing shell avoids a cycle (shell imports hctree to walk the
// tree); LoadValues only needs the one method.
type LineExecutor interface {
	Execute(line string) error
}

// SaveValues serializes the current value of every writable scalar or
// string parameter in the subtree rooted at top as one "path = value"
// line per entry, matching the format LoadValues (and the interactive
// shell's "save"/"load" commands) replay.
func SaveValues(top *Container, w io.Writer) error {
	bw := bufio.NewWriter(w)
	var walk func(c *Container) error
	walk = func(c *Container) error {
		for _, p := range c.params {
			if p.kind != KindScalar || p.access&Writable == 0 {
				continue
			}
			val, code := p.GetStr()
			if code != 0 {
				continue
			}
			if _, err := fmt.Fprintf(bw, "%s = %s\n", p.Path(), val); err != nil {
				return err
			}
		}
		for _, child := range c.conts {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(top); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadValues replays every non-comment, non-blank line of r through
// ex, the same grammar the interactive shell uses for a P=N/P="S"
// assignment. A '#' as the first non-whitespace character marks a
// comment line.
func LoadValues(ex LineExecutor, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ex.Execute(line); err != nil {
			return err
		}
	}
	return sc.Err()
}
