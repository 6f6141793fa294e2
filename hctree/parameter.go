package hctree

import (
	"math"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// Access is a bitset of the operations a parameter supports, per
// spec §3.
type Access uint8

const (
	Readable Access = 1 << iota
	Writable
	Invokable
	TabularAccess
	FileAccess
)

// Kind distinguishes the five parameter shapes. Each kind populates a
// different subset of handlerSet's closures; everything else answers
// hcerr.Access, replacing what would be a virtual-method-per-subclass
// hierarchy with one struct and a tag.
type Kind int

const (
	KindScalar Kind = iota
	KindTabular
	KindList
	KindFile
	KindCallable
)

// pidUnassigned marks a Parameter that has not yet been registered
// with a server.
const pidUnassigned = ^uint16(0)

// Parameter is a named leaf of the tree: metadata (type, access, PID,
// optional enum tables, scale, bounds) plus a Handlers implementation
// supplied by its owner. See hctree.Handlers for the wire-facing
// dispatch contract.
type Parameter struct {
	handlerSet

	name   string
	owner  *Container
	pid    uint16
	typ    cell.TypeCode
	access Access
	kind   Kind

	valueEnum    map[int64]string
	valueEnumRev map[string]int64
	eidEnum      map[uint32]string
	eidEnumRev   map[string]uint32

	scale          float64
	hasMinMax      bool
	min, max, step float64
}

var _ Handlers = (*Parameter)(nil)

// Name returns the parameter's name.
func (sf *Parameter) Name() string { return sf.name }

// Owner returns the container the parameter is registered under.
func (sf *Parameter) Owner() *Container { return sf.owner }

// Path returns the parameter's absolute path, e.g. "/sys/net/ip".
func (sf *Parameter) Path() string {
	if sf.owner == nil {
		return "/" + sf.name
	}
	if sf.owner.IsRoot() {
		return "/" + sf.name
	}
	return sf.owner.Path() + "/" + sf.name
}

// Type returns the parameter's wire type code.
func (sf *Parameter) Type() cell.TypeCode { return sf.typ }

// Kind returns the parameter's kind.
func (sf *Parameter) Kind() Kind { return sf.kind }

// Access returns the parameter's access bitset.
func (sf *Parameter) Access() Access { return sf.access }

// PID returns the parameter's server-assigned id, or pidUnassigned if
// it has not yet been registered.
func (sf *Parameter) PID() uint16 { return sf.pid }

// Assigned reports whether a server has assigned this parameter a
// PID.
func (sf *Parameter) Assigned() bool { return sf.pid != pidUnassigned }

// SetPID is called exactly once, by hcserver.Server.Add, to bind this
// parameter to a PID for the lifetime of that server.
func (sf *Parameter) SetPID(pid uint16) { sf.pid = pid }

// SetValueEnum installs the integer-to-symbol table used for
// scalar-valued parameters whose codomain is a labelled set; it also
// builds the reverse lookup used by SetStrLit/GetStr.
func (sf *Parameter) SetValueEnum(table map[int64]string) {
	sf.valueEnum = table
	sf.valueEnumRev = make(map[string]int64, len(table))
	for k, v := range table {
		sf.valueEnumRev[v] = k
	}
}

// SetEIDEnum installs the EID-to-symbol table used for addressing
// rows of a tabular parameter by name.
func (sf *Parameter) SetEIDEnum(table map[uint32]string) {
	sf.eidEnum = table
	sf.eidEnumRev = make(map[string]uint32, len(table))
	for k, v := range table {
		sf.eidEnumRev[v] = k
	}
}

// SetScale installs the wire-to-presented multiplier for numeric
// kinds: value-on-wire * scale = value-as-presented.
func (sf *Parameter) SetScale(scale float64) { sf.scale = scale }

// SetBounds installs inclusive min/max and a step quantum, checked in
// presented units before a numeric parameter's Set/ISet handler runs.
func (sf *Parameter) SetBounds(min, max, step float64) {
	sf.hasMinMax = true
	sf.min, sf.max, sf.step = min, max, step
}

func (sf *Parameter) effectiveScale() float64 {
	if sf.scale == 0 {
		return 1
	}
	return sf.scale
}

// checkBounds validates a presented (post-scale) numeric value against
// the configured min/max/step, per the "checked before the set
// handler runs" requirement.
func (sf *Parameter) checkBounds(presented float64) hcerr.Code {
	if !sf.hasMinMax {
		return hcerr.None
	}
	if presented < sf.min || presented > sf.max {
		return hcerr.Range
	}
	if sf.step > 0 {
		steps := (presented - sf.min) / sf.step
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			return hcerr.Step
		}
	}
	return hcerr.None
}

// newBase constructs the metadata shared by every kind. Callers
// populate handlerSet afterward with the closures their kind
// supports.
func newBase(name string, typ cell.TypeCode, access Access, kind Kind) (*Parameter, error) {
	if !validName(name) {
		return nil, errInvalidName(name)
	}
	return &Parameter{name: name, typ: typ, access: access, kind: kind, pid: pidUnassigned}, nil
}
