// Package hcerr defines the HC protocol error enumeration: a small set
// of negative integer codes that travel on the wire as a signed byte
// and satisfy the standard error interface so they compose with
// errors.Is/errors.As at Go API boundaries.
package hcerr

// Code is a wire error code. NONE (0) is the only non-negative value,
// which lets callers use the idiomatic `if err != hcerr.None` check
// the teacher's ERR_NONE convention is built around.
type Code int8

// The full error enumeration. Numbering is part of the wire contract
// and must not change.
const (
	None      Code = 0
	Unspec    Code = -1
	Timeout   Code = -2
	Owner     Code = -3
	Reset     Code = -4
	Destroyed Code = -5
	Overflow  Code = -6
	Type      Code = -7
	Pattern   Code = -8
	Access    Code = -9
	Range     Code = -10
	Step      Code = -11
	Invalid   Code = -12
	Alignment Code = -13
	Deser     Code = -14
	Opcode    Code = -15
	Pid       Code = -16
	Eid       Code = -17
	NotFound  Code = -18
	Unknown   Code = -19 // must stay last
)

var names = [...]string{
	"NONE",
	"UNSPEC",
	"TIMEOUT",
	"OWNER",
	"RESET",
	"DESTROYED",
	"OVERFLOW",
	"TYPE",
	"PATTERN",
	"ACCESS",
	"RANGE",
	"STEP",
	"INVALID",
	"ALIGNMENT",
	"DESER",
	"OPCODE",
	"PID",
	"EID",
	"NOTFOUND",
	"UNKNOWN",
}

// String renders the mnemonic name, clamping anything outside the
// defined range to UNKNOWN.
func (sf Code) String() string {
	if sf > 0 || sf < Unknown {
		sf = Unknown
	}
	return names[-sf]
}

// Error implements the error interface so Code can be returned and
// compared directly as a Go error.
func (sf Code) Error() string {
	return sf.String()
}

// Ok reports whether the code is None.
func (sf Code) Ok() bool {
	return sf == None
}

// Taxonomy groups, per spec §7.
type Taxonomy int

const (
	TaxonomyWire Taxonomy = iota
	TaxonomyAccess
	TaxonomyTransport
)

// Group classifies a code into one of the three error taxonomies
// described in the error handling design.
func (sf Code) Group() Taxonomy {
	switch sf {
	case Deser, Overflow, Alignment, Opcode, Type:
		return TaxonomyWire
	case Access, Pid, Eid, NotFound, Range, Step, Pattern:
		return TaxonomyAccess
	default:
		return TaxonomyTransport
	}
}
