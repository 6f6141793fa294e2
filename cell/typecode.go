// Package cell implements the HC wire value codec: a length-bounded
// buffer with independent read/write cursors and a canonical,
// type-tag-prefixed byte representation for every scalar, vector,
// array, and string kind the parameter tree supports.
package cell

// TypeCode is the one-byte tag that precedes every value on the wire.
type TypeCode byte

// Scalar and vector type codes. Numeric assignments are part of the
// wire contract and must stay stable across compatible builds.
const (
	Bool   TypeCode = 0x00
	Int8   TypeCode = 0x01
	Int16  TypeCode = 0x02
	Int32  TypeCode = 0x03
	Int64  TypeCode = 0x04
	Uint8  TypeCode = 0x05
	Uint16 TypeCode = 0x06
	Uint32 TypeCode = 0x07
	Uint64 TypeCode = 0x08
	Float  TypeCode = 0x09
	Double TypeCode = 0x0A
	IPv4   TypeCode = 0x0B

	Vec2F TypeCode = 0x10
	Vec3F TypeCode = 0x11
	Vec2D TypeCode = 0x12
	Vec3D TypeCode = 0x13

	String TypeCode = 0x14

	File TypeCode = 0x20

	// Fixed-length integer array family.
	Int8Arr   TypeCode = 0x30
	Int16Arr  TypeCode = 0x31
	Int32Arr  TypeCode = 0x32
	Int64Arr  TypeCode = 0x33
	Uint8Arr  TypeCode = 0x34
	Uint16Arr TypeCode = 0x35
	Uint32Arr TypeCode = 0x36
	Uint64Arr TypeCode = 0x37

	// tblTag/lstTag mark a scalar-family value as originating from a
	// tabular or list-kind parameter, so a self-describing cell can be
	// sanity-checked against the parameter kind it targets without
	// consulting the opcode.
	tblTag TypeCode = 0x40
	lstTag TypeCode = 0x80

	Call TypeCode = 0xFF
)

// AsTabular returns the tabular-tagged variant of a scalar type code.
func (sf TypeCode) AsTabular() TypeCode {
	return sf | tblTag
}

// AsList returns the list-tagged variant of a scalar type code.
func (sf TypeCode) AsList() TypeCode {
	return sf | lstTag
}

// Base strips any tabular/list tag bits, returning the underlying
// scalar type code.
func (sf TypeCode) Base() TypeCode {
	return sf &^ (tblTag | lstTag)
}

// IsTabular reports whether the tabular tag bit is set.
func (sf TypeCode) IsTabular() bool {
	return sf&tblTag != 0 && sf&lstTag == 0 && sf != Call
}

// IsList reports whether the list tag bit is set.
func (sf TypeCode) IsList() bool {
	return sf&lstTag != 0 && sf != Call
}

var typeCodeNames = map[TypeCode]string{
	Bool: "BOOL", Int8: "INT8", Int16: "INT16", Int32: "INT32", Int64: "INT64",
	Uint8: "UINT8", Uint16: "UINT16", Uint32: "UINT32", Uint64: "UINT64",
	Float: "FLOAT", Double: "DOUBLE", IPv4: "IPV4",
	Vec2F: "VEC2F", Vec3F: "VEC3F", Vec2D: "VEC2D", Vec3D: "VEC3D",
	String: "STRING", File: "FILE",
	Int8Arr: "INT8ARR", Int16Arr: "INT16ARR", Int32Arr: "INT32ARR", Int64Arr: "INT64ARR",
	Uint8Arr: "UINT8ARR", Uint16Arr: "UINT16ARR", Uint32Arr: "UINT32ARR", Uint64Arr: "UINT64ARR",
	Call: "CALL",
}

// String renders the base type name, noting a tabular/list tag if set.
func (sf TypeCode) String() string {
	name, ok := typeCodeNames[sf.Base()]
	if !ok {
		name = "UNKNOWN"
	}
	switch {
	case sf.IsTabular():
		return name + "TBL"
	case sf.IsList():
		return name + "LST"
	default:
		return name
	}
}

// fixedWidth returns the static encoded byte width of type codes whose
// size does not depend on their content, and false for variable-width
// types (String, the *Arr family) whose width requires reading a
// length prefix.
func fixedWidth(t TypeCode) (int, bool) {
	switch t.Base() {
	case Bool, Int8, Uint8:
		return 1, true
	case Int16, Uint16:
		return 2, true
	case Int32, Uint32, Float, IPv4:
		return 4, true
	case Int64, Uint64, Double:
		return 8, true
	case Vec2F:
		return 8, true
	case Vec3F:
		return 12, true
	case Vec2D:
		return 16, true
	case Vec3D:
		return 24, true
	case Call:
		return 0, true
	default:
		return 0, false
	}
}
