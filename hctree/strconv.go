package hctree

import (
	"fmt"
	"strconv"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// This file implements the text <-> wire-value conversions the shell
// grammar needs (P=N, P="S", P[I]=N, ...), generalized across every
// scalar type code from a single set of methods instead of a
// parse-function per concrete type, grounded in hcconsole.cc's
// ParamCmdProc dispatch (spec §6).

// GetStr renders the parameter's current value as text, preferring a
// value-enum label over the raw number when one is registered.
func (sf *Parameter) GetStr() (string, hcerr.Code) {
	out := cell.New()
	if code := sf.GetCell(out); code != hcerr.None {
		return "", code
	}
	in := cell.Wrap(out.Bytes())
	return sf.formatFrom(in)
}

func (sf *Parameter) formatFrom(in *cell.Cell) (string, hcerr.Code) {
	switch sf.typ.Base() {
	case cell.Bool:
		v, err := in.DecodeBool()
		if err != nil {
			return "", hcerr.Type
		}
		return strconv.FormatBool(v), hcerr.None
	case cell.Int8:
		v, err := in.DecodeInt8()
		if err != nil {
			return "", hcerr.Type
		}
		return sf.labelOrInt(int64(v)), hcerr.None
	case cell.Uint8:
		v, err := in.DecodeUint8()
		if err != nil {
			return "", hcerr.Type
		}
		return sf.labelOrInt(int64(v)), hcerr.None
	case cell.Int16:
		v, err := in.DecodeInt16()
		if err != nil {
			return "", hcerr.Type
		}
		return sf.labelOrInt(int64(v)), hcerr.None
	case cell.Uint16:
		v, err := in.DecodeUint16()
		if err != nil {
			return "", hcerr.Type
		}
		return sf.labelOrInt(int64(v)), hcerr.None
	case cell.Int32:
		v, err := in.DecodeInt32()
		if err != nil {
			return "", hcerr.Type
		}
		return sf.labelOrInt(int64(v)), hcerr.None
	case cell.Uint32:
		v, err := in.DecodeUint32()
		if err != nil {
			return "", hcerr.Type
		}
		return sf.labelOrInt(int64(v)), hcerr.None
	case cell.Int64:
		v, err := in.DecodeInt64()
		if err != nil {
			return "", hcerr.Type
		}
		return sf.labelOrInt(v), hcerr.None
	case cell.Uint64:
		v, err := in.DecodeUint64()
		if err != nil {
			return "", hcerr.Type
		}
		return sf.labelOrInt(int64(v)), hcerr.None
	case cell.Float:
		v, err := in.DecodeFloat()
		if err != nil {
			return "", hcerr.Type
		}
		return strconv.FormatFloat(float64(v), 'g', -1, 32), hcerr.None
	case cell.Double:
		v, err := in.DecodeDouble()
		if err != nil {
			return "", hcerr.Type
		}
		return strconv.FormatFloat(v, 'g', -1, 64), hcerr.None
	case cell.IPv4:
		v, err := in.DecodeIPv4()
		if err != nil {
			return "", hcerr.Type
		}
		return fmt.Sprintf("%d.%d.%d.%d", byte(v>>24), byte(v>>16), byte(v>>8), byte(v)), hcerr.None
	case cell.String:
		v, err := in.DecodeString()
		if err != nil {
			return "", hcerr.Type
		}
		return v, hcerr.None
	default:
		return "", hcerr.Type
	}
}

func (sf *Parameter) labelOrInt(v int64) string {
	if sf.valueEnum != nil {
		if label, ok := sf.valueEnum[v]; ok {
			return label
		}
	}
	return strconv.FormatInt(v, 10)
}

// encodeNative parses s as a native numeric/boolean literal of the
// parameter's type and appends it to c, the mirror of formatFrom.
func (sf *Parameter) encodeNative(c *cell.Cell, s string) hcerr.Code {
	switch sf.typ.Base() {
	case cell.Bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendBool(v)
	case cell.Int8:
		v, err := strconv.ParseInt(s, 0, 8)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendInt8(int8(v))
	case cell.Uint8:
		v, err := strconv.ParseUint(s, 0, 8)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendUint8(uint8(v))
	case cell.Int16:
		v, err := strconv.ParseInt(s, 0, 16)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendInt16(int16(v))
	case cell.Uint16:
		v, err := strconv.ParseUint(s, 0, 16)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendUint16(uint16(v))
	case cell.Int32:
		v, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendInt32(int32(v))
	case cell.Uint32:
		v, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendUint32(uint32(v))
	case cell.Int64:
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendInt64(v)
	case cell.Uint64:
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendUint64(v)
	case cell.Float:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendFloat(float32(v))
	case cell.Double:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return hcerr.Pattern
		}
		c.AppendDouble(v)
	case cell.IPv4:
		var a, b, d, e uint32
		if _, err := fmt.Sscanf(s, "%d.%d.%d.%d", &a, &b, &d, &e); err != nil {
			return hcerr.Pattern
		}
		c.AppendIPv4(a<<24 | b<<16 | d<<8 | e)
	case cell.String:
		c.AppendString(s)
	default:
		return hcerr.Type
	}
	return c.Err()
}

// SetStr parses s as a native numeric/boolean literal and sets the
// parameter's value, the P=N shell pattern.
func (sf *Parameter) SetStr(s string) hcerr.Code {
	c := cell.New()
	if code := sf.encodeNative(c, s); code != hcerr.None {
		return code
	}
	return sf.SetCell(cell.Wrap(c.Bytes()))
}

// SetStrLit sets the parameter's value from a quoted-string literal:
// a registered value-enum label if one matches s, otherwise a literal
// string value (only valid for String-typed parameters), the P="S"
// shell pattern.
func (sf *Parameter) SetStrLit(s string) hcerr.Code {
	if sf.valueEnumRev != nil {
		if n, ok := sf.valueEnumRev[s]; ok {
			return sf.setIntLiteral(n)
		}
	}
	if sf.typ.Base() != cell.String {
		return hcerr.Pattern
	}
	c := cell.New()
	c.AppendString(s)
	if code := c.Err(); code != hcerr.None {
		return code
	}
	return sf.SetCell(cell.Wrap(c.Bytes()))
}

func (sf *Parameter) setIntLiteral(n int64) hcerr.Code {
	c := cell.New()
	switch sf.typ.Base() {
	case cell.Int8:
		c.AppendInt8(int8(n))
	case cell.Uint8:
		c.AppendUint8(uint8(n))
	case cell.Int16:
		c.AppendInt16(int16(n))
	case cell.Uint16:
		c.AppendUint16(uint16(n))
	case cell.Int32:
		c.AppendInt32(int32(n))
	case cell.Uint32:
		c.AppendUint32(uint32(n))
	case cell.Int64:
		c.AppendInt64(n)
	case cell.Uint64:
		c.AppendUint64(uint64(n))
	default:
		return hcerr.Type
	}
	return sf.SetCell(cell.Wrap(c.Bytes()))
}

// AddStr parses s natively and adds it to a list-kind parameter, the
// P<N shell pattern.
func (sf *Parameter) AddStr(s string) hcerr.Code {
	c := cell.New()
	if code := sf.encodeNative(c, s); code != hcerr.None {
		return code
	}
	return sf.AddCell(cell.Wrap(c.Bytes()))
}

// SubStr parses s natively and subtracts it from a list-kind
// parameter, the P>N shell pattern.
func (sf *Parameter) SubStr(s string) hcerr.Code {
	c := cell.New()
	if code := sf.encodeNative(c, s); code != hcerr.None {
		return code
	}
	return sf.SubCell(cell.Wrap(c.Bytes()))
}

// AddStrLit adds a quoted-string literal (enum label or literal
// string) to a list-kind parameter, the P<"S" shell pattern.
func (sf *Parameter) AddStrLit(s string) hcerr.Code {
	c := cell.New()
	if sf.valueEnumRev != nil {
		if n, ok := sf.valueEnumRev[s]; ok {
			if code := sf.encodeIntLiteral(c, n); code != hcerr.None {
				return code
			}
			return sf.AddCell(cell.Wrap(c.Bytes()))
		}
	}
	if sf.typ.Base() != cell.String {
		return hcerr.Pattern
	}
	c.AppendString(s)
	if code := c.Err(); code != hcerr.None {
		return code
	}
	return sf.AddCell(cell.Wrap(c.Bytes()))
}

// SubStrLit subtracts a quoted-string literal from a list-kind
// parameter, the P>"S" shell pattern.
func (sf *Parameter) SubStrLit(s string) hcerr.Code {
	c := cell.New()
	if sf.valueEnumRev != nil {
		if n, ok := sf.valueEnumRev[s]; ok {
			if code := sf.encodeIntLiteral(c, n); code != hcerr.None {
				return code
			}
			return sf.SubCell(cell.Wrap(c.Bytes()))
		}
	}
	if sf.typ.Base() != cell.String {
		return hcerr.Pattern
	}
	c.AppendString(s)
	if code := c.Err(); code != hcerr.None {
		return code
	}
	return sf.SubCell(cell.Wrap(c.Bytes()))
}

func (sf *Parameter) encodeIntLiteral(c *cell.Cell, n int64) hcerr.Code {
	switch sf.typ.Base() {
	case cell.Int8:
		c.AppendInt8(int8(n))
	case cell.Uint8:
		c.AppendUint8(uint8(n))
	case cell.Int16:
		c.AppendInt16(int16(n))
	case cell.Uint16:
		c.AppendUint16(uint16(n))
	case cell.Int32:
		c.AppendInt32(int32(n))
	case cell.Uint32:
		c.AppendUint32(uint32(n))
	case cell.Int64:
		c.AppendInt64(n)
	case cell.Uint64:
		c.AppendUint64(uint64(n))
	default:
		return hcerr.Type
	}
	return hcerr.None
}

// Call invokes a callable-kind parameter, the P() shell pattern.
func (sf *Parameter) Call() hcerr.Code {
	return sf.CallCell()
}

// CallTbl invokes a callable-kind parameter at a specific EID, the
// P(I) shell pattern.
func (sf *Parameter) CallTbl(eid uint32) hcerr.Code {
	return sf.CallCellTbl(eid)
}

// SetStrTbl parses s natively and writes it to a tabular parameter's
// row, the P[I]=N shell pattern.
func (sf *Parameter) SetStrTbl(eid uint32, s string) hcerr.Code {
	c := cell.New()
	if code := sf.encodeNative(c, s); code != hcerr.None {
		return code
	}
	return sf.SetCellTbl(eid, cell.Wrap(c.Bytes()))
}

// SetStrLitTbl writes a quoted-string literal to a tabular parameter's
// row, the P[I]="S" shell pattern.
func (sf *Parameter) SetStrLitTbl(eid uint32, s string) hcerr.Code {
	c := cell.New()
	if sf.valueEnumRev != nil {
		if n, ok := sf.valueEnumRev[s]; ok {
			if code := sf.encodeIntLiteral(c, n); code != hcerr.None {
				return code
			}
			return sf.SetCellTbl(eid, cell.Wrap(c.Bytes()))
		}
	}
	if sf.typ.Base() != cell.String {
		return hcerr.Pattern
	}
	c.AppendString(s)
	if code := c.Err(); code != hcerr.None {
		return code
	}
	return sf.SetCellTbl(eid, cell.Wrap(c.Bytes()))
}

// EIDStrToNum resolves a quoted EID-enum label to its numeric EID.
func (sf *Parameter) EIDStrToNum(s string) (uint32, bool) {
	if sf.eidEnumRev == nil {
		return 0, false
	}
	eid, ok := sf.eidEnumRev[s]
	return eid, ok
}
