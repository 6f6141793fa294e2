package hctree

import (
	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

func newNumericTabularParameter[T numeric](
	name string, typ cell.TypeCode, access Access,
	get func(eid uint32) (T, hcerr.Code), set func(eid uint32, v T) hcerr.Code,
	encode func(*cell.Cell, T) *cell.Cell,
	decode func(*cell.Cell) (T, error),
) (*Parameter, error) {
	p, err := newBase(name, typ, access, KindTabular)
	if err != nil {
		return nil, err
	}

	if access&Readable != 0 && get != nil {
		p.handlerSet.getTbl = func(eid uint32, out *cell.Cell) hcerr.Code {
			v, code := get(eid)
			if code != hcerr.None {
				return code
			}
			encode(out, v)
			return hcerr.None
		}
	}
	if access&Writable != 0 && set != nil {
		p.handlerSet.setTbl = func(eid uint32, in *cell.Cell) hcerr.Code {
			v, derr := decode(in)
			if derr != nil {
				if code, ok := derr.(hcerr.Code); ok {
					return code
				}
				return hcerr.Deser
			}
			if code := p.checkBounds(float64(v) * p.effectiveScale()); code != hcerr.None {
				return code
			}
			return set(eid, v)
		}
	}
	return p, nil
}

// NewInt32TabularParameter builds a tabular int32 parameter indexed by
// EID, e.g. one row of a table.
func NewInt32TabularParameter(name string, access Access, get func(eid uint32) (int32, hcerr.Code), set func(eid uint32, v int32) hcerr.Code) (*Parameter, error) {
	return newNumericTabularParameter(name, cell.Int32, access, get, set,
		(*cell.Cell).AppendInt32, (*cell.Cell).DecodeInt32)
}

// NewUint32TabularParameter builds a tabular uint32 parameter indexed
// by EID.
func NewUint32TabularParameter(name string, access Access, get func(eid uint32) (uint32, hcerr.Code), set func(eid uint32, v uint32) hcerr.Code) (*Parameter, error) {
	return newNumericTabularParameter(name, cell.Uint32, access, get, set,
		(*cell.Cell).AppendUint32, (*cell.Cell).DecodeUint32)
}

// NewFloatTabularParameter builds a tabular float32 parameter indexed
// by EID.
func NewFloatTabularParameter(name string, access Access, get func(eid uint32) (float32, hcerr.Code), set func(eid uint32, v float32) hcerr.Code) (*Parameter, error) {
	return newNumericTabularParameter(name, cell.Float, access, get, set,
		(*cell.Cell).AppendFloat, (*cell.Cell).DecodeFloat)
}

// NewStringTabularParameter builds a tabular string parameter indexed
// by EID.
func NewStringTabularParameter(name string, access Access, get func(eid uint32) (string, hcerr.Code), set func(eid uint32, v string) hcerr.Code) (*Parameter, error) {
	p, err := newBase(name, cell.String, access, KindTabular)
	if err != nil {
		return nil, err
	}
	if access&Readable != 0 && get != nil {
		p.handlerSet.getTbl = func(eid uint32, out *cell.Cell) hcerr.Code {
			v, code := get(eid)
			if code != hcerr.None {
				return code
			}
			out.AppendString(v)
			return out.Err()
		}
	}
	if access&Writable != 0 && set != nil {
		p.handlerSet.setTbl = func(eid uint32, in *cell.Cell) hcerr.Code {
			v, derr := in.DecodeString()
			if derr != nil {
				if code, ok := derr.(hcerr.Code); ok {
					return code
				}
				return hcerr.Deser
			}
			return set(eid, v)
		}
	}
	return p, nil
}
