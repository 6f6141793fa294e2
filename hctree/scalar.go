package hctree

import (
	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// numeric is the set of Go types the scalar numeric constructors
// accept, mirroring the teacher's template-parameter-per-scalar-type
// pattern generalized over a single numeric trait (spec §9).
type numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func newNumericParameter[T numeric](
	name string, typ cell.TypeCode, access Access,
	get func() T, set func(T) hcerr.Code,
	encode func(*cell.Cell, T) *cell.Cell,
	decode func(*cell.Cell) (T, error),
) (*Parameter, error) {
	p, err := newBase(name, typ, access, KindScalar)
	if err != nil {
		return nil, err
	}

	if access&Readable != 0 && get != nil {
		p.handlerSet.get = func(out *cell.Cell) hcerr.Code {
			encode(out, get())
			return hcerr.None
		}
	}
	if access&Writable != 0 && set != nil {
		p.handlerSet.set = func(in *cell.Cell) hcerr.Code {
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
			return set(v)
		}
	}
	return p, nil
}

// NewInt8Parameter builds a scalar int8 parameter.
func NewInt8Parameter(name string, access Access, get func() int8, set func(int8) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Int8, access, get, set,
		(*cell.Cell).AppendInt8, (*cell.Cell).DecodeInt8)
}

// NewUint8Parameter builds a scalar uint8 parameter.
func NewUint8Parameter(name string, access Access, get func() uint8, set func(uint8) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Uint8, access, get, set,
		(*cell.Cell).AppendUint8, (*cell.Cell).DecodeUint8)
}

// NewInt16Parameter builds a scalar int16 parameter.
func NewInt16Parameter(name string, access Access, get func() int16, set func(int16) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Int16, access, get, set,
		(*cell.Cell).AppendInt16, (*cell.Cell).DecodeInt16)
}

// NewUint16Parameter builds a scalar uint16 parameter.
func NewUint16Parameter(name string, access Access, get func() uint16, set func(uint16) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Uint16, access, get, set,
		(*cell.Cell).AppendUint16, (*cell.Cell).DecodeUint16)
}

// NewInt32Parameter builds a scalar int32 parameter.
func NewInt32Parameter(name string, access Access, get func() int32, set func(int32) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Int32, access, get, set,
		(*cell.Cell).AppendInt32, (*cell.Cell).DecodeInt32)
}

// NewUint32Parameter builds a scalar uint32 parameter.
func NewUint32Parameter(name string, access Access, get func() uint32, set func(uint32) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Uint32, access, get, set,
		(*cell.Cell).AppendUint32, (*cell.Cell).DecodeUint32)
}

// NewInt64Parameter builds a scalar int64 parameter.
func NewInt64Parameter(name string, access Access, get func() int64, set func(int64) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Int64, access, get, set,
		(*cell.Cell).AppendInt64, (*cell.Cell).DecodeInt64)
}

// NewUint64Parameter builds a scalar uint64 parameter.
func NewUint64Parameter(name string, access Access, get func() uint64, set func(uint64) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Uint64, access, get, set,
		(*cell.Cell).AppendUint64, (*cell.Cell).DecodeUint64)
}

// NewFloatParameter builds a scalar IEEE single-precision parameter.
func NewFloatParameter(name string, access Access, get func() float32, set func(float32) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Float, access, get, set,
		(*cell.Cell).AppendFloat, (*cell.Cell).DecodeFloat)
}

// NewDoubleParameter builds a scalar IEEE double-precision parameter.
func NewDoubleParameter(name string, access Access, get func() float64, set func(float64) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.Double, access, get, set,
		(*cell.Cell).AppendDouble, (*cell.Cell).DecodeDouble)
}

// NewCellParameter builds a scalar parameter whose get/set handlers
// operate directly on the wire cell and report their own hcerr.Code,
// rather than the plain-value get/set of newNumericParameter which has
// no way to carry a failure out of a Go function return. Callers that
// proxy a remote backend (the aggregator's mirrored parameters) use
// this to forward the backend's own error code, e.g. hcerr.Timeout,
// verbatim instead of collapsing it to a zero value.
func NewCellParameter(name string, typ cell.TypeCode, access Access,
	getCell func(out *cell.Cell) hcerr.Code,
	setCell func(in *cell.Cell) hcerr.Code,
) (*Parameter, error) {
	p, err := newBase(name, typ, access, KindScalar)
	if err != nil {
		return nil, err
	}
	if access&Readable != 0 && getCell != nil {
		p.handlerSet.get = getCell
	}
	if access&Writable != 0 && setCell != nil {
		p.handlerSet.set = setCell
	}
	return p, nil
}

// NewIPv4Parameter builds a scalar IPv4 parameter, stored as a uint32
// in host order.
func NewIPv4Parameter(name string, access Access, get func() uint32, set func(uint32) hcerr.Code) (*Parameter, error) {
	return newNumericParameter(name, cell.IPv4, access, get, set,
		(*cell.Cell).AppendIPv4, (*cell.Cell).DecodeIPv4)
}

// NewBoolParameter builds a scalar boolean parameter.
func NewBoolParameter(name string, access Access, get func() bool, set func(bool) hcerr.Code) (*Parameter, error) {
	p, err := newBase(name, cell.Bool, access, KindScalar)
	if err != nil {
		return nil, err
	}
	if access&Readable != 0 && get != nil {
		p.handlerSet.get = func(out *cell.Cell) hcerr.Code {
			out.AppendBool(get())
			return hcerr.None
		}
	}
	if access&Writable != 0 && set != nil {
		p.handlerSet.set = func(in *cell.Cell) hcerr.Code {
			v, derr := in.DecodeBool()
			if derr != nil {
				if code, ok := derr.(hcerr.Code); ok {
					return code
				}
				return hcerr.Deser
			}
			return set(v)
		}
	}
	return p, nil
}

// NewStringParameter builds a scalar UTF-8 string parameter.
func NewStringParameter(name string, access Access, get func() string, set func(string) hcerr.Code) (*Parameter, error) {
	p, err := newBase(name, cell.String, access, KindScalar)
	if err != nil {
		return nil, err
	}
	if access&Readable != 0 && get != nil {
		p.handlerSet.get = func(out *cell.Cell) hcerr.Code {
			out.AppendString(get())
			return out.Err()
		}
	}
	if access&Writable != 0 && set != nil {
		p.handlerSet.set = func(in *cell.Cell) hcerr.Code {
			v, derr := in.DecodeString()
			if derr != nil {
				if code, ok := derr.(hcerr.Code); ok {
					return code
				}
				return hcerr.Deser
			}
			return set(v)
		}
	}
	return p, nil
}
