package hctree

import (
	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// NewInt32ListParameter builds a list-kind int32 parameter: no plain
// Get/Set, only Add/Sub mutating an ordered set the owner maintains.
func NewInt32ListParameter(name string, access Access, add func(int32) hcerr.Code, sub func(int32) hcerr.Code) (*Parameter, error) {
	p, err := newBase(name, cell.Int32, access, KindList)
	if err != nil {
		return nil, err
	}
	if add != nil {
		p.handlerSet.add = numericListFunc(cell.Int32, (*cell.Cell).DecodeInt32, add)
	}
	if sub != nil {
		p.handlerSet.sub = numericListFunc(cell.Int32, (*cell.Cell).DecodeInt32, sub)
	}
	return p, nil
}

// NewUint32ListParameter builds a list-kind uint32 parameter.
func NewUint32ListParameter(name string, access Access, add func(uint32) hcerr.Code, sub func(uint32) hcerr.Code) (*Parameter, error) {
	p, err := newBase(name, cell.Uint32, access, KindList)
	if err != nil {
		return nil, err
	}
	if add != nil {
		p.handlerSet.add = numericListFunc(cell.Uint32, (*cell.Cell).DecodeUint32, add)
	}
	if sub != nil {
		p.handlerSet.sub = numericListFunc(cell.Uint32, (*cell.Cell).DecodeUint32, sub)
	}
	return p, nil
}

// NewStringListParameter builds a list-kind string parameter.
func NewStringListParameter(name string, access Access, add func(string) hcerr.Code, sub func(string) hcerr.Code) (*Parameter, error) {
	p, err := newBase(name, cell.String, access, KindList)
	if err != nil {
		return nil, err
	}
	if add != nil {
		p.handlerSet.add = func(in *cell.Cell) hcerr.Code {
			v, derr := in.DecodeString()
			if derr != nil {
				if code, ok := derr.(hcerr.Code); ok {
					return code
				}
				return hcerr.Deser
			}
			return add(v)
		}
	}
	if sub != nil {
		p.handlerSet.sub = func(in *cell.Cell) hcerr.Code {
			v, derr := in.DecodeString()
			if derr != nil {
				if code, ok := derr.(hcerr.Code); ok {
					return code
				}
				return hcerr.Deser
			}
			return sub(v)
		}
	}
	return p, nil
}

func numericListFunc[T numeric](_ cell.TypeCode, decode func(*cell.Cell) (T, error), fn func(T) hcerr.Code) func(*cell.Cell) hcerr.Code {
	return func(in *cell.Cell) hcerr.Code {
		v, derr := decode(in)
		if derr != nil {
			if code, ok := derr.(hcerr.Code); ok {
				return code
			}
			return hcerr.Deser
		}
		return fn(v)
	}
}
