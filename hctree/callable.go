package hctree

import (
	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// NewCallableParameter builds a callable-kind parameter: no value,
// invoking call produces only an error code. callTbl is optional;
// when nil, ICALL against this parameter answers hcerr.Access.
func NewCallableParameter(name string, access Access, call func() hcerr.Code, callTbl func(eid uint32) hcerr.Code) (*Parameter, error) {
	p, err := newBase(name, cell.Call, access, KindCallable)
	if err != nil {
		return nil, err
	}
	if access&Invokable != 0 {
		if call != nil {
			p.handlerSet.call = call
		}
		if callTbl != nil {
			p.handlerSet.callTbl = callTbl
		}
	}
	return p, nil
}
