// Package hctree implements the parameter tree: named containers
// holding ordered child containers and child parameters, path
// resolution with glob and tab-completion support, and the five
// parameter kinds' wire-facing handler contract.
package hctree

import (
	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// Closures a parameter's owner supplies to back one wire operation.
// Leaving a closure nil means the parameter does not support that
// operation; the corresponding Handlers method then answers
// hcerr.Access, matching "any handler not implemented by a given
// parameter kind responds with ACCESS."
type (
	GetFunc     func(out *cell.Cell) hcerr.Code
	SetFunc     func(in *cell.Cell) hcerr.Code
	GetTblFunc  func(eid uint32, out *cell.Cell) hcerr.Code
	SetTblFunc  func(eid uint32, in *cell.Cell) hcerr.Code
	AddFunc     func(in *cell.Cell) hcerr.Code
	SubFunc     func(in *cell.Cell) hcerr.Code
	ReadFunc    func(offset uint32, length uint16, out *cell.Cell) hcerr.Code
	WriteFunc   func(offset uint32, length uint16, in *cell.Cell) hcerr.Code
	CallFunc    func() hcerr.Code
	CallTblFunc func(eid uint32) hcerr.Code
)

// Handlers is the per-parameter dispatch contract the server calls
// into. A Parameter is, from the server's point of view, nothing more
// than metadata plus a Handlers implementation.
type Handlers interface {
	GetCell(out *cell.Cell) hcerr.Code
	SetCell(in *cell.Cell) hcerr.Code
	GetCellTbl(eid uint32, out *cell.Cell) hcerr.Code
	SetCellTbl(eid uint32, in *cell.Cell) hcerr.Code
	AddCell(in *cell.Cell) hcerr.Code
	SubCell(in *cell.Cell) hcerr.Code
	ReadCell(offset uint32, length uint16, out *cell.Cell) hcerr.Code
	WriteCell(offset uint32, length uint16, in *cell.Cell) hcerr.Code
	CallCell() hcerr.Code
	CallCellTbl(eid uint32) hcerr.Code
}

// handlerSet is the single Handlers implementation shared by every
// parameter kind; a kind is just which closures its constructor
// populates. This replaces the teacher's per-TypeID build/parse
// function pairs with one generic dispatcher, and replaces what would
// be a class-per-kind inheritance hierarchy with plain closures.
type handlerSet struct {
	get     GetFunc
	set     SetFunc
	getTbl  GetTblFunc
	setTbl  SetTblFunc
	add     AddFunc
	sub     SubFunc
	read    ReadFunc
	write   WriteFunc
	call    CallFunc
	callTbl CallTblFunc
}

var _ Handlers = (*handlerSet)(nil)

func (sf *handlerSet) GetCell(out *cell.Cell) hcerr.Code {
	if sf.get == nil {
		return hcerr.Access
	}
	return sf.get(out)
}

func (sf *handlerSet) SetCell(in *cell.Cell) hcerr.Code {
	if sf.set == nil {
		return hcerr.Access
	}
	return sf.set(in)
}

func (sf *handlerSet) GetCellTbl(eid uint32, out *cell.Cell) hcerr.Code {
	if sf.getTbl == nil {
		return hcerr.Access
	}
	return sf.getTbl(eid, out)
}

func (sf *handlerSet) SetCellTbl(eid uint32, in *cell.Cell) hcerr.Code {
	if sf.setTbl == nil {
		return hcerr.Access
	}
	return sf.setTbl(eid, in)
}

func (sf *handlerSet) AddCell(in *cell.Cell) hcerr.Code {
	if sf.add == nil {
		return hcerr.Access
	}
	return sf.add(in)
}

func (sf *handlerSet) SubCell(in *cell.Cell) hcerr.Code {
	if sf.sub == nil {
		return hcerr.Access
	}
	return sf.sub(in)
}

func (sf *handlerSet) ReadCell(offset uint32, length uint16, out *cell.Cell) hcerr.Code {
	if sf.read == nil {
		return hcerr.Access
	}
	return sf.read(offset, length, out)
}

func (sf *handlerSet) WriteCell(offset uint32, length uint16, in *cell.Cell) hcerr.Code {
	if sf.write == nil {
		return hcerr.Access
	}
	return sf.write(offset, length, in)
}

func (sf *handlerSet) CallCell() hcerr.Code {
	if sf.call == nil {
		return hcerr.Access
	}
	return sf.call()
}

func (sf *handlerSet) CallCellTbl(eid uint32) hcerr.Code {
	if sf.callTbl == nil {
		return hcerr.Access
	}
	return sf.callTbl(eid)
}
