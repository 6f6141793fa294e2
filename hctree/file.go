package hctree

import (
	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// NewFileParameter builds a file-kind parameter: upload/download byte
// streams addressed by offset/length instead of a single value.
//
// read may return fewer bytes than requested (a short read) with
// hcerr.None when offset+length extends past the file's current
// length; write must fail whole with hcerr.Overflow, writing nothing,
// when offset+len(data) extends past the file's capacity — the
// resolution of the open question in spec §9.
func NewFileParameter(name string, access Access, read func(offset uint32, length uint16) ([]byte, hcerr.Code), write func(offset uint32, data []byte) hcerr.Code) (*Parameter, error) {
	p, err := newBase(name, cell.File, access, KindFile)
	if err != nil {
		return nil, err
	}
	if access&Readable != 0 && read != nil {
		p.handlerSet.read = func(offset uint32, length uint16, out *cell.Cell) hcerr.Code {
			data, code := read(offset, length)
			if code != hcerr.None {
				return code
			}
			out.AppendRawBytes(data)
			return hcerr.None
		}
	}
	if access&Writable != 0 && write != nil {
		p.handlerSet.write = func(offset uint32, length uint16, in *cell.Cell) hcerr.Code {
			data, derr := in.DecodeRawBytes(int(length))
			if derr != nil {
				if code, ok := derr.(hcerr.Code); ok {
					return code
				}
				return hcerr.Deser
			}
			return write(offset, data)
		}
	}
	return p, nil
}
