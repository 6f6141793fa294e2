package hctree

import (
	"os"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// transferChunk bounds how much of a file-kind parameter's data
// crosses in one WriteCell/ReadCell call during Upload/Download.
const transferChunk = 4096

// Upload reads the local file at filename and writes its contents to
// a file-kind parameter in transferChunk-sized pieces, the P@"S"
// shell pattern.
func (sf *Parameter) Upload(filename string) hcerr.Code {
	data, err := os.ReadFile(filename)
	if err != nil {
		return hcerr.NotFound
	}
	var offset uint32
	for offset < uint32(len(data)) {
		n := transferChunk
		if remaining := len(data) - int(offset); remaining < n {
			n = remaining
		}
		c := cell.New()
		c.AppendRawBytes(data[offset : int(offset)+n])
		if code := sf.WriteCell(offset, uint16(n), cell.Wrap(c.Bytes())); code != hcerr.None {
			return code
		}
		offset += uint32(n)
	}
	return hcerr.None
}

// Download reads a file-kind parameter in transferChunk-sized pieces
// and writes the accumulated bytes to the local file at filename, the
// P#"S" shell pattern. A short read (fewer bytes than requested, per
// the ReadCell contract) ends the transfer.
func (sf *Parameter) Download(filename string) hcerr.Code {
	var data []byte
	var offset uint32
	for {
		c := cell.New()
		if code := sf.ReadCell(offset, transferChunk, c); code != hcerr.None {
			return code
		}
		got := c.Bytes()
		data = append(data, got...)
		offset += uint32(len(got))
		if len(got) < transferChunk {
			break
		}
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return hcerr.Unspec
	}
	return hcerr.None
}
