package cell

import (
	"encoding/binary"

	"github.com/democosm/hcfabric/hcerr"
)

// The wire protocol's framing fields — pid, eid, offset, length,
// errcode — are fixed-width and untagged, unlike the type-tagged
// values carried alongside them. These Raw* methods read and write
// those fields directly against the same cursor the tagged Append/
// Decode methods use, so a single Cell models an entire message body.

// AppendRawUint16 appends an untagged big-endian uint16.
func (sf *Cell) AppendRawUint16(v uint16) *Cell {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	sf.write(b[:])
	return sf
}

// AppendRawUint32 appends an untagged big-endian uint32.
func (sf *Cell) AppendRawUint32(v uint32) *Cell {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	sf.write(b[:])
	return sf
}

// AppendRawBytes appends raw bytes with no length prefix and no type
// tag; the framing field that precedes it (typically a length) tells
// the reader how many bytes to take.
func (sf *Cell) AppendRawBytes(b []byte) *Cell {
	sf.write(b)
	return sf
}

// AppendRawString appends an untagged string, used for path/criterion
// fields, as a big-endian uint16 length prefix followed by raw bytes.
// As with AppendString, a string of 65536 bytes or more cannot be
// represented by the uint16 length prefix and fails with
// hcerr.Overflow before anything is written.
func (sf *Cell) AppendRawString(s string) *Cell {
	if len(s) > 65535 {
		sf.fail(hcerr.Overflow)
		return sf
	}
	sf.AppendRawUint16(uint16(len(s)))
	sf.write([]byte(s))
	return sf
}

// AppendErrCode appends an untagged signed error code byte.
func (sf *Cell) AppendErrCode(c hcerr.Code) *Cell {
	sf.write([]byte{byte(c)})
	return sf
}

// DecodeRawUint16 reads an untagged big-endian uint16.
func (sf *Cell) DecodeRawUint16() (uint16, error) {
	if err := sf.need(2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(sf.take(2)), nil
}

// DecodeRawUint32 reads an untagged big-endian uint32.
func (sf *Cell) DecodeRawUint32() (uint32, error) {
	if err := sf.need(4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(sf.take(4)), nil
}

// DecodeRawBytes reads n raw bytes with no length prefix.
func (sf *Cell) DecodeRawBytes(n int) ([]byte, error) {
	if err := sf.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, sf.take(n))
	return out, nil
}

// DecodeRawString reads an untagged, length-prefixed string.
func (sf *Cell) DecodeRawString() (string, error) {
	n, err := sf.DecodeRawUint16()
	if err != nil {
		return "", err
	}
	if err := sf.need(int(n)); err != nil {
		return "", err
	}
	return string(sf.take(int(n))), nil
}

// DecodeErrCode reads an untagged signed error code byte.
func (sf *Cell) DecodeErrCode() (hcerr.Code, error) {
	if err := sf.need(1); err != nil {
		return 0, err
	}
	return hcerr.Code(int8(sf.take(1)[0])), nil
}
