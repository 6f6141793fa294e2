package cell

import (
	"encoding/binary"
	"math"

	"github.com/democosm/hcfabric/hcerr"
)

// MaxBytes bounds the total encoded size of a Cell's buffer. It is
// large enough for one maximum-length tagged string: a one-byte type
// tag, a two-byte length prefix and 65535 bytes of content. A write
// that would cross this bound fails sticky with hcerr.Overflow instead
// of growing past it.
const MaxBytes = 1 + 2 + 65535

// Cell is a bounded byte buffer with independent read and write
// cursors, used to build and parse wire message bodies one
// type-tagged value at a time. The zero value is not usable; use New
// or Wrap. Once a write fails, the failure is sticky: every
// subsequent Append is a no-op and Err keeps returning the first
// failure, so callers can build a value with chained Appends and
// check Err once at the end instead of after every call.
type Cell struct {
	buf []byte
	r   int
	err hcerr.Code
}

// New returns an empty, writable Cell that grows as values are
// appended, up to MaxBytes.
func New() *Cell {
	return &Cell{buf: make([]byte, 0, 64)}
}

// Wrap returns a Cell for decoding an already-received body. The
// returned Cell shares b's backing array; callers must not mutate b
// while decoding continues.
func Wrap(b []byte) *Cell {
	return &Cell{buf: b}
}

// Bytes returns the encoded contents accumulated so far.
func (sf *Cell) Bytes() []byte {
	return sf.buf
}

// Remaining reports how many unread bytes remain.
func (sf *Cell) Remaining() int {
	return len(sf.buf) - sf.r
}

// Err returns the first write failure recorded by an Append call, or
// hcerr.None if every Append so far has succeeded.
func (sf *Cell) Err() hcerr.Code {
	return sf.err
}

// Reset clears the buffer and rewinds the read cursor, retaining the
// underlying array for reuse, and clears any sticky write error.
func (sf *Cell) Reset() {
	sf.buf = sf.buf[:0]
	sf.r = 0
	sf.err = hcerr.None
}

func (sf *Cell) need(n int) error {
	if sf.Remaining() < n {
		return hcerr.Deser
	}
	return nil
}

func (sf *Cell) take(n int) []byte {
	b := sf.buf[sf.r : sf.r+n]
	sf.r += n
	return b
}

// fail records code as the sticky write error if one is not already
// set.
func (sf *Cell) fail(code hcerr.Code) {
	if sf.err == hcerr.None {
		sf.err = code
	}
}

// write appends b to the buffer, unless a prior Append already failed
// or b would push the buffer past MaxBytes, in which case it records
// hcerr.Overflow and leaves the buffer untouched.
func (sf *Cell) write(b []byte) {
	if sf.err != hcerr.None {
		return
	}
	if len(sf.buf)+len(b) > MaxBytes {
		sf.fail(hcerr.Overflow)
		return
	}
	sf.buf = append(sf.buf, b...)
}

// ---- tag-level helpers ----

func (sf *Cell) appendTag(t TypeCode) {
	sf.write([]byte{byte(t)})
}

// PeekType reports the type code of the next value without consuming
// it. Callers use this to compare against an expected type before
// decoding, surfacing mismatches as hcerr.Type rather than a decode
// panic.
func (sf *Cell) PeekType() (TypeCode, error) {
	if err := sf.need(1); err != nil {
		return 0, err
	}
	return TypeCode(sf.buf[sf.r]), nil
}

func (sf *Cell) expectTag(want TypeCode) error {
	got, err := sf.PeekType()
	if err != nil {
		return err
	}
	if got != want {
		return hcerr.Type
	}
	sf.r++
	return nil
}

// ---- scalar append ----

// AppendBool appends a tagged boolean value.
func (sf *Cell) AppendBool(v bool) *Cell {
	sf.appendTag(Bool)
	if v {
		sf.write([]byte{1})
	} else {
		sf.write([]byte{0})
	}
	return sf
}

// AppendInt8 appends a tagged signed 8-bit integer.
func (sf *Cell) AppendInt8(v int8) *Cell {
	sf.appendTag(Int8)
	sf.write([]byte{byte(v)})
	return sf
}

// AppendUint8 appends a tagged unsigned 8-bit integer.
func (sf *Cell) AppendUint8(v uint8) *Cell {
	sf.appendTag(Uint8)
	sf.write([]byte{v})
	return sf
}

// AppendInt16 appends a tagged signed 16-bit integer, big-endian.
func (sf *Cell) AppendInt16(v int16) *Cell {
	return sf.appendUint16(Int16, uint16(v))
}

// AppendUint16 appends a tagged unsigned 16-bit integer, big-endian.
func (sf *Cell) AppendUint16(v uint16) *Cell {
	return sf.appendUint16(Uint16, v)
}

func (sf *Cell) appendUint16(t TypeCode, v uint16) *Cell {
	sf.appendTag(t)
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	sf.write(b[:])
	return sf
}

// AppendInt32 appends a tagged signed 32-bit integer, big-endian.
func (sf *Cell) AppendInt32(v int32) *Cell {
	return sf.appendUint32(Int32, uint32(v))
}

// AppendUint32 appends a tagged unsigned 32-bit integer, big-endian.
func (sf *Cell) AppendUint32(v uint32) *Cell {
	return sf.appendUint32(Uint32, v)
}

func (sf *Cell) appendUint32(t TypeCode, v uint32) *Cell {
	sf.appendTag(t)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	sf.write(b[:])
	return sf
}

// AppendIPv4 appends a tagged IPv4 address, encoded as a big-endian
// 32-bit value in network byte order.
func (sf *Cell) AppendIPv4(v uint32) *Cell {
	return sf.appendUint32(IPv4, v)
}

// AppendInt64 appends a tagged signed 64-bit integer, big-endian.
func (sf *Cell) AppendInt64(v int64) *Cell {
	return sf.appendUint64(Int64, uint64(v))
}

// AppendUint64 appends a tagged unsigned 64-bit integer, big-endian.
func (sf *Cell) AppendUint64(v uint64) *Cell {
	return sf.appendUint64(Uint64, v)
}

func (sf *Cell) appendUint64(t TypeCode, v uint64) *Cell {
	sf.appendTag(t)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	sf.write(b[:])
	return sf
}

// AppendFloat appends a tagged IEEE-754 single-precision float.
func (sf *Cell) AppendFloat(v float32) *Cell {
	sf.appendTag(Float)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	sf.write(b[:])
	return sf
}

// AppendDouble appends a tagged IEEE-754 double-precision float.
func (sf *Cell) AppendDouble(v float64) *Cell {
	sf.appendTag(Double)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	sf.write(b[:])
	return sf
}

// AppendVec2F appends a tagged pair of float32 components.
func (sf *Cell) AppendVec2F(x, y float32) *Cell {
	sf.appendTag(Vec2F)
	sf.putFloat32s(x, y)
	return sf
}

// AppendVec3F appends a tagged triple of float32 components.
func (sf *Cell) AppendVec3F(x, y, z float32) *Cell {
	sf.appendTag(Vec3F)
	sf.putFloat32s(x, y, z)
	return sf
}

// AppendVec2D appends a tagged pair of float64 components.
func (sf *Cell) AppendVec2D(x, y float64) *Cell {
	sf.appendTag(Vec2D)
	sf.putFloat64s(x, y)
	return sf
}

// AppendVec3D appends a tagged triple of float64 components.
func (sf *Cell) AppendVec3D(x, y, z float64) *Cell {
	sf.appendTag(Vec3D)
	sf.putFloat64s(x, y, z)
	return sf
}

func (sf *Cell) putFloat32s(vs ...float32) {
	for _, v := range vs {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
		sf.write(b[:])
	}
}

func (sf *Cell) putFloat64s(vs ...float64) {
	for _, v := range vs {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
		sf.write(b[:])
	}
}

// AppendString appends a tagged string as a big-endian uint16 length
// prefix followed by the raw UTF-8 bytes. A string of 65536 bytes or
// more cannot be represented by the uint16 length prefix at all, so
// it fails with hcerr.Overflow before anything is written, rather
// than silently truncating the length and emitting a corrupt frame.
func (sf *Cell) AppendString(v string) *Cell {
	if len(v) > 65535 {
		sf.fail(hcerr.Overflow)
		return sf
	}
	sf.appendTag(String)
	var lb [2]byte
	binary.BigEndian.PutUint16(lb[:], uint16(len(v)))
	sf.write(lb[:])
	sf.write([]byte(v))
	return sf
}

// ---- scalar decode ----

// DecodeBool decodes a tagged boolean, failing with hcerr.Type if the
// next value is not BOOL.
func (sf *Cell) DecodeBool() (bool, error) {
	if err := sf.expectTag(Bool); err != nil {
		return false, err
	}
	if err := sf.need(1); err != nil {
		return false, err
	}
	return sf.take(1)[0] != 0, nil
}

// DecodeInt8 decodes a tagged signed 8-bit integer.
func (sf *Cell) DecodeInt8() (int8, error) {
	if err := sf.expectTag(Int8); err != nil {
		return 0, err
	}
	if err := sf.need(1); err != nil {
		return 0, err
	}
	return int8(sf.take(1)[0]), nil
}

// DecodeUint8 decodes a tagged unsigned 8-bit integer.
func (sf *Cell) DecodeUint8() (uint8, error) {
	if err := sf.expectTag(Uint8); err != nil {
		return 0, err
	}
	if err := sf.need(1); err != nil {
		return 0, err
	}
	return sf.take(1)[0], nil
}

// DecodeInt16 decodes a tagged signed 16-bit integer.
func (sf *Cell) DecodeInt16() (int16, error) {
	v, err := sf.decodeUint16(Int16)
	return int16(v), err
}

// DecodeUint16 decodes a tagged unsigned 16-bit integer.
func (sf *Cell) DecodeUint16() (uint16, error) {
	return sf.decodeUint16(Uint16)
}

func (sf *Cell) decodeUint16(t TypeCode) (uint16, error) {
	if err := sf.expectTag(t); err != nil {
		return 0, err
	}
	if err := sf.need(2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(sf.take(2)), nil
}

// DecodeInt32 decodes a tagged signed 32-bit integer.
func (sf *Cell) DecodeInt32() (int32, error) {
	v, err := sf.decodeUint32(Int32)
	return int32(v), err
}

// DecodeUint32 decodes a tagged unsigned 32-bit integer.
func (sf *Cell) DecodeUint32() (uint32, error) {
	return sf.decodeUint32(Uint32)
}

// DecodeIPv4 decodes a tagged IPv4 address.
func (sf *Cell) DecodeIPv4() (uint32, error) {
	return sf.decodeUint32(IPv4)
}

func (sf *Cell) decodeUint32(t TypeCode) (uint32, error) {
	if err := sf.expectTag(t); err != nil {
		return 0, err
	}
	if err := sf.need(4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(sf.take(4)), nil
}

// DecodeInt64 decodes a tagged signed 64-bit integer.
func (sf *Cell) DecodeInt64() (int64, error) {
	v, err := sf.decodeUint64(Int64)
	return int64(v), err
}

// DecodeUint64 decodes a tagged unsigned 64-bit integer.
func (sf *Cell) DecodeUint64() (uint64, error) {
	return sf.decodeUint64(Uint64)
}

func (sf *Cell) decodeUint64(t TypeCode) (uint64, error) {
	if err := sf.expectTag(t); err != nil {
		return 0, err
	}
	if err := sf.need(8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(sf.take(8)), nil
}

// DecodeFloat decodes a tagged IEEE-754 single-precision float.
func (sf *Cell) DecodeFloat() (float32, error) {
	if err := sf.expectTag(Float); err != nil {
		return 0, err
	}
	if err := sf.need(4); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(sf.take(4))), nil
}

// DecodeDouble decodes a tagged IEEE-754 double-precision float.
func (sf *Cell) DecodeDouble() (float64, error) {
	if err := sf.expectTag(Double); err != nil {
		return 0, err
	}
	if err := sf.need(8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(sf.take(8))), nil
}

// DecodeVec2F decodes a tagged pair of float32 components.
func (sf *Cell) DecodeVec2F() (x, y float32, err error) {
	if err = sf.expectTag(Vec2F); err != nil {
		return
	}
	fs, err := sf.getFloat32s(2)
	if err != nil {
		return
	}
	return fs[0], fs[1], nil
}

// DecodeVec3F decodes a tagged triple of float32 components.
func (sf *Cell) DecodeVec3F() (x, y, z float32, err error) {
	if err = sf.expectTag(Vec3F); err != nil {
		return
	}
	fs, err := sf.getFloat32s(3)
	if err != nil {
		return
	}
	return fs[0], fs[1], fs[2], nil
}

// DecodeVec2D decodes a tagged pair of float64 components.
func (sf *Cell) DecodeVec2D() (x, y float64, err error) {
	if err = sf.expectTag(Vec2D); err != nil {
		return
	}
	fs, err := sf.getFloat64s(2)
	if err != nil {
		return
	}
	return fs[0], fs[1], nil
}

// DecodeVec3D decodes a tagged triple of float64 components.
func (sf *Cell) DecodeVec3D() (x, y, z float64, err error) {
	if err = sf.expectTag(Vec3D); err != nil {
		return
	}
	fs, err := sf.getFloat64s(3)
	if err != nil {
		return
	}
	return fs[0], fs[1], fs[2], nil
}

func (sf *Cell) getFloat32s(n int) ([]float32, error) {
	if err := sf.need(4 * n); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(sf.take(4)))
	}
	return out, nil
}

func (sf *Cell) getFloat64s(n int) ([]float64, error) {
	if err := sf.need(8 * n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(sf.take(8)))
	}
	return out, nil
}

// DecodeString decodes a tagged, length-prefixed UTF-8 string.
func (sf *Cell) DecodeString() (string, error) {
	if err := sf.expectTag(String); err != nil {
		return "", err
	}
	if err := sf.need(2); err != nil {
		return "", err
	}
	n := int(binary.BigEndian.Uint16(sf.take(2)))
	if err := sf.need(n); err != nil {
		return "", err
	}
	return string(sf.take(n)), nil
}

// ---- integer arrays ----

var arrTagToScalar = map[TypeCode]TypeCode{
	Int8Arr: Int8, Int16Arr: Int16, Int32Arr: Int32, Int64Arr: Int64,
	Uint8Arr: Uint8, Uint16Arr: Uint16, Uint32Arr: Uint32, Uint64Arr: Uint64,
}

var scalarWidth = map[TypeCode]int{
	Int8: 1, Uint8: 1, Int16: 2, Uint16: 2, Int32: 4, Uint32: 4, Int64: 8, Uint64: 8,
}

// AppendInt64Array appends a tagged fixed-length array of the given
// underlying integer width, re-interpreting the elements into that
// width. elemTag must be one of the *Arr type codes. An element count
// of 65536 or more cannot be represented by the uint16 count prefix,
// so it fails with hcerr.Overflow before anything is written.
func (sf *Cell) AppendInt64Array(elemTag TypeCode, vs []int64) *Cell {
	if len(vs) > 65535 {
		sf.fail(hcerr.Overflow)
		return sf
	}
	scalar, ok := arrTagToScalar[elemTag]
	if !ok {
		scalar = Int64
		elemTag = Int64Arr
	}
	width := scalarWidth[scalar]
	sf.appendTag(elemTag)
	var lb [2]byte
	binary.BigEndian.PutUint16(lb[:], uint16(len(vs)))
	sf.write(lb[:])
	for _, v := range vs {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v))
		sf.write(b[8-width:])
	}
	return sf
}

// DecodeInt64Array decodes a tagged fixed-length integer array of any
// width into a []int64, sign-extending narrower signed widths.
func (sf *Cell) DecodeInt64Array() (TypeCode, []int64, error) {
	tag, err := sf.PeekType()
	if err != nil {
		return 0, nil, err
	}
	scalar, ok := arrTagToScalar[tag]
	if !ok {
		return 0, nil, hcerr.Type
	}
	sf.r++
	width := scalarWidth[scalar]
	if err := sf.need(2); err != nil {
		return 0, nil, err
	}
	n := int(binary.BigEndian.Uint16(sf.take(2)))
	if err := sf.need(n * width); err != nil {
		return 0, nil, err
	}
	signed := scalar == Int8 || scalar == Int16 || scalar == Int32 || scalar == Int64
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		raw := sf.take(width)
		var u uint64
		for _, b := range raw {
			u = u<<8 | uint64(b)
		}
		if signed {
			shift := uint(64 - 8*width)
			out[i] = int64(u<<shift) >> shift
		} else {
			out[i] = int64(u)
		}
	}
	return tag, out, nil
}

// SkipValue advances past the next tagged value without interpreting
// it, honoring the static-width/variable-width distinction: fixed
// types are skipped by their known size, String and the *Arr family by
// reading their length prefix first.
func (sf *Cell) SkipValue() error {
	tag, err := sf.PeekType()
	if err != nil {
		return err
	}
	sf.r++
	if n, ok := fixedWidth(tag); ok {
		if err := sf.need(n); err != nil {
			return err
		}
		sf.take(n)
		return nil
	}
	switch tag.Base() {
	case String:
		if err := sf.need(2); err != nil {
			return err
		}
		n := int(binary.BigEndian.Uint16(sf.take(2)))
		if err := sf.need(n); err != nil {
			return err
		}
		sf.take(n)
		return nil
	default:
		if _, ok := arrTagToScalar[tag]; ok {
			if err := sf.need(2); err != nil {
				return err
			}
			n := int(binary.BigEndian.Uint16(sf.take(2)))
			width := scalarWidth[arrTagToScalar[tag]]
			if err := sf.need(n * width); err != nil {
				return err
			}
			sf.take(n * width)
			return nil
		}
		return hcerr.Deser
	}
}
