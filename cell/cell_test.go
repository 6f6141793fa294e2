package cell

import (
	"math"
	"strings"
	"testing"

	"github.com/democosm/hcfabric/hcerr"
	"github.com/stretchr/testify/require"
)

func TestScalarRoundTrip(t *testing.T) {
	c := New()
	c.AppendBool(true)
	c.AppendInt8(math.MinInt8)
	c.AppendUint8(math.MaxUint8)
	c.AppendInt16(math.MinInt16)
	c.AppendUint16(math.MaxUint16)
	c.AppendInt32(math.MinInt32)
	c.AppendUint32(math.MaxUint32)
	c.AppendInt64(math.MinInt64)
	c.AppendUint64(math.MaxUint64)
	c.AppendFloat(3.5)
	c.AppendDouble(-2.25)
	c.AppendIPv4(0xC0A80001)
	c.AppendString("héllo")

	r := Wrap(c.Bytes())

	b, err := r.DecodeBool()
	require.NoError(t, err)
	require.True(t, b)

	i8, err := r.DecodeInt8()
	require.NoError(t, err)
	require.Equal(t, int8(math.MinInt8), i8)

	u8, err := r.DecodeUint8()
	require.NoError(t, err)
	require.Equal(t, uint8(math.MaxUint8), u8)

	i16, err := r.DecodeInt16()
	require.NoError(t, err)
	require.Equal(t, int16(math.MinInt16), i16)

	u16, err := r.DecodeUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(math.MaxUint16), u16)

	i32, err := r.DecodeInt32()
	require.NoError(t, err)
	require.Equal(t, int32(math.MinInt32), i32)

	u32, err := r.DecodeUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(math.MaxUint32), u32)

	i64, err := r.DecodeInt64()
	require.NoError(t, err)
	require.Equal(t, int64(math.MinInt64), i64)

	u64, err := r.DecodeUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), u64)

	f, err := r.DecodeFloat()
	require.NoError(t, err)
	require.Equal(t, float32(3.5), f)

	d, err := r.DecodeDouble()
	require.NoError(t, err)
	require.Equal(t, -2.25, d)

	ip, err := r.DecodeIPv4()
	require.NoError(t, err)
	require.Equal(t, uint32(0xC0A80001), ip)

	s, err := r.DecodeString()
	require.NoError(t, err)
	require.Equal(t, "héllo", s)

	require.Zero(t, r.Remaining())
}

func TestVectorRoundTrip(t *testing.T) {
	c := New()
	c.AppendVec2F(1.5, 2.5)
	c.AppendVec3F(1, 2, 3)
	c.AppendVec2D(1.1, 2.2)
	c.AppendVec3D(1.1, 2.2, 3.3)

	r := Wrap(c.Bytes())

	x, y, err := r.DecodeVec2F()
	require.NoError(t, err)
	require.Equal(t, float32(1.5), x)
	require.Equal(t, float32(2.5), y)

	x3, y3, z3, err := r.DecodeVec3F()
	require.NoError(t, err)
	require.Equal(t, [3]float32{1, 2, 3}, [3]float32{x3, y3, z3})

	dx, dy, err := r.DecodeVec2D()
	require.NoError(t, err)
	require.Equal(t, 1.1, dx)
	require.Equal(t, 2.2, dy)

	dx3, dy3, dz3, err := r.DecodeVec3D()
	require.NoError(t, err)
	require.Equal(t, [3]float64{1.1, 2.2, 3.3}, [3]float64{dx3, dy3, dz3})
}

func TestIntArrayRoundTrip(t *testing.T) {
	c := New()
	c.AppendInt64Array(Int32Arr, []int64{-1, 0, math.MaxInt32})

	tag, vs, err := Wrap(c.Bytes()).DecodeInt64Array()
	require.NoError(t, err)
	require.Equal(t, Int32Arr, tag)
	require.Equal(t, []int64{-1, 0, math.MaxInt32}, vs)
}

func TestStringMaxLength(t *testing.T) {
	s := strings.Repeat("a", 65535)
	c := New()
	c.AppendString(s)

	got, err := Wrap(c.Bytes()).DecodeString()
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestStringOverLengthFailsWithOverflow(t *testing.T) {
	s := strings.Repeat("a", 65536)
	c := New()
	c.AppendString(s)

	require.Equal(t, hcerr.Overflow, c.Err())
	require.Empty(t, c.Bytes())
}

func TestWriteStickyErrorBlocksFurtherWrites(t *testing.T) {
	c := New()
	c.AppendString(strings.Repeat("a", 65536))
	require.Equal(t, hcerr.Overflow, c.Err())

	before := len(c.Bytes())
	c.AppendUint32(7)
	require.Equal(t, before, len(c.Bytes()))
	require.Equal(t, hcerr.Overflow, c.Err())
}

func TestTypeMismatchReportsTypeAndCanBeSkipped(t *testing.T) {
	c := New()
	c.AppendString("oops")
	c.AppendUint32(7)

	r := Wrap(c.Bytes())
	_, err := r.DecodeUint32()
	require.ErrorIs(t, err, hcerr.Type)

	// The mismatched value's bytes are still sitting at the cursor;
	// SkipValue advances past it without needing to know its real type,
	// so the remainder of the cell still parses.
	require.NoError(t, r.SkipValue())
	v, err := r.DecodeUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(7), v)
}

func TestDecodePastEndFailsDeser(t *testing.T) {
	c := New()
	c.AppendUint32(1)
	raw := c.Bytes()
	truncated := Wrap(raw[:len(raw)-2])

	_, err := truncated.DecodeUint32()
	require.ErrorIs(t, err, hcerr.Deser)
}

func TestPeekTypePastEndFailsDeser(t *testing.T) {
	_, err := Wrap(nil).DecodeBool()
	require.ErrorIs(t, err, hcerr.Deser)
}

func TestSkipValueFixedAndVariableWidth(t *testing.T) {
	c := New()
	c.AppendUint8(1)
	c.AppendString("skip me")
	c.AppendInt64Array(Uint16Arr, []int64{1, 2, 3})
	c.AppendBool(true)

	r := Wrap(c.Bytes())
	require.NoError(t, r.SkipValue()) // uint8
	require.NoError(t, r.SkipValue()) // string
	require.NoError(t, r.SkipValue()) // array

	b, err := r.DecodeBool()
	require.NoError(t, err)
	require.True(t, b)
	require.Zero(t, r.Remaining())
}

func TestTabularAndListTagRoundTrip(t *testing.T) {
	require.True(t, Uint32.AsTabular().IsTabular())
	require.True(t, Uint32.AsList().IsList())
	require.Equal(t, Uint32, Uint32.AsTabular().Base())
	require.Equal(t, "UINT32TBL", Uint32.AsTabular().String())
	require.Equal(t, "UINT32LST", Uint32.AsList().String())
	require.Equal(t, "UINT32", Uint32.String())
}
