package proto

import (
	"testing"

	"github.com/democosm/hcfabric/cell"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	body := cell.New()
	body.AppendRawUint16(7)
	body.AppendUint32(42)

	req := NewRequest(0x1234, OpSet, body)
	wire := Encode(req)

	require.Equal(t, byte(0x12), wire[0])
	require.Equal(t, byte(0x34), wire[1])
	require.Equal(t, byte(OpSet), wire[2])

	got, err := Decode(wire)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), got.Txn)
	require.Equal(t, OpSet, got.Opcode)

	pid, err := got.Body.DecodeRawUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(7), pid)
	v, err := got.Body.DecodeUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(42), v)
}

func TestResponseEchoesTxnAndSetsRespFlag(t *testing.T) {
	req := NewRequest(99, OpGet, nil)
	resp := NewResponse(req, nil)

	require.Equal(t, req.Txn, resp.Txn)
	require.True(t, resp.Opcode.IsResponse())
	require.Equal(t, OpGet, resp.Opcode.Base())
	require.False(t, req.Opcode.IsResponse())
}

func TestDecodeShortFrameFails(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x01})
	require.Error(t, err)
}

func TestOpcodeIndexedAndRequestHasValue(t *testing.T) {
	require.True(t, OpIGet.Indexed())
	require.True(t, OpISet.Indexed())
	require.False(t, OpGet.Indexed())

	require.True(t, OpSet.RequestHasValue())
	require.True(t, OpAdd.RequestHasValue())
	require.False(t, OpGet.RequestHasValue())
	require.False(t, OpCall.RequestHasValue())
}

func TestOpcodeStringUnknown(t *testing.T) {
	require.Equal(t, "GET", OpGet.String())
	require.Equal(t, "UNKNOWN", Opcode(0xEE).String())
}
