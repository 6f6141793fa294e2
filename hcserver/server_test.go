package hcserver

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/hctree"
	"github.com/democosm/hcfabric/proto"
)

func newTestServer(t *testing.T) (*Server, net.Conn) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	top := hctree.NewRoot()

	var stored int32 = 7
	p, err := hctree.NewInt32Parameter("count", hctree.Readable|hctree.Writable,
		func() int32 { return stored },
		func(v int32) hcerr.Code { stored = v; return hcerr.None })
	require.NoError(t, err)
	require.NoError(t, top.AddParameter(p))

	ro, err := hctree.NewInt32Parameter("ro", hctree.Readable, func() int32 { return 9 }, nil)
	require.NoError(t, err)
	require.NoError(t, top.AddParameter(ro))

	srv := New(serverConn, top, "test")
	require.NoError(t, srv.Add(p))
	require.NoError(t, srv.Add(ro))
	require.NoError(t, srv.Start())

	t.Cleanup(func() {
		_ = clientConn.Close()
		_ = srv.Stop()
	})

	return srv, clientConn
}

func roundTrip(t *testing.T, conn net.Conn, req proto.Message) proto.Message {
	t.Helper()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Write(proto.Encode(req))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	resp, err := proto.Decode(buf[:n])
	require.NoError(t, err)
	return resp
}

func TestServerGetSet(t *testing.T) {
	_, conn := newTestServer(t)

	getBody := cell.New()
	getBody.AppendRawUint16(0)
	resp := roundTrip(t, conn, proto.NewRequest(1, proto.OpGet, getBody))
	require.True(t, resp.Opcode.IsResponse())

	pid, err := resp.Body.DecodeRawUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0), pid)
	v, err := resp.Body.DecodeInt32()
	require.NoError(t, err)
	require.Equal(t, int32(7), v)

	setBody := cell.New()
	setBody.AppendRawUint16(0)
	setBody.AppendInt32(42)
	resp = roundTrip(t, conn, proto.NewRequest(2, proto.OpSet, setBody))
	_, _ = resp.Body.DecodeRawUint16()
	code, err := resp.Body.DecodeErrCode()
	require.NoError(t, err)
	require.Equal(t, hcerr.None, code)

	getBody2 := cell.New()
	getBody2.AppendRawUint16(0)
	resp = roundTrip(t, conn, proto.NewRequest(3, proto.OpGet, getBody2))
	_, _ = resp.Body.DecodeRawUint16()
	v2, err := resp.Body.DecodeInt32()
	require.NoError(t, err)
	require.Equal(t, int32(42), v2)
}

func TestServerSetReadOnlyDeniesAccess(t *testing.T) {
	_, conn := newTestServer(t)

	setBody := cell.New()
	setBody.AppendRawUint16(1)
	setBody.AppendInt32(1)
	resp := roundTrip(t, conn, proto.NewRequest(4, proto.OpSet, setBody))
	_, _ = resp.Body.DecodeRawUint16()
	code, err := resp.Body.DecodeErrCode()
	require.NoError(t, err)
	require.Equal(t, hcerr.Access, code)
}

func TestServerUnknownPidReturnsPidError(t *testing.T) {
	_, conn := newTestServer(t)

	body := cell.New()
	body.AppendRawUint16(99)
	resp := roundTrip(t, conn, proto.NewRequest(5, proto.OpGet, body))
	_, _ = resp.Body.DecodeRawUint16()
	// A lookup failure yields an empty value field, so the errcode
	// immediately follows the echoed pid.
	code, err := resp.Body.DecodeErrCode()
	require.NoError(t, err)
	require.Equal(t, hcerr.Pid, code)
}

func TestServerClSubPublishesOnChange(t *testing.T) {
	_, conn := newTestServer(t)

	subBody := cell.New()
	subBody.AppendRawString("/count")
	subBody.AppendRawString("")
	resp := roundTrip(t, conn, proto.NewRequest(10, proto.OpClSub, subBody))
	subPid, err := resp.Body.DecodeRawUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0), subPid)
	code, err := resp.Body.DecodeErrCode()
	require.NoError(t, err)
	require.Equal(t, hcerr.None, code)

	setBody := cell.New()
	setBody.AppendRawUint16(0)
	setBody.AppendInt32(100)
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Write(proto.Encode(proto.NewRequest(11, proto.OpSet, setBody)))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	// First frame back is the SET response.
	n, err := conn.Read(buf)
	require.NoError(t, err)
	setResp, err := proto.Decode(buf[:n])
	require.NoError(t, err)
	require.Equal(t, proto.OpSet.AsResponse(), setResp.Opcode)

	// Second frame is the PUB triggered by onChange.
	n, err = conn.Read(buf)
	require.NoError(t, err)
	pub, err := proto.Decode(buf[:n])
	require.NoError(t, err)
	require.Equal(t, proto.OpPub, pub.Opcode)

	pid, err := pub.Body.DecodeRawUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0), pid)
	v, err := pub.Body.DecodeInt32()
	require.NoError(t, err)
	require.Equal(t, int32(100), v)
}
