package hcclient

import (
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/hcserver"
	"github.com/democosm/hcfabric/hctree"
)

// gateTransport swallows outbound writes while closed, simulating a
// server that never acknowledges a request, and forwards them once
// reopened.
type gateTransport struct {
	io.ReadWriter
	open atomic.Bool
}

func (sf *gateTransport) Write(p []byte) (int, error) {
	if !sf.open.Load() {
		return len(p), nil
	}
	return sf.ReadWriter.Write(p)
}

func newClientServerPair(t *testing.T) (*Client, *hcserver.Server, *int32) {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	top := hctree.NewRoot()
	var stored int32 = 5
	p, err := hctree.NewInt32Parameter("value", hctree.Readable|hctree.Writable,
		func() int32 { return stored },
		func(v int32) hcerr.Code { stored = v; return hcerr.None })
	require.NoError(t, err)
	require.NoError(t, top.AddParameter(p))

	srv := hcserver.New(serverConn, top, "test")
	require.NoError(t, srv.Add(p))
	require.NoError(t, srv.Start())

	cl := New(clientConn)
	cl.SetTimeout(2 * time.Second)
	require.NoError(t, cl.Start())

	t.Cleanup(func() {
		_ = cl.Stop()
		_ = srv.Stop()
	})

	return cl, srv, &stored
}

func TestClientGetSetRoundTrip(t *testing.T) {
	cl, _, stored := newClientServerPair(t)

	v, code, err := cl.GetInt32(0)
	require.NoError(t, err)
	require.Equal(t, hcerr.None, code)
	require.Equal(t, int32(5), v)

	code, err = cl.SetInt32(0, 77)
	require.NoError(t, err)
	require.Equal(t, hcerr.None, code)
	require.Equal(t, int32(77), *stored)

	v, code, err = cl.GetInt32(0)
	require.NoError(t, err)
	require.Equal(t, hcerr.None, code)
	require.Equal(t, int32(77), v)
}

func TestClientGetUnknownPid(t *testing.T) {
	cl, _, _ := newClientServerPair(t)

	_, code, err := cl.GetInt32(99)
	require.NoError(t, err)
	require.Equal(t, hcerr.Pid, code)
}

func TestClientSerializesConcurrentCalls(t *testing.T) {
	cl, _, _ := newClientServerPair(t)

	done := make(chan hcerr.Code, 4)
	for i := 0; i < 4; i++ {
		go func(n int32) {
			code, err := cl.SetInt32(0, n)
			require.NoError(t, err)
			done <- code
		}(int32(i))
	}
	for i := 0; i < 4; i++ {
		require.Equal(t, hcerr.None, <-done)
	}
}

func TestClientSubscriptionReceivesPublish(t *testing.T) {
	cl, _, _ := newClientServerPair(t)

	received := make(chan int32, 1)
	pid, code, err := cl.CLSub("/value", "", func(v *cell.Cell) {
		n, derr := v.DecodeInt32()
		require.NoError(t, derr)
		received <- n
	})
	require.NoError(t, err)
	require.Equal(t, hcerr.None, code)
	require.Equal(t, uint16(0), pid)

	code, err = cl.SetInt32(0, 123)
	require.NoError(t, err)
	require.Equal(t, hcerr.None, code)

	select {
	case v := <-received:
		require.Equal(t, int32(123), v)
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive publish notification")
	}
}

func TestClientTimeoutThenRecover(t *testing.T) {
	serverConn, clientConn := net.Pipe()

	top := hctree.NewRoot()
	var stored int32 = 5
	p, err := hctree.NewInt32Parameter("value", hctree.Readable|hctree.Writable,
		func() int32 { return stored },
		func(v int32) hcerr.Code { stored = v; return hcerr.None })
	require.NoError(t, err)
	require.NoError(t, top.AddParameter(p))

	srv := hcserver.New(serverConn, top, "test")
	require.NoError(t, srv.Add(p))
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })

	gate := &gateTransport{ReadWriter: clientConn}
	cl := New(gate)
	cl.SetTimeout(100 * time.Millisecond)
	require.NoError(t, cl.Start())
	t.Cleanup(func() { _ = cl.Stop() })

	// Closed gate: the request never reaches the server, so it never
	// acknowledges and the call must fail with ERR_TIMEOUT once the
	// configured deadline elapses.
	start := time.Now()
	_, _, err = cl.GetInt32(0)
	elapsed := time.Since(start)
	require.Equal(t, hcerr.Timeout, err)
	require.GreaterOrEqual(t, elapsed, 100*time.Millisecond)

	// Once the server is reachable again, the next Get succeeds with
	// the correct value.
	gate.open.Store(true)
	v, code, err := cl.GetInt32(0)
	require.NoError(t, err)
	require.Equal(t, hcerr.None, code)
	require.Equal(t, int32(5), v)
}
