package aggregator

import (
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/clog"
	"github.com/democosm/hcfabric/hcclient"
	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/hcserver"
	"github.com/democosm/hcfabric/hctree"
)

// gateTransport swallows outbound writes while closed, simulating a
// backend that never acknowledges a request so the mirror's client
// call runs past its deadline.
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

func newMirroredConnection(t *testing.T, schema []ParamSpec) (*Connection, *hcserver.Server) {
	t.Helper()
	clientConn, serverConn := net.Pipe()

	srvTop := hctree.NewRoot()
	var stored int32 = 42
	p, err := hctree.NewInt32Parameter("level", hctree.Readable|hctree.Writable,
		func() int32 { return stored },
		func(v int32) hcerr.Code { stored = v; return hcerr.None })
	require.NoError(t, err)
	require.NoError(t, srvTop.AddParameter(p))

	srv := hcserver.New(serverConn, srvTop, "backend")
	require.NoError(t, srv.Add(p))
	require.NoError(t, srv.Start())

	client := hcclient.New(clientConn)
	require.NoError(t, client.Start())

	root, err := hctree.NewContainer("backend")
	require.NoError(t, err)

	conn := &Connection{
		ID:     uuid.New(),
		Name:   "backend",
		clog:   clog.NewLogger("aggregator.backend"),
		client: client,
		root:   root,
	}
	require.NoError(t, conn.mirror(schema))

	t.Cleanup(func() {
		client.Stop()
		clientConn.Close()
		srv.Stop()
	})

	return conn, srv
}

func TestConnectionMirrorScalar(t *testing.T) {
	conn, _ := newMirroredConnection(t, []ParamSpec{
		{Path: "sys/level", PID: 0, Type: cell.Int32, Access: hctree.Readable | hctree.Writable},
	})

	p := conn.Root().ResolveParam("sys/level")
	require.NotNil(t, p)

	val, code := p.GetStr()
	require.Equal(t, hcerr.None, code)
	require.Equal(t, "42", val)

	require.Equal(t, hcerr.None, p.SetStr("100"))

	val, code = p.GetStr()
	require.Equal(t, hcerr.None, code)
	require.Equal(t, "100", val)
}

// TestConnectionMirrorTimeoutPropagates confirms a backend GET that
// never answers surfaces to the aggregator's own GetStr caller as
// ERR_TIMEOUT, not a silently defaulted zero value with ERR_NONE.
func TestConnectionMirrorTimeoutPropagates(t *testing.T) {
	clientConn, serverConn := net.Pipe()

	srvTop := hctree.NewRoot()
	var stored int32 = 42
	p, err := hctree.NewInt32Parameter("level", hctree.Readable|hctree.Writable,
		func() int32 { return stored },
		func(v int32) hcerr.Code { stored = v; return hcerr.None })
	require.NoError(t, err)
	require.NoError(t, srvTop.AddParameter(p))

	srv := hcserver.New(serverConn, srvTop, "backend")
	require.NoError(t, srv.Add(p))
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })

	gate := &gateTransport{ReadWriter: clientConn}
	client := hcclient.New(gate)
	client.SetTimeout(100 * time.Millisecond)
	require.NoError(t, client.Start())
	t.Cleanup(func() { client.Stop() })

	root, err := hctree.NewContainer("backend")
	require.NoError(t, err)

	conn := &Connection{
		ID:     uuid.New(),
		Name:   "backend",
		clog:   clog.NewLogger("aggregator.backend"),
		client: client,
		root:   root,
	}
	require.NoError(t, conn.mirror([]ParamSpec{
		{Path: "sys/level", PID: 0, Type: cell.Int32, Access: hctree.Readable | hctree.Writable},
	}))

	mirrored := conn.Root().ResolveParam("sys/level")
	require.NotNil(t, mirrored)

	_, code := mirrored.GetStr()
	require.Equal(t, hcerr.Timeout, code)

	gate.open.Store(true)
	val, code := mirrored.GetStr()
	require.Equal(t, hcerr.None, code)
	require.Equal(t, "42", val)
}

// TestConnectionComposesTwoBackends confirms two independent
// Connections mount disjoint subtrees under a shared root and that a
// read through each mounted subtree reaches its own backend.
func TestConnectionComposesTwoBackends(t *testing.T) {
	connA, _ := newMirroredConnection(t, []ParamSpec{
		{Path: "sys/level", PID: 0, Type: cell.Int32, Access: hctree.Readable | hctree.Writable},
	})

	clientConnB, serverConnB := net.Pipe()
	srvTopB := hctree.NewRoot()
	pb, err := hctree.NewInt32Parameter("level", hctree.Readable|hctree.Writable,
		func() int32 { return 7 },
		func(v int32) hcerr.Code { return hcerr.None })
	require.NoError(t, err)
	require.NoError(t, srvTopB.AddParameter(pb))
	srvB := hcserver.New(serverConnB, srvTopB, "second")
	require.NoError(t, srvB.Add(pb))
	require.NoError(t, srvB.Start())
	t.Cleanup(func() { srvB.Stop() })

	clientB := hcclient.New(clientConnB)
	require.NoError(t, clientB.Start())
	t.Cleanup(func() { clientB.Stop() })

	rootB, err := hctree.NewContainer("second")
	require.NoError(t, err)
	connB := &Connection{
		ID:     uuid.New(),
		Name:   "second",
		clog:   clog.NewLogger("aggregator.second"),
		client: clientB,
		root:   rootB,
	}
	require.NoError(t, connB.mirror([]ParamSpec{
		{Path: "sys/level", PID: 0, Type: cell.Int32, Access: hctree.Readable | hctree.Writable},
	}))

	top := hctree.NewRoot()
	require.NoError(t, top.AddContainer(connA.Root()))
	require.NoError(t, top.AddContainer(connB.Root()))

	pa := top.ResolveParam("/backend/sys/level")
	require.NotNil(t, pa)
	va, code := pa.GetStr()
	require.Equal(t, hcerr.None, code)
	require.Equal(t, "42", va)

	pbMirror := top.ResolveParam("/second/sys/level")
	require.NotNil(t, pbMirror)
	vb, code := pbMirror.GetStr()
	require.Equal(t, hcerr.None, code)
	require.Equal(t, "7", vb)
}

func TestEnsurePathCreatesIntermediateContainers(t *testing.T) {
	root, err := hctree.NewContainer("top")
	require.NoError(t, err)

	cont, leaf, err := ensurePath(root, "a/b/c")
	require.NoError(t, err)
	require.Equal(t, "c", leaf)
	require.Equal(t, "/a/b", cont.Path())
}
