package query

import (
	"testing"

	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/hctree"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	top := hctree.NewRoot()
	p, err := hctree.NewUint32Parameter("count", hctree.Readable, func() uint32 { return 42 }, nil)
	require.NoError(t, err)
	require.NoError(t, top.AddParameter(p))

	secret, err := hctree.NewUint32Parameter("secret", 0, func() uint32 { return 1 }, nil)
	require.NoError(t, err)
	require.NoError(t, top.AddParameter(secret))

	return &Server{top: top}
}

func TestHandleResolvesReadableParameter(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, "7,42", s.handle("7,count"))
}

func TestHandleUnknownPath(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, "1,ERR,"+hcerr.NotFound.String(), s.handle("1,missing"))
}

func TestHandleUnreadableParameter(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, "2,ERR,"+hcerr.Access.String(), s.handle("2,secret"))
}

func TestHandleMalformedRequest(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, "", s.handle("no-comma-here"))
	require.Equal(t, "", s.handle(",count"))
}
