package hctree

import (
	"testing"

	"github.com/democosm/hcfabric/hcerr"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) *Container {
	t.Helper()
	top := NewRoot()
	sys, err := NewContainer("sys")
	require.NoError(t, err)
	require.NoError(t, top.AddContainer(sys))

	net, err := NewContainer("net")
	require.NoError(t, err)
	require.NoError(t, sys.AddContainer(net))

	ip, err := NewStringParameter("ip", Readable|Writable, func() string { return "10.0.0.1" }, func(string) hcerr.Code { return hcerr.None })
	require.NoError(t, err)
	require.NoError(t, net.AddParameter(ip))

	mac, err := NewStringParameter("mac", Readable, func() string { return "aa:bb" }, nil)
	require.NoError(t, err)
	require.NoError(t, net.AddParameter(mac))

	return top
}

func TestPathResolution(t *testing.T) {
	top := buildTree(t)

	ip := top.ResolveParam("/sys/net/ip")
	require.NotNil(t, ip)
	require.Equal(t, "ip", ip.Name())

	ip2 := top.ResolveParam("/sys/net/./../net/ip")
	require.NotNil(t, ip2)
	require.Same(t, ip, ip2)

	matches := top.FindMatches("/sys/*/ip")
	require.Len(t, matches, 1)

	noMatch := top.FindMatches("/sys/?/ip")
	require.Empty(t, noMatch)
}

func TestContainerDuplicateName(t *testing.T) {
	top := NewRoot()
	a, err := NewContainer("a")
	require.NoError(t, err)
	require.NoError(t, top.AddContainer(a))

	b, err := NewContainer("a")
	require.NoError(t, err)
	require.Error(t, top.AddContainer(b))
}

func TestMatchGlob(t *testing.T) {
	require.True(t, Match("*", "anything"))
	require.True(t, Match("n?t", "net"))
	require.False(t, Match("?", "net"))
	require.True(t, Match("ne*", "net"))
}

func TestFindRecursive(t *testing.T) {
	top := buildTree(t)
	found := top.FindRecursive("ip")
	require.Len(t, found, 1)
	require.Equal(t, "/sys/net/ip", found[0].Path)
}

func TestNextCommonChar(t *testing.T) {
	top := buildTree(t)

	ch, ok := top.NextCommonChar("/sys/net/i")
	require.True(t, ok)
	require.Equal(t, byte('p'), ch)

	_, ok = top.NextCommonChar("/sys/net/")
	require.False(t, ok)
}

func TestFindMatchesGlobInDirectorySegment(t *testing.T) {
	top := NewRoot()
	sys, err := NewContainer("sys")
	require.NoError(t, err)
	require.NoError(t, top.AddContainer(sys))

	for _, name := range []string{"eth0", "eth1", "lo"} {
		iface, err := NewContainer(name)
		require.NoError(t, err)
		require.NoError(t, sys.AddContainer(iface))

		ip, err := NewStringParameter("ip", Readable, func() string { return "0.0.0.0" }, nil)
		require.NoError(t, err)
		require.NoError(t, iface.AddParameter(ip))
	}

	matches := top.FindMatches("/sys/eth*/ip")
	require.Len(t, matches, 2)

	paths := []string{matches[0].Path, matches[1].Path}
	require.ElementsMatch(t, []string{"/sys/eth0/ip", "/sys/eth1/ip"}, paths)

	none := top.FindMatches("/sys/nosuch*/ip")
	require.Empty(t, none)
}

func TestInvalidName(t *testing.T) {
	_, err := NewContainer("bad/name")
	require.Error(t, err)
	_, err = NewContainer("")
	require.Error(t, err)
}
