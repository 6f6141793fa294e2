package transport

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func listenUDP(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDatagramReplyToSender(t *testing.T) {
	serverConn := listenUDP(t)
	clientConn := listenUDP(t)

	server := NewDatagram(serverConn, nil)

	_, err := clientConn.WriteToUDP([]byte("hello"), serverConn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := server.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))

	// Write with no explicit destination targets the cached sender.
	_, err = server.Write([]byte("world"))
	require.NoError(t, err)

	n, _, err = clientConn.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, "world", string(buf[:n]))
}

func TestDatagramFixedDestinationIgnoresSender(t *testing.T) {
	serverConn := listenUDP(t)
	aConn := listenUDP(t)
	bConn := listenUDP(t)

	fixed := NewDatagram(serverConn, bConn.LocalAddr())

	_, err := aConn.WriteToUDP([]byte("from-a"), serverConn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := fixed.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "from-a", string(buf[:n]))

	_, err = fixed.Write([]byte("to-b"))
	require.NoError(t, err)

	n, _, err = bConn.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, "to-b", string(buf[:n]))
}

func TestDatagramWriteBeforeAnyReadFails(t *testing.T) {
	serverConn := listenUDP(t)
	server := NewDatagram(serverConn, nil)

	_, err := server.Write([]byte("too soon"))
	require.Error(t, err)
}
