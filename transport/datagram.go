// Package transport provides the byte-stream and datagram endpoints
// the wire protocol rides on: UDP datagrams with optional
// reply-to-sender addressing, plain and TLS-wrapped TCP streams, and
// serial ports. Every endpoint implements io.ReadWriteCloser so the
// protocol layer above is transport-agnostic.
package transport

import (
	"net"
	"sync"
)

// Datagram is a net.PacketConn-backed endpoint. When constructed with
// a zero destination it operates in reply-to-sender mode: each Read
// caches the sender's address under a mutex and each Write targets
// the most recently cached sender. Constructed with a fixed
// destination, every Write targets that address regardless of what
// has been received.
type Datagram struct {
	conn net.PacketConn

	mu    sync.Mutex
	dest  net.Addr
	fixed bool
}

// NewDatagram wraps conn. If dest is non-nil the endpoint always
// writes to dest (fixed mode); if dest is nil the endpoint starts in
// reply-to-sender mode with no destination until the first Read.
func NewDatagram(conn net.PacketConn, dest net.Addr) *Datagram {
	return &Datagram{conn: conn, dest: dest, fixed: dest != nil}
}

// Read reads one datagram into buf. In reply-to-sender mode it
// updates the cached destination to the datagram's source address.
func (sf *Datagram) Read(buf []byte) (int, error) {
	n, addr, err := sf.conn.ReadFrom(buf)
	if err != nil {
		return n, err
	}
	if !sf.fixed {
		sf.mu.Lock()
		sf.dest = addr
		sf.mu.Unlock()
	}
	return n, nil
}

// Write sends buf to the current destination. In reply-to-sender mode
// with no destination cached yet (no datagram received), Write
// returns net.ErrClosed without sending anything.
func (sf *Datagram) Write(buf []byte) (int, error) {
	sf.mu.Lock()
	dest := sf.dest
	sf.mu.Unlock()
	if dest == nil {
		return 0, net.ErrClosed
	}
	return sf.conn.WriteTo(buf, dest)
}

// Close closes the underlying packet connection.
func (sf *Datagram) Close() error {
	return sf.conn.Close()
}
