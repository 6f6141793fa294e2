// Package query implements the query server: a secondary,
// unauthenticated text/ASCII introspection endpoint independent of
// the binary HC protocol, per spec §2 item 7 and §6.
//
// A request is one UDP datagram of the form "ID,PATH", where ID is a
// caller-chosen correlation token (echoed back verbatim, so a client
// overlapping several outstanding queries on one socket can still
// match replies) and PATH is an absolute parameter path. The server
// replies with "ID,VALUE" on success or "ID,ERR,MNEMONIC" if the path
// does not resolve to a readable parameter.
package query

import (
	"fmt"
	"net"
	"strings"

	"github.com/democosm/hcfabric/clog"
	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/hctree"
)

const maxDatagramSize = 4096

// Server answers query datagrams against a parameter tree. Unlike
// hcserver.Server it is stateless across requests: every datagram is
// a self-contained read-only lookup, so one Server can field many
// concurrent callers on a single UDP socket without per-peer slots.
type Server struct {
	clog clog.Clog
	conn net.PacketConn
	top  *hctree.Container

	done chan struct{}
}

// New returns a Server that answers queries against top once Start is
// called.
func New(conn net.PacketConn, top *hctree.Container) *Server {
	return &Server{
		conn: conn,
		top:  top,
		clog: clog.NewLogger("query"),
		done: make(chan struct{}),
	}
}

// Start spawns the receive loop in a new goroutine.
func (sf *Server) Start() {
	go sf.receiveLoop()
}

// Stop closes the socket, unblocking the receive loop.
func (sf *Server) Stop() error {
	close(sf.done)
	return sf.conn.Close()
}

func (sf *Server) receiveLoop() {
	buf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := sf.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-sf.done:
				return
			default:
				sf.clog.Debug("query receive loop exiting: %v", err)
				return
			}
		}
		if n == 0 {
			continue
		}
		reply := sf.handle(string(buf[:n]))
		if reply == "" {
			continue
		}
		if _, err := sf.conn.WriteTo([]byte(reply), addr); err != nil {
			sf.clog.Warn("query reply failed: %v", err)
		}
	}
}

func (sf *Server) handle(line string) string {
	line = strings.TrimRight(line, "\r\n")
	id, path, ok := strings.Cut(line, ",")
	if !ok || id == "" {
		return ""
	}

	p := sf.top.ResolveParam(path)
	if p == nil {
		return fmt.Sprintf("%s,ERR,%s", id, hcerr.NotFound)
	}
	if p.Access()&hctree.Readable == 0 {
		return fmt.Sprintf("%s,ERR,%s", id, hcerr.Access)
	}

	val, code := p.GetStr()
	if code != hcerr.None {
		return fmt.Sprintf("%s,ERR,%s", id, code)
	}
	return fmt.Sprintf("%s,%s", id, val)
}
