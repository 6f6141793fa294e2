package aggregator

import (
	"fmt"
	"io"
	"net"

	"github.com/democosm/hcfabric/clog"
	"github.com/democosm/hcfabric/hcserver"
	"github.com/democosm/hcfabric/hctree"
	"github.com/democosm/hcfabric/query"
	"github.com/democosm/hcfabric/transport"
)

// Schemas maps a connection name to the remote parameter set that
// connection mirrors locally.
type Schemas map[string][]ParamSpec

// Aggregator owns one outbound Server composed from several backend
// Connections' mirrored trees, plus an optional query server, per
// spec §4.7 and §2 item 9.
type Aggregator struct {
	clog  clog.Clog
	top   *hctree.Container
	srv   *hcserver.Server
	srvrw io.Closer
	qsrv  *query.Server

	conns []*Connection
}

// New parses cfg, builds one Connection per backend (an unreachable
// or malformed connection fails only that connection, per §4.7,
// logged and skipped rather than aborting the whole aggregator),
// mounts each connection's mirrored tree under the aggregator's top
// container, and registers every parameter with the outbound server.
// Nothing is started here; Start starts the outbound server and the
// query server.
func New(cfg *ServerConfig, schemas Schemas) (*Aggregator, error) {
	a := &Aggregator{
		clog: clog.NewLogger("aggregator"),
		top:  hctree.NewRoot(),
	}

	for _, connCfg := range cfg.Conns {
		conn, err := NewConnection(connCfg, schemas[connCfg.Name])
		if err != nil {
			a.clog.Error("connection %q failed to initialize: %v", connCfg.Name, err)
			continue
		}
		if err := a.top.AddContainer(conn.Root()); err != nil {
			a.clog.Error("connection %q could not be mounted: %v", connCfg.Name, err)
			conn.Close()
			continue
		}
		a.conns = append(a.conns, conn)
	}

	srvConn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(cfg.Port)})
	if err != nil {
		a.closeConns()
		return nil, fmt.Errorf("aggregator: listen server port: %w", err)
	}
	srvTransport := transport.NewDatagram(srvConn, nil)
	a.srvrw = srvTransport
	a.srv = hcserver.New(srvTransport, a.top, cfg.Name)
	a.addParamsToServer(a.top)

	if cfg.QPort != nil {
		qConn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(*cfg.QPort)})
		if err != nil {
			a.clog.Warn("query server port failed to bind: %v", err)
		} else {
			a.qsrv = query.New(qConn, a.top)
		}
	}

	return a, nil
}

// TopContainer returns the aggregator's composite tree root.
func (sf *Aggregator) TopContainer() *hctree.Container {
	return sf.top
}

// Start starts the outbound server and, if configured, the query
// server.
func (sf *Aggregator) Start() error {
	if err := sf.srv.Start(); err != nil {
		return err
	}
	if sf.qsrv != nil {
		sf.qsrv.Start()
	}
	return nil
}

// Stop stops the outbound server, the query server, and every
// backend connection.
func (sf *Aggregator) Stop() error {
	err := sf.srv.Stop()
	if sf.qsrv != nil {
		if qerr := sf.qsrv.Stop(); err == nil {
			err = qerr
		}
	}
	sf.closeConns()
	return err
}

func (sf *Aggregator) closeConns() {
	for _, c := range sf.conns {
		c.Close()
	}
}

// addParamsToServer recursively registers every parameter in the
// subtree rooted at start with the aggregator's outbound server,
// the Go counterpart of hcaggregator.cc's AddParamsToServer.
func (sf *Aggregator) addParamsToServer(start *hctree.Container) {
	for _, p := range start.Parameters() {
		if err := sf.srv.Add(p); err != nil {
			sf.clog.Warn("parameter %q not added to server: %v", p.Path(), err)
		}
	}
	for _, child := range start.Containers() {
		sf.addParamsToServer(child)
	}
}
