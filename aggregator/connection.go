package aggregator

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/clog"
	"github.com/democosm/hcfabric/hcclient"
	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/hctree"
	"github.com/democosm/hcfabric/slip"
	"github.com/democosm/hcfabric/transport"
	"github.com/google/uuid"
)

// ParamSpec describes one parameter on the remote server a Connection
// mirrors locally. The binding of path->PID->type is an external
// collaborator concern on the original system (the map/NLD lookup
// utilities spec §1 places out of scope); here it is supplied by the
// caller alongside the XML transport configuration instead of being
// rediscovered by the Connection itself.
type ParamSpec struct {
	Path   string
	PID    uint16
	Type   cell.TypeCode
	Access hctree.Access
}

// Connection pairs one hcclient.Client with a local mount container
// whose parameters delegate every operation to the client, per spec
// §4.7 and §2 item 8.
type Connection struct {
	ID     uuid.UUID
	Name   string
	clog   clog.Clog
	client *hcclient.Client
	closer io.Closer
	root   *hctree.Container
}

// NewConnection builds the transport stack described by cfg, dials
// it, starts a client over it, and mirrors schema as a local
// container tree mounted at cfg.Name.
func NewConnection(cfg ConnConfig, schema []ParamSpec) (*Connection, error) {
	rw, closer, err := dialConn(cfg)
	if err != nil {
		return nil, fmt.Errorf("aggregator: conn %q: %w", cfg.Name, err)
	}

	client := hcclient.New(rw)
	client.SetTimeout(time.Duration(cfg.TimeoutUs) * time.Microsecond)
	if err := client.Start(); err != nil {
		closer.Close()
		return nil, fmt.Errorf("aggregator: conn %q: start client: %w", cfg.Name, err)
	}

	root, err := hctree.NewContainer(cfg.Name)
	if err != nil {
		client.Stop()
		closer.Close()
		return nil, fmt.Errorf("aggregator: conn %q: %w", cfg.Name, err)
	}

	c := &Connection{
		ID:     uuid.New(),
		Name:   cfg.Name,
		clog:   clog.NewLogger("aggregator." + cfg.Name),
		client: client,
		closer: closer,
		root:   root,
	}

	if err := c.mirror(schema); err != nil {
		client.Stop()
		closer.Close()
		return nil, fmt.Errorf("aggregator: conn %q: %w", cfg.Name, err)
	}

	return c, nil
}

// Root returns the locally mirrored container mounted for this
// connection.
func (sf *Connection) Root() *hctree.Container {
	return sf.root
}

// Close stops the client and releases the transport.
func (sf *Connection) Close() error {
	sf.client.Stop()
	return sf.closer.Close()
}

func dialConn(cfg ConnConfig) (io.ReadWriter, io.Closer, error) {
	switch {
	case cfg.UDPSocket != nil:
		return dialUDPSocket(cfg.UDPSocket)
	case cfg.SLIPFramer != nil:
		return dialSLIPFramer(cfg.SLIPFramer)
	default:
		return nil, nil, fmt.Errorf("no transport configured")
	}
}

func dialUDPSocket(u *UDPSocketConfig) (io.ReadWriter, io.Closer, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(u.Port)})
	if err != nil {
		return nil, nil, err
	}
	dest, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", u.DestIPAddr, u.DestPort))
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	d := transport.NewDatagram(conn, dest)
	return d, d, nil
}

func dialSLIPFramer(s *SLIPFramerConfig) (io.ReadWriter, io.Closer, error) {
	var (
		conn net.Conn
		err  error
	)
	switch {
	case s.TCPClient != nil:
		conn, err = transport.DialTCP(transport.DefaultConfig(),
			fmt.Sprintf("%s:%d", s.TCPClient.SrvIPAddr, s.TCPClient.SrvPort))
	case s.TLSClient != nil:
		conn, err = transport.DialTLS(transport.DefaultConfig(),
			fmt.Sprintf("%s:%d", s.TLSClient.SrvIPAddr, s.TLSClient.SrvPort),
			&tls.Config{ServerName: s.TLSClient.SrvIPAddr})
		if err == nil {
			err = exchangeAuth(conn, s.TLSClient.AuthString)
		}
	default:
		return nil, nil, fmt.Errorf("no client configured")
	}
	if err != nil {
		return nil, nil, err
	}
	return slip.New(conn), conn, nil
}

// exchangeAuth sends the configured authorization string as the
// first line over the freshly handshaken TLS connection. Spec §1
// scopes authentication protocol design out beyond this simple
// exchange.
func exchangeAuth(conn net.Conn, authString string) error {
	_, err := conn.Write([]byte(strings.TrimRight(authString, "\n") + "\n"))
	return err
}

// mirror builds one local parameter per schema entry, walking/creating
// intermediate containers as needed and delegating every operation to
// the client by PID, the Go counterpart of the original's locally
// mirrored remote-schema tree (spec §2 item 8).
func (sf *Connection) mirror(schema []ParamSpec) error {
	for _, ps := range schema {
		cont, leaf, err := ensurePath(sf.root, ps.Path)
		if err != nil {
			return err
		}
		p, err := sf.newMirrorParameter(leaf, ps)
		if err != nil {
			return err
		}
		if err := cont.AddParameter(p); err != nil {
			return err
		}
	}
	return nil
}

// ensurePath splits path into directory segments and a leaf name,
// creating any missing containers along the way, and returns the
// final container plus the leaf name.
func ensurePath(root *hctree.Container, path string) (*hctree.Container, string, error) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return nil, "", fmt.Errorf("invalid parameter path %q", path)
	}
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		if next := cur.Resolve(seg); next != nil {
			cur = next
			continue
		}
		child, err := hctree.NewContainer(seg)
		if err != nil {
			return nil, "", err
		}
		if err := cur.AddContainer(child); err != nil {
			return nil, "", err
		}
		cur = child
	}
	return cur, segs[len(segs)-1], nil
}

// remoteCode turns an hcclient call's (code, err) pair into a single
// hcerr.Code to forward to the mirror's caller. A transport-level
// failure (timeout, reset transport) surfaces from the client as a Go
// error wrapping an hcerr.Code rather than as the code return value
// itself, so both must be checked: a non-nil err that is an hcerr.Code
// passes through verbatim (e.g. hcerr.Timeout), any other non-nil err
// collapses to hcerr.Unspec, and otherwise code is already the
// protocol-level result.
func remoteCode(code hcerr.Code, err error) hcerr.Code {
	if err != nil {
		if c, ok := err.(hcerr.Code); ok {
			return c
		}
		return hcerr.Unspec
	}
	return code
}

func mirrorDecodeErr(derr error) hcerr.Code {
	if code, ok := derr.(hcerr.Code); ok {
		return code
	}
	return hcerr.Deser
}

func (sf *Connection) newMirrorParameter(name string, ps ParamSpec) (*hctree.Parameter, error) {
	pid := ps.PID
	cl := sf.client

	switch ps.Type {
	case cell.Int8:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetInt8(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendInt8(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeInt8()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetInt8(pid, v)
				return remoteCode(code, err)
			})
	case cell.Uint8:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetUint8(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendUint8(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeUint8()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetUint8(pid, v)
				return remoteCode(code, err)
			})
	case cell.Int16:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetInt16(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendInt16(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeInt16()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetInt16(pid, v)
				return remoteCode(code, err)
			})
	case cell.Uint16:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetUint16(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendUint16(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeUint16()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetUint16(pid, v)
				return remoteCode(code, err)
			})
	case cell.Int32:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetInt32(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendInt32(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeInt32()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetInt32(pid, v)
				return remoteCode(code, err)
			})
	case cell.Uint32:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetUint32(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendUint32(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeUint32()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetUint32(pid, v)
				return remoteCode(code, err)
			})
	case cell.Int64:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetInt64(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendInt64(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeInt64()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetInt64(pid, v)
				return remoteCode(code, err)
			})
	case cell.Uint64:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetUint64(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendUint64(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeUint64()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetUint64(pid, v)
				return remoteCode(code, err)
			})
	case cell.Float:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetFloat(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendFloat(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeFloat()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetFloat(pid, v)
				return remoteCode(code, err)
			})
	case cell.Double:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetDouble(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendDouble(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeDouble()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetDouble(pid, v)
				return remoteCode(code, err)
			})
	case cell.IPv4:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetIPv4(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendIPv4(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeIPv4()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetIPv4(pid, v)
				return remoteCode(code, err)
			})
	case cell.Bool:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetBool(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendBool(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeBool()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetBool(pid, v)
				return remoteCode(code, err)
			})
	case cell.String:
		return hctree.NewCellParameter(name, ps.Type, ps.Access,
			func(out *cell.Cell) hcerr.Code {
				v, code, err := cl.GetString(pid)
				if rc := remoteCode(code, err); rc != hcerr.None {
					return rc
				}
				out.AppendString(v)
				return out.Err()
			},
			func(in *cell.Cell) hcerr.Code {
				v, derr := in.DecodeString()
				if derr != nil {
					return mirrorDecodeErr(derr)
				}
				code, err := cl.SetString(pid, v)
				return remoteCode(code, err)
			})
	case cell.Call:
		return hctree.NewCallableParameter(name, ps.Access,
			func() hcerr.Code { code, err := cl.Call(pid); return remoteCode(code, err) },
			func(eid uint32) hcerr.Code { code, err := cl.CallTbl(pid, eid); return remoteCode(code, err) })
	default:
		return nil, fmt.Errorf("mirror parameter %q: unsupported type %v", name, ps.Type)
	}
}
