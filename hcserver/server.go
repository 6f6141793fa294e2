// Package hcserver implements the HC protocol server: it owns a
// parameter tree, listens on a transport, decodes requests, dispatches
// them to the addressed parameter, and writes back the response.
package hcserver

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/clog"
	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/hctree"
	"github.com/democosm/hcfabric/proto"
)

// maxMessageSize bounds a single decoded request/response frame.
const maxMessageSize = 65535

// Server owns a parameter tree's PID registry and answers requests
// received on a single transport. A Server serves at most one active
// remote peer at a time, matching the client's single-in-flight-
// transaction discipline (spec §4.6) and the transport layer's
// reply-to-sender addressing (spec §6) — concurrent distinct peers on
// the same transport are not multiplexed.
type Server struct {
	clog      clog.Clog
	transport io.ReadWriter
	top       *hctree.Container
	name      string

	mu      sync.Mutex
	started bool
	params  []*hctree.Parameter

	subMu sync.Mutex
	subs  map[uint16][]subscription

	// pendingNotify accumulates pids mutated by the request currently
	// being handled; handle drains it and publishes after the
	// response itself has been written. Only touched from the single
	// receive-loop goroutine, so it needs no lock.
	pendingNotify []uint16

	g *errgroup.Group
}

type subscription struct {
	txn       uint16
	path      string
	criterion string
	param     *hctree.Parameter
}

// New returns a Server that will expose top over transport once
// Start is called.
func New(transport io.ReadWriter, top *hctree.Container, name string) *Server {
	return &Server{
		transport: transport,
		top:       top,
		name:      name,
		clog:      clog.NewLogger("hcserver." + name),
		subs:      make(map[uint16][]subscription),
	}
}

// Add registers a parameter, assigning it the next dense PID, and
// fails with hcerr.Invalid if the server has already been started.
func (sf *Server) Add(p *hctree.Parameter) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if sf.started {
		return hcerr.Invalid
	}
	p.SetPID(uint16(len(sf.params)))
	sf.params = append(sf.params, p)
	return nil
}

// lookup returns the parameter registered at pid, or nil if pid is
// out of range. Safe to call after Start without locking: the
// registry is frozen once the receive loop is running.
func (sf *Server) lookup(pid uint16) *hctree.Parameter {
	if int(pid) >= len(sf.params) {
		return nil
	}
	return sf.params[pid]
}

// Start spawns the receive loop. After Start, Add fails and the
// registry is read-only, so the loop itself runs lock-free over it.
func (sf *Server) Start() error {
	sf.mu.Lock()
	if sf.started {
		sf.mu.Unlock()
		return hcerr.Invalid
	}
	sf.started = true
	sf.mu.Unlock()

	sf.g = &errgroup.Group{}
	sf.g.Go(sf.receiveLoop)
	return nil
}

// Stop closes the transport, if closable, and waits for the receive
// loop to return.
func (sf *Server) Stop() error {
	if closer, ok := sf.transport.(io.Closer); ok {
		_ = closer.Close()
	}
	if sf.g != nil {
		return sf.g.Wait()
	}
	return nil
}

func (sf *Server) receiveLoop() error {
	buf := make([]byte, maxMessageSize)
	for {
		n, err := sf.transport.Read(buf)
		if err != nil {
			sf.clog.Debug("receive loop exiting: %v", err)
			return err
		}
		if n == 0 {
			continue
		}
		sf.handle(buf[:n])
	}
}

func (sf *Server) handle(frame []byte) {
	req, err := proto.Decode(frame)
	if err != nil {
		sf.clog.Warn("malformed frame: %v", err)
		return
	}

	var resp proto.Message
	switch req.Opcode.Base() {
	case proto.OpGet:
		resp = sf.handleGet(req)
	case proto.OpSet:
		resp = sf.handleSet(req)
	case proto.OpIGet:
		resp = sf.handleIGet(req)
	case proto.OpISet:
		resp = sf.handleISet(req)
	case proto.OpAdd:
		resp = sf.handleAdd(req)
	case proto.OpSub:
		resp = sf.handleSub(req)
	case proto.OpRead:
		resp = sf.handleRead(req)
	case proto.OpWrite:
		resp = sf.handleWrite(req)
	case proto.OpCall:
		resp = sf.handleCall(req)
	case proto.OpICall:
		resp = sf.handleICall(req)
	case proto.OpClSub:
		resp = sf.handleClSub(req)
	case proto.OpClUnsub:
		resp = sf.handleClUnsub(req)
	default:
		sf.clog.Warn("unknown opcode %d", req.Opcode)
		return
	}

	notify := sf.pendingNotify
	sf.pendingNotify = nil

	if _, err := sf.transport.Write(proto.Encode(resp)); err != nil {
		sf.clog.Warn("write response failed: %v", err)
	}

	// Publish frames are sent only after the request's own response is
	// on the wire, so a subscriber watching its own write sees the
	// acknowledgement before the notification.
	for _, pid := range notify {
		sf.Publish(pid)
	}
}

func (sf *Server) decodePID(req proto.Message) (*hctree.Parameter, uint16, hcerr.Code) {
	pid, err := req.Body.DecodeRawUint16()
	if err != nil {
		return nil, 0, hcerr.Deser
	}
	p := sf.lookup(pid)
	if p == nil {
		return nil, pid, hcerr.Pid
	}
	return p, pid, hcerr.None
}

func (sf *Server) handleGet(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	out := cell.New()
	if code == hcerr.None {
		code = p.GetCell(out)
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawBytes(out.Bytes())
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleSet(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	if code == hcerr.None {
		code = p.SetCell(req.Body)
		if code == hcerr.None {
			sf.pendingNotify = append(sf.pendingNotify, pid)
		}
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) decodeEID(req proto.Message, p *hctree.Parameter, pid uint16, code hcerr.Code) (uint32, hcerr.Code) {
	if code != hcerr.None {
		return 0, code
	}
	eid, err := req.Body.DecodeRawUint32()
	if err != nil {
		return 0, hcerr.Deser
	}
	return eid, hcerr.None
}

func (sf *Server) handleIGet(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	eid, code2 := sf.decodeEID(req, p, pid, code)
	if code == hcerr.None {
		code = code2
	}
	out := cell.New()
	if code == hcerr.None {
		code = p.GetCellTbl(eid, out)
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(eid)
	body.AppendRawBytes(out.Bytes())
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleISet(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	eid, code2 := sf.decodeEID(req, p, pid, code)
	if code == hcerr.None {
		code = code2
	}
	if code == hcerr.None {
		code = p.SetCellTbl(eid, req.Body)
		if code == hcerr.None {
			sf.pendingNotify = append(sf.pendingNotify, pid)
		}
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(eid)
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleICall(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	eid, code2 := sf.decodeEID(req, p, pid, code)
	if code == hcerr.None {
		code = code2
	}
	if code == hcerr.None {
		code = p.CallCellTbl(eid)
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(eid)
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleAdd(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	if code == hcerr.None {
		code = p.AddCell(req.Body)
		if code == hcerr.None {
			sf.pendingNotify = append(sf.pendingNotify, pid)
		}
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleSub(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	if code == hcerr.None {
		code = p.SubCell(req.Body)
		if code == hcerr.None {
			sf.pendingNotify = append(sf.pendingNotify, pid)
		}
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleRead(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	var offset uint32
	var length uint16
	if code == hcerr.None {
		var err error
		offset, err = req.Body.DecodeRawUint32()
		if err != nil {
			code = hcerr.Deser
		}
	}
	if code == hcerr.None {
		l, err := req.Body.DecodeRawUint16()
		if err != nil {
			code = hcerr.Deser
		}
		length = l
	}
	out := cell.New()
	if code == hcerr.None {
		code = p.ReadCell(offset, length, out)
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(offset)
	body.AppendRawUint16(uint16(len(out.Bytes())))
	body.AppendRawBytes(out.Bytes())
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleWrite(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	var offset uint32
	var length uint16
	if code == hcerr.None {
		var err error
		offset, err = req.Body.DecodeRawUint32()
		if err != nil {
			code = hcerr.Deser
		}
	}
	if code == hcerr.None {
		l, err := req.Body.DecodeRawUint16()
		if err != nil {
			code = hcerr.Deser
		}
		length = l
	}
	if code == hcerr.None {
		code = p.WriteCell(offset, length, req.Body)
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(offset)
	body.AppendRawUint16(length)
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleCall(req proto.Message) proto.Message {
	p, pid, code := sf.decodePID(req)
	if code == hcerr.None {
		code = p.CallCell()
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleClSub(req proto.Message) proto.Message {
	path, err := req.Body.DecodeRawString()
	code := hcerr.None
	var criterion string
	if err != nil {
		code = hcerr.Deser
	} else {
		criterion, err = req.Body.DecodeRawString()
		if err != nil {
			code = hcerr.Deser
		}
	}

	var p *hctree.Parameter
	if code == hcerr.None {
		p = sf.top.ResolveParam(path)
		if p == nil {
			code = hcerr.NotFound
		}
	}

	var pid uint16
	if code == hcerr.None {
		pid = p.PID()
		sf.subMu.Lock()
		sf.subs[pid] = append(sf.subs[pid], subscription{
			txn: req.Txn, path: path, criterion: criterion, param: p,
		})
		sf.subMu.Unlock()
	}

	// The resolved pid rides along in the response so the client can
	// key its own callback table by pid, the same id PUB frames carry
	// — CLSUB is the only request that addresses by path instead of
	// pid.
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

func (sf *Server) handleClUnsub(req proto.Message) proto.Message {
	path, err := req.Body.DecodeRawString()
	code := hcerr.None
	if err != nil {
		code = hcerr.Deser
	}

	var p *hctree.Parameter
	if code == hcerr.None {
		p = sf.top.ResolveParam(path)
		if p == nil {
			code = hcerr.NotFound
		}
	}

	if code == hcerr.None {
		sf.subMu.Lock()
		remaining := sf.subs[p.PID()][:0]
		for _, s := range sf.subs[p.PID()] {
			if s.path != path {
				remaining = append(remaining, s)
			}
		}
		sf.subs[p.PID()] = remaining
		sf.subMu.Unlock()
	}

	body := cell.New()
	body.AppendErrCode(code)
	return proto.NewResponse(req, body)
}

// onChange re-evaluates subscriptions after a successful mutation,
// publishing to every subscriber whose criterion currently matches.
func (sf *Server) onChange(pid uint16, p *hctree.Parameter) {
	sf.subMu.Lock()
	subs := append([]subscription(nil), sf.subs[pid]...)
	sf.subMu.Unlock()

	for _, s := range subs {
		if criterionMatches(s.criterion, p) {
			sf.publishTo(pid, p)
		}
	}
}

// Publish pushes the parameter's current value to every subscriber of
// pid whose criterion is satisfied, per spec §4.5. It can also be
// called directly by user code that mutates a parameter's backing
// state outside of a Set/ISet request.
func (sf *Server) Publish(pid uint16) {
	p := sf.lookup(pid)
	if p == nil {
		return
	}
	sf.onChange(pid, p)
}

func (sf *Server) publishTo(pid uint16, p *hctree.Parameter) {
	out := cell.New()
	if code := p.GetCell(out); code != hcerr.None {
		return
	}
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawBytes(out.Bytes())
	msg := proto.Message{Txn: 0, Opcode: proto.OpPub, Body: body}
	if _, err := sf.transport.Write(proto.Encode(msg)); err != nil {
		sf.clog.Warn("publish failed: %v", err)
	}
}

// criterionMatches evaluates a CLSUB criterion string against a
// parameter's current value. An empty criterion always matches; a
// leading '<', '>', or '=' followed by a number compares the
// parameter's current numeric value (formatted by GetStr) against
// that threshold. Any other form always matches, matching the
// original console's leniency toward free-form per-parameter text.
func criterionMatches(criterion string, p *hctree.Parameter) bool {
	criterion = strings.TrimSpace(criterion)
	if criterion == "" {
		return true
	}
	op, rest := criterion[0], criterion[1:]
	if op != '<' && op != '>' && op != '=' {
		return true
	}
	threshold, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return true
	}
	s, code := p.GetStr()
	if code != hcerr.None {
		return false
	}
	current, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return true
	}
	switch op {
	case '<':
		return current < threshold
	case '>':
		return current > threshold
	default:
		return current == threshold
	}
}
