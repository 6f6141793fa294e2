// Package hcclient implements the HC protocol client: a single
// in-flight request/response slot serialized over a transport, with an
// independent receive path for server-initiated PUB notifications.
package hcclient

import (
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/clog"
	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/proto"
)

const maxMessageSize = 65535

// DefaultTimeout bounds how long a request waits for its matching
// response before failing with hcerr.Timeout.
const DefaultTimeout = 5 * time.Second

// Client serializes requests over transport one at a time — per spec
// §4.6, only one transaction may be in flight — while a background
// receive loop keeps consuming frames so unsolicited PUB notifications
// are dispatched to subscribers independent of whatever request/
// response exchange is currently outstanding.
type Client struct {
	clog      clog.Clog
	transport io.ReadWriter
	timeout   time.Duration

	mu       sync.Mutex
	cond     *sync.Cond
	waiting  bool
	nextTxn  uint16
	haveResp bool
	respMsg  proto.Message

	subMu sync.Mutex
	subs  map[uint16]func(*cell.Cell)

	g *errgroup.Group
}

// New returns a Client bound to transport with DefaultTimeout. Call
// Start before issuing requests.
func New(transport io.ReadWriter) *Client {
	c := &Client{
		transport: transport,
		timeout:   DefaultTimeout,
		clog:      clog.NewLogger("hcclient"),
		subs:      make(map[uint16]func(*cell.Cell)),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// SetTimeout overrides the per-request response deadline.
func (sf *Client) SetTimeout(d time.Duration) {
	sf.mu.Lock()
	sf.timeout = d
	sf.mu.Unlock()
}

// Start spawns the background receive loop.
func (sf *Client) Start() error {
	sf.g = &errgroup.Group{}
	sf.g.Go(sf.receiveLoop)
	return nil
}

// Stop closes the transport, if closable, and waits for the receive
// loop to return. It does not cut short a call still waiting for its
// response: such a call returns hcerr.Timeout once its deadline
// passes.
func (sf *Client) Stop() error {
	if closer, ok := sf.transport.(io.Closer); ok {
		_ = closer.Close()
	}
	var err error
	if sf.g != nil {
		err = sf.g.Wait()
	}
	sf.mu.Lock()
	sf.cond.Broadcast()
	sf.mu.Unlock()
	return err
}

func (sf *Client) receiveLoop() error {
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
		// proto.Decode's Body aliases the slice it's given rather than
		// copying, so the frame must be copied out of the reused buf
		// before decoding: otherwise the next Read overwrites it out
		// from under a caller still decoding a response, or a PUB
		// dispatched concurrently with that decode.
		frame := make([]byte, n)
		copy(frame, buf[:n])
		msg, err := proto.Decode(frame)
		if err != nil {
			sf.clog.Warn("malformed frame: %v", err)
			continue
		}
		if msg.Opcode == proto.OpPub {
			sf.dispatchPub(msg)
			continue
		}
		if msg.Opcode.IsResponse() {
			sf.mu.Lock()
			sf.respMsg = msg
			sf.haveResp = true
			sf.cond.Broadcast()
			sf.mu.Unlock()
		}
	}
}

func (sf *Client) dispatchPub(msg proto.Message) {
	pid, err := msg.Body.DecodeRawUint16()
	if err != nil {
		return
	}
	sf.subMu.Lock()
	cb := sf.subs[pid]
	sf.subMu.Unlock()
	if cb == nil {
		return
	}
	cb(msg.Body)
}

// call reserves the single in-flight slot, sends a request built from
// op and body, and blocks until the matching response arrives or the
// configured timeout elapses. It returns the response's body cell,
// which callers decode in the field order the opcode expects.
func (sf *Client) call(op proto.Opcode, body *cell.Cell) (*cell.Cell, error) {
	sf.mu.Lock()
	for sf.waiting {
		sf.cond.Wait()
	}
	sf.waiting = true
	txn := sf.nextTxn
	sf.nextTxn++
	sf.haveResp = false
	timeout := sf.timeout
	sf.mu.Unlock()

	req := proto.NewRequest(txn, op, body)
	if _, err := sf.transport.Write(proto.Encode(req)); err != nil {
		sf.release()
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		sf.mu.Lock()
		sf.cond.Broadcast()
		sf.mu.Unlock()
	})
	defer timer.Stop()

	sf.mu.Lock()
	for !(sf.haveResp && sf.respMsg.Txn == txn) {
		if !time.Now().Before(deadline) {
			break
		}
		sf.cond.Wait()
	}
	var resp proto.Message
	ok := sf.haveResp && sf.respMsg.Txn == txn
	if ok {
		resp = sf.respMsg
	}
	sf.waiting = false
	sf.cond.Signal()
	sf.mu.Unlock()

	if !ok {
		return nil, hcerr.Timeout
	}
	return resp.Body, nil
}

func (sf *Client) release() {
	sf.mu.Lock()
	sf.waiting = false
	sf.cond.Signal()
	sf.mu.Unlock()
}

// GetCell issues GET for pid and returns the decoded value cell.
func (sf *Client) GetCell(pid uint16) (*cell.Cell, hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	resp, err := sf.call(proto.OpGet, body)
	if err != nil {
		return nil, hcerr.None, err
	}
	return sf.valueResponse(resp)
}

// SetCell issues SET for pid with value.
func (sf *Client) SetCell(pid uint16, value *cell.Cell) (hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawBytes(value.Bytes())
	resp, err := sf.call(proto.OpSet, body)
	if err != nil {
		return hcerr.None, err
	}
	return sf.errOnlyResponse(resp)
}

// GetCellTbl issues IGET for pid/eid.
func (sf *Client) GetCellTbl(pid uint16, eid uint32) (*cell.Cell, hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(eid)
	resp, err := sf.call(proto.OpIGet, body)
	if err != nil {
		return nil, hcerr.None, err
	}
	return sf.indexedValueResponse(resp)
}

// SetCellTbl issues ISET for pid/eid with value.
func (sf *Client) SetCellTbl(pid uint16, eid uint32, value *cell.Cell) (hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(eid)
	body.AppendRawBytes(value.Bytes())
	resp, err := sf.call(proto.OpISet, body)
	if err != nil {
		return hcerr.None, err
	}
	return sf.indexedErrOnlyResponse(resp)
}

// AddCell issues ADD for pid with value, the list-parameter insert op.
func (sf *Client) AddCell(pid uint16, value *cell.Cell) (hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawBytes(value.Bytes())
	resp, err := sf.call(proto.OpAdd, body)
	if err != nil {
		return hcerr.None, err
	}
	return sf.errOnlyResponse(resp)
}

// SubCell issues SUB for pid with value, the list-parameter remove op.
func (sf *Client) SubCell(pid uint16, value *cell.Cell) (hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawBytes(value.Bytes())
	resp, err := sf.call(proto.OpSub, body)
	if err != nil {
		return hcerr.None, err
	}
	return sf.errOnlyResponse(resp)
}

// ReadCell issues READ for pid, requesting up to length bytes starting
// at offset from a file-kind parameter.
func (sf *Client) ReadCell(pid uint16, offset uint32, length uint16) ([]byte, hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(offset)
	body.AppendRawUint16(length)
	resp, err := sf.call(proto.OpRead, body)
	if err != nil {
		return nil, hcerr.None, err
	}
	if _, derr := resp.DecodeRawUint16(); derr != nil {
		return nil, hcerr.Deser, nil
	}
	if _, derr := resp.DecodeRawUint32(); derr != nil {
		return nil, hcerr.Deser, nil
	}
	n, derr := resp.DecodeRawUint16()
	if derr != nil {
		return nil, hcerr.Deser, nil
	}
	data, derr := resp.DecodeRawBytes(int(n))
	if derr != nil {
		return nil, hcerr.Deser, nil
	}
	code, derr := resp.DecodeErrCode()
	if derr != nil {
		return nil, hcerr.Deser, nil
	}
	return data, code, nil
}

// WriteCell issues WRITE for pid, writing data starting at offset to a
// file-kind parameter.
func (sf *Client) WriteCell(pid uint16, offset uint32, data []byte) (hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(offset)
	body.AppendRawUint16(uint16(len(data)))
	body.AppendRawBytes(data)
	resp, err := sf.call(proto.OpWrite, body)
	if err != nil {
		return hcerr.None, err
	}
	if _, derr := resp.DecodeRawUint16(); derr != nil {
		return hcerr.Deser, nil
	}
	if _, derr := resp.DecodeRawUint32(); derr != nil {
		return hcerr.Deser, nil
	}
	if _, derr := resp.DecodeRawUint16(); derr != nil {
		return hcerr.Deser, nil
	}
	code, derr := resp.DecodeErrCode()
	if derr != nil {
		return hcerr.Deser, nil
	}
	return code, nil
}

// Call issues CALL for pid, a callable-kind parameter with no
// arguments or return value beyond the error code.
func (sf *Client) Call(pid uint16) (hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	resp, err := sf.call(proto.OpCall, body)
	if err != nil {
		return hcerr.None, err
	}
	return sf.errOnlyResponse(resp)
}

// CallTbl issues ICALL for pid/eid.
func (sf *Client) CallTbl(pid uint16, eid uint32) (hcerr.Code, error) {
	body := cell.New()
	body.AppendRawUint16(pid)
	body.AppendRawUint32(eid)
	resp, err := sf.call(proto.OpICall, body)
	if err != nil {
		return hcerr.None, err
	}
	return sf.indexedErrOnlyResponse(resp)
}

// CLSub issues CLSUB for path with criterion, registering cb to run on
// every PUB frame the server sends for the resolved parameter. It
// returns the pid the server resolved path to, which the caller can
// use to undo the registration locally; CLUnsub only needs path to
// unsubscribe on the server side.
func (sf *Client) CLSub(path, criterion string, cb func(value *cell.Cell)) (uint16, hcerr.Code, error) {
	body := cell.New()
	body.AppendRawString(path)
	body.AppendRawString(criterion)
	if code := body.Err(); code != hcerr.None {
		return 0, code, nil
	}
	resp, err := sf.call(proto.OpClSub, body)
	if err != nil {
		return 0, hcerr.None, err
	}
	pid, derr := resp.DecodeRawUint16()
	if derr != nil {
		return 0, hcerr.Deser, nil
	}
	code, derr := resp.DecodeErrCode()
	if derr != nil {
		return 0, hcerr.Deser, nil
	}
	if code == hcerr.None && cb != nil {
		sf.subMu.Lock()
		sf.subs[pid] = cb
		sf.subMu.Unlock()
	}
	return pid, code, nil
}

// CLUnsub issues CLUNSUB for path and removes the local callback
// registered for pid.
func (sf *Client) CLUnsub(path string, pid uint16) (hcerr.Code, error) {
	body := cell.New()
	body.AppendRawString(path)
	if code := body.Err(); code != hcerr.None {
		return code, nil
	}
	resp, err := sf.call(proto.OpClUnsub, body)
	if err != nil {
		return hcerr.None, err
	}
	code, derr := resp.DecodeErrCode()
	if derr != nil {
		return hcerr.Deser, nil
	}
	if code == hcerr.None {
		sf.subMu.Lock()
		delete(sf.subs, pid)
		sf.subMu.Unlock()
	}
	return code, nil
}

func (sf *Client) valueResponse(resp *cell.Cell) (*cell.Cell, hcerr.Code, error) {
	if _, err := resp.DecodeRawUint16(); err != nil {
		return nil, hcerr.Deser, nil
	}
	return sf.splitValueAndErr(resp)
}

func (sf *Client) indexedValueResponse(resp *cell.Cell) (*cell.Cell, hcerr.Code, error) {
	if _, err := resp.DecodeRawUint16(); err != nil {
		return nil, hcerr.Deser, nil
	}
	if _, err := resp.DecodeRawUint32(); err != nil {
		return nil, hcerr.Deser, nil
	}
	return sf.splitValueAndErr(resp)
}

// splitValueAndErr peels the trailing errcode byte off of what
// remains of resp and returns everything before it as a fresh cell
// positioned for the caller to decode a type-tagged value from.
func (sf *Client) splitValueAndErr(resp *cell.Cell) (*cell.Cell, hcerr.Code, error) {
	all := resp.Bytes()
	rest := all[len(all)-resp.Remaining():]
	if len(rest) == 0 {
		return nil, hcerr.Deser, nil
	}
	value, errByte := rest[:len(rest)-1], rest[len(rest)-1]
	return cell.Wrap(value), hcerr.Code(int8(errByte)), nil
}

func (sf *Client) errOnlyResponse(resp *cell.Cell) (hcerr.Code, error) {
	if _, err := resp.DecodeRawUint16(); err != nil {
		return hcerr.Deser, nil
	}
	code, err := resp.DecodeErrCode()
	if err != nil {
		return hcerr.Deser, nil
	}
	return code, nil
}

func (sf *Client) indexedErrOnlyResponse(resp *cell.Cell) (hcerr.Code, error) {
	if _, err := resp.DecodeRawUint16(); err != nil {
		return hcerr.Deser, nil
	}
	if _, err := resp.DecodeRawUint32(); err != nil {
		return hcerr.Deser, nil
	}
	code, err := resp.DecodeErrCode()
	if err != nil {
		return hcerr.Deser, nil
	}
	return code, nil
}
