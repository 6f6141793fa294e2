package proto

import (
	"encoding/binary"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// HeaderSize is the fixed-width prefix of every wire message: a
// 16-bit transaction id and a one-byte opcode. Everything after it —
// pid, eid, type-tagged value, errcode, depending on the opcode — is
// carried in Body, opcode-specific framing fields interleaved with
// cell.Cell's tagged values.
const HeaderSize = 3

// Message is a decoded wire message: header fields plus a body cell
// positioned at the first opcode-specific field.
type Message struct {
	Txn    uint16
	Opcode Opcode
	Body   *cell.Cell
}

// Encode renders a Message to its wire form.
func Encode(m Message) []byte {
	body := m.Body.Bytes()
	out := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint16(out[0:2], m.Txn)
	out[2] = byte(m.Opcode)
	copy(out[HeaderSize:], body)
	return out
}

// Decode parses a wire message out of a complete frame payload. It
// does not interpret the body; callers decode the body cell in the
// field order the opcode table specifies.
func Decode(frame []byte) (Message, error) {
	if len(frame) < HeaderSize {
		return Message{}, hcerr.Deser
	}
	return Message{
		Txn:    binary.BigEndian.Uint16(frame[0:2]),
		Opcode: Opcode(frame[2]),
		Body:   cell.Wrap(frame[HeaderSize:]),
	}, nil
}

// NewRequest builds a request Message. body is nil-safe: a nil body
// yields an empty Cell.
func NewRequest(txn uint16, op Opcode, body *cell.Cell) Message {
	if body == nil {
		body = cell.New()
	}
	return Message{Txn: txn, Opcode: op.Base(), Body: body}
}

// NewResponse builds a response Message echoing the request's
// transaction id and opcode with RespFlag set.
func NewResponse(req Message, body *cell.Cell) Message {
	if body == nil {
		body = cell.New()
	}
	return Message{Txn: req.Txn, Opcode: req.Opcode.Base().AsResponse(), Body: body}
}
