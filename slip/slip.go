// Package slip implements SLIP (RFC 1055 style) byte-stuffed framing
// over an arbitrary byte stream, used to carry HC wire messages over
// transports — serial links chief among them — that have no built-in
// message boundaries.
package slip

import (
	"io"
)

// Special bytes, per the SLIP convention.
const (
	byteEnd    byte = 0xC0
	byteEsc    byte = 0xDB
	byteEscEnd byte = 0xDC
	byteEscEsc byte = 0xDD
)

type rxMode int

const (
	rxNormal rxMode = iota
	rxEscape
	rxOverflow
)

// Framer wraps a lower-level byte stream with SLIP framing. It
// implements io.Reader and io.Writer over whole frames: each Read
// call returns exactly one decoded frame (or an error), and each
// Write call sends exactly one END-delimited, byte-stuffed frame.
type Framer struct {
	low io.ReadWriter
	mode rxMode
}

var _ io.ReadWriter = (*Framer)(nil)

// New wraps low with SLIP framing.
func New(low io.ReadWriter) *Framer {
	return &Framer{low: low}
}

// Read decodes one frame into buf, returning its length. A frame that
// would overflow buf, or an invalid escape sequence, discards what has
// been buffered so far and resynchronizes in rxNormal mode; Read keeps
// consuming bytes from the underlying stream until a complete,
// in-bounds frame terminates at an END byte. Read blocks until that
// happens or the underlying stream errors.
func (sf *Framer) Read(buf []byte) (int, error) {
	sf.mode = rxNormal
	n := 0
	one := make([]byte, 1)

	for {
		rn, err := sf.low.Read(one)
		if rn != 1 {
			if err == nil {
				err = io.ErrNoProgress
			}
			return n, err
		}
		ch := one[0]

		switch sf.mode {
		case rxOverflow:
			// Discard everything until the next END; that END is the
			// resync point, not the start of a frame to return.
			if ch == byteEnd {
				sf.mode = rxNormal
			}
		case rxNormal:
			switch ch {
			case byteEnd:
				if n != 0 {
					return n, nil
				}
				// Leading/duplicate END: keep reading.
			case byteEsc:
				sf.mode = rxEscape
			default:
				if n >= len(buf) {
					n = 0
					sf.mode = rxOverflow
					continue
				}
				buf[n] = ch
				n++
			}
		case rxEscape:
			if n >= len(buf) {
				n = 0
				sf.mode = rxOverflow
				continue
			}
			switch ch {
			case byteEscEnd:
				buf[n] = byteEnd
				n++
			case byteEscEsc:
				buf[n] = byteEsc
				n++
			default:
				// Invalid escape sequence: discard and resync.
				n = 0
			}
			sf.mode = rxNormal
		}
	}
}

// Write byte-stuffs buf and sends it as one END-delimited frame.
func (sf *Framer) Write(buf []byte) (int, error) {
	out := make([]byte, 0, len(buf)*2+2)
	out = append(out, byteEnd)
	for _, ch := range buf {
		switch ch {
		case byteEnd:
			out = append(out, byteEsc, byteEscEnd)
		case byteEsc:
			out = append(out, byteEsc, byteEscEsc)
		default:
			out = append(out, ch)
		}
	}
	out = append(out, byteEnd)

	if _, err := sf.low.Write(out); err != nil {
		return 0, err
	}
	return len(buf), nil
}
