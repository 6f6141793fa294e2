package transport

import (
	"errors"
	"time"
)

// Valid ranges for the fields below, mirroring the teacher's
// range-const-plus-Valid idiom.
const (
	ConnectTimeoutMin = 1 * time.Second
	ConnectTimeoutMax = 255 * time.Second

	MaxPayloadMin = 64
	MaxPayloadMax = 65535
)

// Config defines a connect-side transport configuration. Valid fills
// in defaults for every zero-valued field and rejects values outside
// their valid range.
type Config struct {
	// ConnectTimeout bounds TCP/TLS dial time.
	ConnectTimeout time.Duration

	// MaxPayload is a SLIP frame payload size, defaulted and
	// range-checked by Valid. No endpoint reads it; a slip.Framer
	// bounds each frame by the buffer passed to its Read.
	MaxPayload uint32
}

// Valid applies defaults for unspecified fields and range-checks the
// rest.
func (sf *Config) Valid() error {
	if sf == nil {
		return errors.New("transport: nil config")
	}

	if sf.ConnectTimeout == 0 {
		sf.ConnectTimeout = 5 * time.Second
	} else if sf.ConnectTimeout < ConnectTimeoutMin || sf.ConnectTimeout > ConnectTimeoutMax {
		return errors.New("transport: ConnectTimeout not in [1, 255]s")
	}

	if sf.MaxPayload == 0 {
		sf.MaxPayload = 4096
	} else if sf.MaxPayload < MaxPayloadMin || sf.MaxPayload > MaxPayloadMax {
		return errors.New("transport: MaxPayload not in [64, 65535]")
	}

	return nil
}

// DefaultConfig returns a Config with every field at its default.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		MaxPayload:     4096,
	}
}
