package transport

import (
	"time"

	serial "go.bug.st/serial"
)

// SerialConfig describes a serial port endpoint, addressed by device
// path (e.g. "/dev/ttyUSB0") rather than network address.
type SerialConfig struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   serial.Parity
	StopBits serial.StopBits
}

// DefaultSerialConfig returns an 8N1 configuration at 115200 baud.
func DefaultSerialConfig(device string) SerialConfig {
	return SerialConfig{
		Device:   device,
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens the configured serial port as a byte stream. A
// SLIP framer is layered on top by the caller, matching the
// slipframer(tcpclient|tlsclient) nesting the aggregator's
// configuration language allows — here, slipframer(serial).
func OpenSerial(cfg SerialConfig, readTimeout time.Duration) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   cfg.Parity,
		StopBits: cfg.StopBits,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, err
	}
	if readTimeout > 0 {
		if err := port.SetReadTimeout(readTimeout); err != nil {
			port.Close()
			return nil, err
		}
	}
	return port, nil
}
