// Package aggregator implements the HC aggregator: an XML-configured
// composition of several backend Connections into one re-exported
// Server, per spec §4.7.
package aggregator

import (
	"encoding/xml"
	"fmt"
	"io"
)

// ServerConfig is the top-level <server> document: the aggregator's
// own outbound listener plus the backend connections it fuses.
type ServerConfig struct {
	XMLName xml.Name     `xml:"server"`
	Name    string       `xml:"name"`
	Port    uint16       `xml:"port"`
	QPort   *uint16      `xml:"qport"`
	Conns   []ConnConfig `xml:"conn"`
}

// ConnConfig is one <conn>: a mount name, an inactivity timeout in
// microseconds, and exactly one nested transport sub-tree.
type ConnConfig struct {
	Name       string            `xml:"name"`
	TimeoutUs  uint32            `xml:"timeout"`
	UDPSocket  *UDPSocketConfig  `xml:"udpsocket"`
	SLIPFramer *SLIPFramerConfig `xml:"slipframer"`
}

// UDPSocketConfig is a <udpsocket> leaf transport.
type UDPSocketConfig struct {
	Port       uint16 `xml:"port"`
	DestIPAddr string `xml:"destipaddr"`
	DestPort   uint16 `xml:"destport"`
}

// SLIPFramerConfig is a <slipframer>, wrapping exactly one byte-stream
// client underneath.
type SLIPFramerConfig struct {
	MaxPayloadSize uint32            `xml:"maxpldsiz"`
	TCPClient      *TCPClientConfig  `xml:"tcpclient"`
	TLSClient      *TLSClientConfig  `xml:"tlsclient"`
}

// TCPClientConfig is a <tcpclient>.
type TCPClientConfig struct {
	Port      uint16 `xml:"port"`
	SrvIPAddr string `xml:"srvipaddr"`
	SrvPort   uint16 `xml:"srvport"`
}

// TLSClientConfig is a <tlsclient>, the same shape as TCPClientConfig
// plus an authorization string exchanged after the handshake.
type TLSClientConfig struct {
	Port       uint16 `xml:"port"`
	SrvIPAddr  string `xml:"srvipaddr"`
	SrvPort    uint16 `xml:"srvport"`
	AuthString string `xml:"authstring"`
}

// ParseServer decodes r into a ServerConfig and validates the
// required elements, the Go counterpart of hcaggregator.cc's
// ParseServer/ParseValue sequence (tinyxml2 DOM walk replaced by one
// encoding/xml Unmarshal, with the same required-field checks run
// afterward instead of inline per element).
func ParseServer(r io.Reader) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := xml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("aggregator: parse server: %w", err)
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("aggregator: server missing name")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("aggregator: server missing port")
	}
	if len(cfg.Conns) == 0 {
		return nil, fmt.Errorf("aggregator: server has no connections")
	}
	for i := range cfg.Conns {
		if err := validateConn(&cfg.Conns[i]); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func validateConn(c *ConnConfig) error {
	if c.Name == "" {
		return fmt.Errorf("aggregator: conn missing name")
	}
	if c.TimeoutUs == 0 {
		return fmt.Errorf("aggregator: conn %q missing timeout", c.Name)
	}
	switch {
	case c.UDPSocket != nil:
		return validateUDPSocket(c.Name, c.UDPSocket)
	case c.SLIPFramer != nil:
		return validateSLIPFramer(c.Name, c.SLIPFramer)
	default:
		return fmt.Errorf("aggregator: conn %q has no transport", c.Name)
	}
}

func validateUDPSocket(conn string, u *UDPSocketConfig) error {
	if u.Port == 0 {
		return fmt.Errorf("aggregator: conn %q udpsocket missing port", conn)
	}
	if u.DestIPAddr == "" {
		return fmt.Errorf("aggregator: conn %q udpsocket missing destipaddr", conn)
	}
	if u.DestPort == 0 {
		return fmt.Errorf("aggregator: conn %q udpsocket missing destport", conn)
	}
	return nil
}

func validateSLIPFramer(conn string, s *SLIPFramerConfig) error {
	if s.MaxPayloadSize == 0 {
		return fmt.Errorf("aggregator: conn %q slipframer missing maxpldsiz", conn)
	}
	switch {
	case s.TCPClient != nil:
		return validateTCPClient(conn, s.TCPClient)
	case s.TLSClient != nil:
		return validateTLSClient(conn, s.TLSClient)
	default:
		return fmt.Errorf("aggregator: conn %q slipframer has no client", conn)
	}
}

func validateTCPClient(conn string, t *TCPClientConfig) error {
	if t.SrvIPAddr == "" {
		return fmt.Errorf("aggregator: conn %q tcpclient missing srvipaddr", conn)
	}
	if t.SrvPort == 0 {
		return fmt.Errorf("aggregator: conn %q tcpclient missing srvport", conn)
	}
	return nil
}

func validateTLSClient(conn string, t *TLSClientConfig) error {
	if t.SrvIPAddr == "" {
		return fmt.Errorf("aggregator: conn %q tlsclient missing srvipaddr", conn)
	}
	if t.SrvPort == 0 {
		return fmt.Errorf("aggregator: conn %q tlsclient missing srvport", conn)
	}
	if t.AuthString == "" {
		return fmt.Errorf("aggregator: conn %q tlsclient missing authstring", conn)
	}
	return nil
}
