package transport

import (
	"crypto/tls"
	"net"
)

// DialTCP dials a plain TCP stream endpoint using cfg's connect
// timeout.
func DialTCP(cfg Config, addr string) (net.Conn, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	return net.DialTimeout("tcp", addr, cfg.ConnectTimeout)
}

// DialTLS dials a TLS-wrapped TCP stream endpoint. tlsConfig is
// caller-supplied rather than built from a process-global SSL
// context, matching the spec's requirement for explicit, per-
// connection TLS configuration.
func DialTLS(cfg Config, addr string, tlsConfig *tls.Config) (net.Conn, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
}

// ListenTCP starts a plain TCP listener for a server endpoint.
func ListenTCP(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// ListenTLS starts a TLS-wrapped TCP listener for a server endpoint.
func ListenTLS(addr string, tlsConfig *tls.Config) (net.Listener, error) {
	return tls.Listen("tcp", addr, tlsConfig)
}
