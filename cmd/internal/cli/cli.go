// Package cli holds the flag wiring shared by the one-shot hc*
// command-line tools: dial a server over UDP, run one typed
// transaction, translate the result into the process exit code.
//
// The original tools resolved a parameter's PID and type from a
// locally maintained map file (HCUtility::MapLookup); that lookup
// mechanism is explicitly out of scope for this core (spec §1), so
// these tools take --pid and --type directly instead.
package cli

import (
	"fmt"
	"net"
	"time"

	"github.com/democosm/hcfabric/hcclient"
	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/transport"
)

// Type names accepted by the --type flag, matching the wire type
// mnemonics of spec §3.
const (
	TypeInt8   = "int8"
	TypeUint8  = "uint8"
	TypeInt16  = "int16"
	TypeUint16 = "uint16"
	TypeInt32  = "int32"
	TypeUint32 = "uint32"
	TypeInt64  = "int64"
	TypeUint64 = "uint64"
	TypeFloat  = "float"
	TypeDouble = "double"
	TypeIPv4   = "ipv4"
	TypeBool   = "bool"
	TypeString = "string"
)

// Dial opens a fixed-destination UDP connection to addr (every write
// goes to addr) and starts an hcclient.Client over it with timeout.
func Dial(addr string, timeout time.Duration) (*hcclient.Client, func() error, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return nil, nil, fmt.Errorf("listen: %w", err)
	}
	d := transport.NewDatagram(conn, raddr)
	client := hcclient.New(d)
	client.SetTimeout(timeout)
	if err := client.Start(); err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("start client: %w", err)
	}
	return client, func() error { client.Stop(); return d.Close() }, nil
}

// ExitCode implements the §6 CLI exit code rule: zero on success,
// negative on usage error, the protocol error code's numeric value on
// a protocol-level failure.
func ExitCode(code hcerr.Code) int {
	if code == hcerr.None {
		return 0
	}
	return int(code)
}

// UsageError prints msg and returns the negative usage-error exit
// code the original tools return from their own Usage() path.
func UsageError(msg string) int {
	fmt.Println(msg)
	return -1
}
