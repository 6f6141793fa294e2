// Command hcquery sends one request to an HC query server and prints
// the reply, the Go counterpart of src/app/hcquery/main.cc.
package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/democosm/hcfabric/cmd/internal/cli"
)

var (
	addr    string
	path    string
	timeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "hcquery",
		Short: "Query a parameter path from an HC query server",
		RunE:  run,
	}
	root.Flags().StringVar(&addr, "addr", "", "query server address (host:port)")
	root.Flags().StringVar(&path, "path", "", "parameter path")
	root.Flags().DurationVar(&timeout, "timeout", time.Second, "reply timeout")
	root.MarkFlagRequired("addr")
	root.MarkFlagRequired("path")

	if err := root.Execute(); err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
}

func run(cmd *cobra.Command, args []string) error {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		os.Exit(cli.UsageError(fmt.Sprintf("resolve %q: %v", addr, err)))
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
	defer conn.Close()

	id := fmt.Sprintf("%04d", os.Getpid()%10000)
	req := id + "," + path
	if _, err := conn.Write([]byte(req)); err != nil {
		os.Exit(cli.UsageError(fmt.Sprintf("send query: %v", err)))
	}

	conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		os.Exit(cli.UsageError(fmt.Sprintf("timed out waiting for response: %v", err)))
	}

	fmt.Println(string(buf[:n]))
	return nil
}
