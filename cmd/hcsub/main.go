// Command hcsub subscribes to a parameter by path and prints every
// PUB notification it receives, the Go counterpart of
// src/app/hcsub/main.cc.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/cmd/internal/cli"
	"github.com/democosm/hcfabric/hcerr"
)

var (
	addr      string
	path      string
	criterion string
	timeout   time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "hcsub",
		Short: "Subscribe to a parameter path on an HC server and print updates",
		RunE:  run,
	}
	root.Flags().StringVar(&addr, "addr", "", "server address (host:port)")
	root.Flags().StringVar(&path, "path", "", "parameter path")
	root.Flags().StringVar(&criterion, "criterion", "", "subscription criterion")
	root.Flags().DurationVar(&timeout, "timeout", time.Second, "transaction timeout")
	root.MarkFlagRequired("addr")
	root.MarkFlagRequired("path")

	if err := root.Execute(); err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
}

func run(cmd *cobra.Command, args []string) error {
	client, closeFn, err := cli.Dial(addr, timeout)
	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
	defer closeFn()

	_, code, err := client.CLSub(path, criterion, func(value *cell.Cell) {
		fmt.Println(describe(value))
	})
	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
	if code != hcerr.None {
		fmt.Println(code)
		os.Exit(cli.ExitCode(code))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

// describe renders a scalar cell value for display without knowing
// the parameter's declared type ahead of time; hcsub subscribes by
// path alone and has no local schema to consult.
func describe(c *cell.Cell) string {
	tag, err := c.PeekType()
	if err != nil {
		return "<empty>"
	}
	switch tag.Base() {
	case cell.Bool:
		v, _ := c.DecodeBool()
		return fmt.Sprintf("%v", v)
	case cell.Int8:
		v, _ := c.DecodeInt8()
		return fmt.Sprintf("%d", v)
	case cell.Uint8:
		v, _ := c.DecodeUint8()
		return fmt.Sprintf("%d", v)
	case cell.Int16:
		v, _ := c.DecodeInt16()
		return fmt.Sprintf("%d", v)
	case cell.Uint16:
		v, _ := c.DecodeUint16()
		return fmt.Sprintf("%d", v)
	case cell.Int32:
		v, _ := c.DecodeInt32()
		return fmt.Sprintf("%d", v)
	case cell.Uint32:
		v, _ := c.DecodeUint32()
		return fmt.Sprintf("%d", v)
	case cell.Int64:
		v, _ := c.DecodeInt64()
		return fmt.Sprintf("%d", v)
	case cell.Uint64:
		v, _ := c.DecodeUint64()
		return fmt.Sprintf("%d", v)
	case cell.Float:
		v, _ := c.DecodeFloat()
		return fmt.Sprintf("%g", v)
	case cell.Double:
		v, _ := c.DecodeDouble()
		return fmt.Sprintf("%g", v)
	case cell.String:
		v, _ := c.DecodeString()
		return v
	default:
		return tag.String()
	}
}
