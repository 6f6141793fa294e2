// Command hcget issues one GET transaction against an HC server and
// prints the result, the Go counterpart of src/app/hcget/main.cc.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/democosm/hcfabric/cmd/internal/cli"
	"github.com/democosm/hcfabric/hcerr"
)

var (
	addr    string
	pid     uint16
	typ     string
	timeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "hcget",
		Short: "Get a parameter value from an HC server",
		RunE:  run,
	}
	root.Flags().StringVar(&addr, "addr", "", "server address (host:port)")
	root.Flags().Uint16Var(&pid, "pid", 0, "parameter id")
	root.Flags().StringVar(&typ, "type", "", "parameter type")
	root.Flags().DurationVar(&timeout, "timeout", time.Second, "transaction timeout")
	root.MarkFlagRequired("addr")
	root.MarkFlagRequired("type")

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

	var (
		val  interface{}
		code hcerr.Code
	)

	switch typ {
	case cli.TypeInt8:
		val, code, err = client.GetInt8(pid)
	case cli.TypeUint8:
		val, code, err = client.GetUint8(pid)
	case cli.TypeInt16:
		val, code, err = client.GetInt16(pid)
	case cli.TypeUint16:
		val, code, err = client.GetUint16(pid)
	case cli.TypeInt32:
		val, code, err = client.GetInt32(pid)
	case cli.TypeUint32:
		val, code, err = client.GetUint32(pid)
	case cli.TypeInt64:
		val, code, err = client.GetInt64(pid)
	case cli.TypeUint64:
		val, code, err = client.GetUint64(pid)
	case cli.TypeFloat:
		val, code, err = client.GetFloat(pid)
	case cli.TypeDouble:
		val, code, err = client.GetDouble(pid)
	case cli.TypeIPv4:
		val, code, err = client.GetIPv4(pid)
	case cli.TypeBool:
		val, code, err = client.GetBool(pid)
	case cli.TypeString:
		val, code, err = client.GetString(pid)
	default:
		os.Exit(cli.UsageError(fmt.Sprintf("unknown type %q", typ)))
	}

	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
	if code != hcerr.None {
		fmt.Println(code)
		os.Exit(cli.ExitCode(code))
	}
	fmt.Println(val)
	return nil
}
