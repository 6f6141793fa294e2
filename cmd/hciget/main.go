// Command hciget issues one IGET transaction against an HC server,
// the Go counterpart of src/app/hciget/main.cc.
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
	eid     uint32
	typ     string
	timeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "hciget",
		Short: "Get an indexed parameter value from an HC server",
		RunE:  run,
	}
	root.Flags().StringVar(&addr, "addr", "", "server address (host:port)")
	root.Flags().Uint16Var(&pid, "pid", 0, "parameter id")
	root.Flags().Uint32Var(&eid, "eid", 0, "element id")
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
	case cli.TypeInt32:
		val, code, err = client.GetTblInt32(pid, eid)
	case cli.TypeUint32:
		val, code, err = client.GetTblUint32(pid, eid)
	case cli.TypeFloat:
		val, code, err = client.GetTblFloat(pid, eid)
	case cli.TypeString:
		val, code, err = client.GetTblString(pid, eid)
	default:
		os.Exit(cli.UsageError(fmt.Sprintf("unsupported indexed type %q", typ)))
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
