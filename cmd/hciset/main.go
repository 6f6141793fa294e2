// Command hciset issues one ISET transaction against an HC server, the
// Go counterpart of src/app/hciset/main.cc.
package main

import (
	"fmt"
	"os"
	"strconv"
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
	value   string
	timeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "hciset",
		Short: "Set an indexed parameter value on an HC server",
		RunE:  run,
	}
	root.Flags().StringVar(&addr, "addr", "", "server address (host:port)")
	root.Flags().Uint16Var(&pid, "pid", 0, "parameter id")
	root.Flags().Uint32Var(&eid, "eid", 0, "element id")
	root.Flags().StringVar(&typ, "type", "", "parameter type")
	root.Flags().StringVar(&value, "value", "", "value to set")
	root.Flags().DurationVar(&timeout, "timeout", time.Second, "transaction timeout")
	root.MarkFlagRequired("addr")
	root.MarkFlagRequired("type")
	root.MarkFlagRequired("value")

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

	var code hcerr.Code

	switch typ {
	case cli.TypeInt32:
		v, perr := strconv.ParseInt(value, 0, 32)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetTblInt32(pid, eid, int32(v))
	case cli.TypeUint32:
		v, perr := strconv.ParseUint(value, 0, 32)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetTblUint32(pid, eid, uint32(v))
	case cli.TypeFloat:
		v, perr := strconv.ParseFloat(value, 32)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetTblFloat(pid, eid, float32(v))
	case cli.TypeString:
		code, err = client.SetTblString(pid, eid, value)
	default:
		os.Exit(cli.UsageError(fmt.Sprintf("unsupported indexed type %q", typ)))
	}

	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
	if code != hcerr.None {
		fmt.Println(code)
	}
	os.Exit(cli.ExitCode(code))
	return nil
}
