// Command hcicall issues one ICALL transaction against an HC server,
// the Go counterpart of src/app/hcicall/main.cc.
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
	timeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "hcicall",
		Short: "Call an indexed callable parameter on an HC server",
		RunE:  run,
	}
	root.Flags().StringVar(&addr, "addr", "", "server address (host:port)")
	root.Flags().Uint16Var(&pid, "pid", 0, "parameter id")
	root.Flags().Uint32Var(&eid, "eid", 0, "element id")
	root.Flags().DurationVar(&timeout, "timeout", time.Second, "transaction timeout")
	root.MarkFlagRequired("addr")

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

	code, err := client.CallTbl(pid, eid)
	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
	if code != hcerr.None {
		fmt.Println(code)
	}
	os.Exit(cli.ExitCode(code))
	return nil
}
