// Command hcset issues one SET transaction against an HC server, the
// Go counterpart of src/app/hcset/main.cc.
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
	typ     string
	value   string
	timeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "hcset",
		Short: "Set a parameter value on an HC server",
		RunE:  run,
	}
	root.Flags().StringVar(&addr, "addr", "", "server address (host:port)")
	root.Flags().Uint16Var(&pid, "pid", 0, "parameter id")
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
	case cli.TypeInt8:
		v, perr := strconv.ParseInt(value, 0, 8)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetInt8(pid, int8(v))
	case cli.TypeUint8:
		v, perr := strconv.ParseUint(value, 0, 8)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetUint8(pid, uint8(v))
	case cli.TypeInt16:
		v, perr := strconv.ParseInt(value, 0, 16)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetInt16(pid, int16(v))
	case cli.TypeUint16:
		v, perr := strconv.ParseUint(value, 0, 16)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetUint16(pid, uint16(v))
	case cli.TypeInt32:
		v, perr := strconv.ParseInt(value, 0, 32)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetInt32(pid, int32(v))
	case cli.TypeUint32:
		v, perr := strconv.ParseUint(value, 0, 32)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetUint32(pid, uint32(v))
	case cli.TypeInt64:
		v, perr := strconv.ParseInt(value, 0, 64)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetInt64(pid, v)
	case cli.TypeUint64:
		v, perr := strconv.ParseUint(value, 0, 64)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetUint64(pid, v)
	case cli.TypeFloat:
		v, perr := strconv.ParseFloat(value, 32)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetFloat(pid, float32(v))
	case cli.TypeDouble:
		v, perr := strconv.ParseFloat(value, 64)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetDouble(pid, v)
	case cli.TypeIPv4:
		v, perr := strconv.ParseUint(value, 0, 32)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetIPv4(pid, uint32(v))
	case cli.TypeBool:
		v, perr := strconv.ParseBool(value)
		if perr != nil {
			os.Exit(cli.UsageError(perr.Error()))
		}
		code, err = client.SetBool(pid, v)
	case cli.TypeString:
		code, err = client.SetString(pid, value)
	default:
		os.Exit(cli.UsageError(fmt.Sprintf("unknown type %q", typ)))
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
