// Command hccli loads an aggregator configuration and runs an
// interactive shell against its composite tree, the Go counterpart of
// src/app/hccli/main.cc. OpenSSL global init/teardown in the original
// is replaced by Go's per-dial crypto/tls.Config (spec §9's "global
// SSL init/teardown -> explicit init handle" note; here the handle is
// implicit in the standard library's stateless TLS client API, so
// there is nothing left to construct or tear down at main's scope).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/democosm/hcfabric/aggregator"
	"github.com/democosm/hcfabric/cmd/internal/cli"
	"github.com/democosm/hcfabric/shell"
)

var schemaPath string

func main() {
	root := &cobra.Command{
		Use:   "hccli <aggregator config.xml>",
		Short: "Run an interactive shell against an aggregator's composite tree",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().StringVar(&schemaPath, "schema", "", "JSON file describing each connection's mirrored parameters")
	root.MarkFlagRequired("schema")

	if err := root.Execute(); err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfgFile, err := os.Open(args[0])
	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
	defer cfgFile.Close()

	cfg, err := aggregator.ParseServer(cfgFile)
	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}

	schemaFile, err := os.Open(schemaPath)
	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
	schemas, err := aggregator.LoadSchemas(schemaFile)
	schemaFile.Close()
	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}

	agg, err := aggregator.New(cfg, schemas)
	if err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}
	defer agg.Stop()

	if err := agg.Start(); err != nil {
		os.Exit(cli.UsageError(err.Error()))
	}

	proc := shell.NewProcessor(agg.TopContainer(), os.Stdout)
	repl := shell.NewREPL(proc, os.Stdout)
	if err := repl.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return nil
}
