package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jstachio/ezkv"
	"github.com/jstachio/ezkv/ezkvlog"
	"github.com/jstachio/ezkv/media"
)

func newLoadCmd() *cobra.Command {
	var (
		flagsCSV string
		redact   bool
	)

	cmd := &cobra.Command{
		Use:   "load [flags] <uri> [uri...]",
		Short: "Resolve one or more root resources and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := ezkv.ParseLoadFlags(flagsCSV)
			if err != nil {
				return fmt.Errorf("parsing --flags: %w", err)
			}

			env := ezkv.NewDefaultEnvironment()
			env.Log = ezkvlog.NewSlogLogger(slog.Default())

			kvs, err := ezkv.NewSystem().WithEnv(env).Load(cmd.Context(), flags, args...)
			if err != nil {
				return fmt.Errorf("loading %v: %w", args, err)
			}

			if redact {
				kvs = kvs.Redact()
			}

			pairs, err := kvs.ToPairs()
			if err != nil {
				return fmt.Errorf("collecting result: %w", err)
			}

			return media.Properties{}.Format(os.Stdout, pairs)
		},
	}

	cmd.Flags().StringVar(&flagsCSV, "flags", "", fmt.Sprintf("comma-separated load flags applied to every root, e.g. %s", ezkv.NoRequire))
	cmd.Flags().BoolVar(&redact, "redact", false, "replace sensitive values with REDACTED before printing")

	return cmd
}
