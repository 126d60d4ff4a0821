package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jstachio/ezkv/ezkvlog"
	"github.com/jstachio/ezkv/profile"
	"github.com/jstachio/ezkv/version"
)

func newRootCmd() *cobra.Command {
	logCfg := ezkvlog.NewConfig()
	profCfg := profile.NewConfig()

	var prof *profile.Profiler

	root := &cobra.Command{
		Use:           "ezkv",
		Short:         "Load and inspect layered ezkv configuration",
		Version:       versionString(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			handler, err := logCfg.NewHandler(os.Stderr)
			if err != nil {
				return fmt.Errorf("configuring logging: %w", err)
			}

			slog.SetDefault(slog.New(handler))

			prof = profCfg.NewProfiler()

			return prof.Start()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return prof.Stop()
		},
	}

	logCfg.RegisterFlags(root.PersistentFlags())
	profCfg.RegisterFlags(root.PersistentFlags())

	if err := logCfg.RegisterCompletions(root); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	if err := profCfg.RegisterCompletions(root); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	root.AddCommand(newLoadCmd())
	root.AddCommand(newInspectCmd())

	return root
}

func versionString() string {
	v := version.Version
	if v == "" {
		v = version.Revision
	}

	return fmt.Sprintf("%s (%s/%s, %s)", v, version.GoOS, version.GoArch, version.GoVersion)
}
