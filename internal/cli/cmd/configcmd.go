package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipcast/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and scaffold configuration",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigCheckCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "init [path]",
		Short:         "Write a sample config file with every setting",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.sample.json"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteSample(path); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample config written to %s\n", path)
			return nil
		},
	}
}

func newConfigCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "check",
		Short:         "Print the effective config and report problems",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			w := cmd.OutOrStdout()

			if p := cfg.Path(); p != "" {
				fmt.Fprintf(w, "Config file: %s\n", p)
			} else {
				fmt.Fprintln(w, "Config file: (defaults and environment only)")
			}
			fmt.Fprintln(w, cfg.String())

			val := cfg.Validate()
			for _, warn := range val.Warnings {
				fmt.Fprintf(w, "warning: %s\n", warn)
			}
			for _, e := range val.Errors {
				fmt.Fprintf(w, "error: %s\n", e)
			}
			if len(val.Errors) > 0 {
				return &ExitError{Code: ExitCLIError, Err: nil}
			}
			return nil
		},
	}
}
