package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipcast/internal/optimize"
	"clipcast/internal/util/deps"
)

func newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "optimize <video>",
		Short:         "Re-encode a video into the 1080x1920 vertical format",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)

			ffmpeg, err := deps.FindFFmpeg()
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}

			input := args[0]
			if _, err := os.Stat(input); err != nil {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("video not found: %s", input)}
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				ext := filepath.Ext(input)
				output = strings.TrimSuffix(input, ext) + "_optimized.mp4"
			}

			_, err = optimize.Optimize(cmd.Context(), input, output, optimize.Options{
				FFmpegPath: ffmpeg,
				Verbose:    cfg.GetBool("app.verbose"),
			})
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("optimize: %v", err)}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output path (default <input>_optimized.mp4)")
	return cmd
}
