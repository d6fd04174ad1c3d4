package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"clipcast/internal/probe"
	"clipcast/internal/util/deps"
	"clipcast/internal/util/format"
	"clipcast/internal/validate"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate <video>",
		Short:         "Check a video against the Shorts and Reels requirements",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)

			opts := probe.Options{Verbose: cfg.GetBool("app.verbose")}
			if ffprobe, err := deps.FindFFprobe(cfg.GetString("video.ffprobe_path")); err == nil {
				opts.FFprobePath = ffprobe
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: ffprobe not found, falling back to basic validation")
			}

			report := validate.New(cfg.VideoLimits(), opts).Report(cmd.Context(), args[0])

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				out, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return &ExitError{Code: ExitCLIError, Err: err}
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else {
				printReport(cmd, report)
			}

			if !report.Valid {
				return &ExitError{Code: ExitValidationError, Err: nil}
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Emit the report as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, r validate.Report) {
	w := cmd.OutOrStdout()
	status := "VALID"
	if !r.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(w, "%s: %s\n", r.Filename, status)
	fmt.Fprintf(w, "  Duration:     %s (%.1fs)\n", format.HumanizeDuration(r.DurationSec), r.DurationSec)
	fmt.Fprintf(w, "  Resolution:   %s\n", r.Resolution)
	fmt.Fprintf(w, "  Aspect ratio: %.3f\n", r.AspectRatio)
	fmt.Fprintf(w, "  Size:         %.1f MB\n", r.FileSizeMB)
	if r.Codec != "" {
		fmt.Fprintf(w, "  Codec:        %s\n", r.Codec)
	}
	fmt.Fprintf(w, "  Shorts ready: %v\n", r.ShortsReady)
	fmt.Fprintf(w, "  Reels ready:  %v\n", r.ReelsReady)
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "  ! %s\n", issue)
	}
}
