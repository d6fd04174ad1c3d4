package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clipcast/internal/model"
	"clipcast/internal/platform/youtube"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status <video-id>",
		Short:         "Show upload and processing status for a YouTube video",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)

			video, err := youtube.NewClient(cfg).GetVideoStatus(cmd.Context(), args[0])
			if err != nil {
				code := ExitUploadError
				if errors.Is(err, model.ErrAuth) {
					code = ExitAuthError
				}
				return &ExitError{Code: code, Err: err}
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				out, jerr := json.MarshalIndent(video, "", "  ")
				if jerr != nil {
					return &ExitError{Code: ExitCLIError, Err: jerr}
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			w := cmd.OutOrStdout()
			if video.Snippet != nil {
				fmt.Fprintf(w, "%s: %s\n", args[0], video.Snippet.Title)
			}
			if video.Status != nil {
				fmt.Fprintf(w, "  Upload:     %s\n", video.Status.UploadStatus)
				fmt.Fprintf(w, "  Privacy:    %s\n", video.Status.PrivacyStatus)
				if video.Status.PublishAt != "" {
					fmt.Fprintf(w, "  Publish at: %s\n", video.Status.PublishAt)
				}
			}
			if video.ProcessingDetails != nil {
				fmt.Fprintf(w, "  Processing: %s\n", video.ProcessingDetails.ProcessingStatus)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Emit the raw status as JSON")
	return cmd
}
