package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipcast/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies and credentials",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			w := cmd.OutOrStdout()

			missing := false
			if ff, err := deps.FindFFmpeg(); err == nil {
				fmt.Fprintf(w, "ffmpeg:   %s\n", ff)
			} else {
				fmt.Fprintf(w, "ffmpeg:   NOT FOUND (optimize and Reels covers unavailable)\n")
				missing = true
			}
			if fp, err := deps.FindFFprobe(cfg.GetString("video.ffprobe_path")); err == nil {
				fmt.Fprintf(w, "ffprobe:  %s\n", fp)
			} else {
				fmt.Fprintf(w, "ffprobe:  NOT FOUND (validation limited to basic checks)\n")
				missing = true
			}

			info := cfg.CredentialsInfo()
			fmt.Fprintln(w)
			fmt.Fprintf(w, "YouTube credentials: %s (exists: %v)\n", info.YouTubeCredentialsPath, info.YouTubeCredentialsExist)
			fmt.Fprintf(w, "YouTube token:       %s (exists: %v)\n", info.YouTubeTokenPath, info.YouTubeTokenExists)
			fmt.Fprintf(w, "Instagram username:  set=%v\n", info.InstagramUsernameSet)
			fmt.Fprintf(w, "Instagram password:  set=%v\n", info.InstagramPasswordSet)
			fmt.Fprintf(w, "Instagram session:   %s (exists: %v)\n", info.InstagramSessionPath, info.InstagramSessionExists)

			val := cfg.Validate()
			for _, e := range val.Errors {
				fmt.Fprintf(w, "error: %s\n", e)
			}
			for _, warn := range val.Warnings {
				fmt.Fprintf(w, "warning: %s\n", warn)
			}

			if missing {
				return &ExitError{Code: ExitMissingDep, Err: nil}
			}
			return nil
		},
	}
}
