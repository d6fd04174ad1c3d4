package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"clipcast/internal/config"
	"clipcast/internal/model"
	"clipcast/internal/ui"
	"clipcast/internal/uploader"
	"clipcast/internal/util"
	"clipcast/internal/util/deps"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "upload <video>",
		Short:         "Validate a video and upload it to the configured platforms",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE:          uploadExecute,
	}
	bindUploadFlags(cmd.Flags())
	return cmd
}

func bindUploadFlags(fs *pflag.FlagSet) {
	fs.StringP("title", "t", "", "Video title (required)")
	fs.StringP("description", "d", "", "Video description")
	fs.StringSlice("tags", nil, "Comma-separated tags")
	fs.String("privacy", "", "YouTube privacy: public, unlisted, private")
	fs.String("ig-caption", "", "Instagram caption override (defaults to title + description)")
	fs.String("schedule", "", "Schedule the YouTube publish time (RFC3339, e.g. 2026-09-01T15:00:00Z)")
	fs.StringP("platforms", "p", "", "Platforms to upload to: youtube, instagram, or both (default both)")
	fs.String("thumbnail", "", "Path to a custom YouTube thumbnail")
	fs.Bool("share-to-story", false, "Also share the Reel to the Instagram story")
	fs.Bool("skip-validation", false, "Skip pre-upload video checks")
	fs.Bool("no-ui", false, "Disable the TUI; plain log output")
}

func uploadExecute(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	videoPath := args[0]
	if videoPath == "-" {
		spooled, err := util.SpoolToTempFile(cmd.InOrStdin())
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("read video from stdin: %v", err)}
		}
		videoPath = spooled
		defer os.RemoveAll(filepath.Dir(spooled))
	}

	req, err := assembleUploadRequest(cmd, videoPath, cfg)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	skip, _ := cmd.Flags().GetBool("skip-validation")
	if !skip {
		// Surface a missing ffprobe before starting anything.
		if _, err := deps.FindFFprobe(cfg.GetString("video.ffprobe_path")); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: ffprobe not found, falling back to basic validation")
		}
	}

	svc := uploader.New(cfg, uploader.WithSkipValidation(skip))

	noUI, _ := cmd.Flags().GetBool("no-ui")
	var results []model.UploadResult
	if !noUI && term.IsTerminal(int(os.Stdout.Fd())) {
		results, err = ui.Run(cmd.Context(), svc, req)
	} else {
		results, err = svc.Run(cmd.Context(), req)
	}
	if err != nil {
		return &ExitError{Code: ExitUploadError, Err: err}
	}

	out, jerr := json.MarshalIndent(results, "", "  ")
	if jerr != nil {
		return &ExitError{Code: ExitCLIError, Err: jerr}
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if uploader.AnyFailed(results) {
		return &ExitError{Code: exitCodeFor(results), Err: nil}
	}
	return nil
}

func assembleUploadRequest(cmd *cobra.Command, videoPath string, cfg *config.Manager) (model.UploadRequest, error) {
	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		return model.UploadRequest{}, errors.New("--title is required")
	}

	description, _ := cmd.Flags().GetString("description")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	igCaption, _ := cmd.Flags().GetString("ig-caption")
	thumbnail, _ := cmd.Flags().GetString("thumbnail")
	shareToStory, _ := cmd.Flags().GetBool("share-to-story")

	privacy, _ := cmd.Flags().GetString("privacy")
	if privacy == "" {
		privacy = cfg.GetString("youtube.default_privacy")
	}
	if !model.ValidPrivacy(privacy) {
		return model.UploadRequest{}, fmt.Errorf("invalid --privacy: %q (valid: public|unlisted|private)", privacy)
	}

	rawPlatforms, _ := cmd.Flags().GetString("platforms")
	platforms, err := model.ParsePlatforms(rawPlatforms)
	if err != nil {
		return model.UploadRequest{}, err
	}

	var scheduleAt *time.Time
	if raw, _ := cmd.Flags().GetString("schedule"); raw != "" {
		at, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			return model.UploadRequest{}, fmt.Errorf("invalid --schedule %q: expected RFC3339 timestamp", raw)
		}
		if !at.After(time.Now()) {
			return model.UploadRequest{}, fmt.Errorf("--schedule %q is in the past", raw)
		}
		scheduleAt = &at
	}

	if thumbnail != "" {
		if _, serr := os.Stat(thumbnail); serr != nil {
			return model.UploadRequest{}, fmt.Errorf("thumbnail not found: %s", thumbnail)
		}
	}

	return model.UploadRequest{
		VideoPath:     videoPath,
		Title:         title,
		Description:   description,
		Tags:          tags,
		Privacy:       model.PrivacyStatus(privacy),
		IGCaption:     igCaption,
		ScheduleAt:    scheduleAt,
		Platforms:     platforms,
		ThumbnailPath: thumbnail,
		ShareToStory:  shareToStory,
	}, nil
}

// exitCodeFor maps failed results to an exit code. The specific codes
// only apply when every failure shares the same class; mixed failures
// report the generic upload error.
func exitCodeFor(results []model.UploadResult) int {
	allValidation, allAuth := true, true
	failed := false
	for _, r := range results {
		if r.Success {
			continue
		}
		failed = true
		if !errors.Is(r.Err, model.ErrValidation) {
			allValidation = false
		}
		if !errors.Is(r.Err, model.ErrAuth) {
			allAuth = false
		}
	}
	switch {
	case !failed:
		return ExitOK
	case allValidation:
		return ExitValidationError
	case allAuth:
		return ExitAuthError
	default:
		return ExitUploadError
	}
}
