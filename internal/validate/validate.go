// Package validate checks video files against platform thresholds.
package validate

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"clipcast/internal/config"
	"clipcast/internal/model"
	"clipcast/internal/probe"
)

// Validator applies the configured limits to a probed video.
type Validator struct {
	limits    config.VideoLimits
	probeOpts probe.Options
}

// New builds a Validator. When probeOpts.FFprobePath is empty, metadata
// checks are skipped and only file-level checks run (basic mode).
func New(limits config.VideoLimits, probeOpts probe.Options) *Validator {
	return &Validator{limits: limits, probeOpts: probeOpts}
}

// Validate checks the file at path. It returns a result rather than an
// error for threshold failures; only unexpected conditions surface in the
// result's ErrorMessage.
func (v *Validator) Validate(ctx context.Context, path string) model.ValidationResult {
	fi, err := os.Stat(path)
	if err != nil {
		return failf("video file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !v.supportedExt(ext) {
		return failf("unsupported format: %s (supported: %s)", ext, strings.Join(v.limits.SupportedFormats, ", "))
	}

	size := fi.Size()
	if size == 0 {
		return failf("video file is empty")
	}
	if v.limits.MaxFileSize > 0 && size > v.limits.MaxFileSize {
		return failf("file too large: %.1fMB (max: %.0fMB)",
			float64(size)/1024/1024, float64(v.limits.MaxFileSize)/1024/1024)
	}

	if v.probeOpts.FFprobePath == "" {
		// Basic mode: nothing else to check without ffprobe.
		log.Warn().Str("path", path).Msg("ffprobe not available, metadata checks skipped")
		return model.ValidationResult{Valid: true, Meta: model.VideoMetadata{SizeBytes: size}}
	}

	meta, err := probe.Probe(ctx, path, v.probeOpts)
	if err != nil {
		return failf("metadata extraction failed: %v", err)
	}
	if meta.SizeBytes == 0 {
		meta.SizeBytes = size
	}

	issues := v.checkMetadata(meta)
	res := model.ValidationResult{
		Valid:  len(issues) == 0,
		Issues: issues,
		Meta:   meta,
	}
	if !res.Valid {
		res.ErrorMessage = strings.Join(issues, "; ")
	} else {
		log.Info().Str("path", path).Msg("video validation successful")
	}
	return res
}

func (v *Validator) checkMetadata(meta model.VideoMetadata) []string {
	var issues []string
	l := v.limits

	if meta.DurationSec < l.MinDuration {
		issues = append(issues, fmt.Sprintf("video too short: %.1fs (min: %.1fs)", meta.DurationSec, l.MinDuration))
	}
	if l.MaxDurationInstagram > 0 && meta.DurationSec > l.MaxDurationInstagram {
		issues = append(issues, fmt.Sprintf("video too long: %.1fs (max: %.0fs for Reels, %.0fs for Shorts)",
			meta.DurationSec, l.MaxDurationInstagram, l.MaxDurationYouTube))
	}

	if meta.Width > 0 && meta.Height > 0 {
		if meta.Width < l.MinWidth || meta.Height < l.MinHeight {
			issues = append(issues, fmt.Sprintf("resolution too low: %dx%d (min: %dx%d)",
				meta.Width, meta.Height, l.MinWidth, l.MinHeight))
		}
		if meta.Width > l.MaxWidth || meta.Height > l.MaxHeight {
			issues = append(issues, fmt.Sprintf("resolution too high: %dx%d (max: %dx%d)",
				meta.Width, meta.Height, l.MaxWidth, l.MaxHeight))
		}

		if meta.AspectRatio > 0 {
			if meta.AspectRatio > 1.0 {
				issues = append(issues, fmt.Sprintf("video is landscape (%.2f); vertical 9:16 works best for Shorts/Reels", meta.AspectRatio))
			} else if math.Abs(meta.AspectRatio-l.PreferredAspectRatio) > 0.1 {
				issues = append(issues, fmt.Sprintf("aspect ratio %.2f may not be optimal (preferred: %.2f)",
					meta.AspectRatio, l.PreferredAspectRatio))
			}
		}
	}

	return issues
}

func (v *Validator) supportedExt(ext string) bool {
	for _, s := range v.limits.SupportedFormats {
		if strings.EqualFold(s, ext) {
			return true
		}
	}
	return false
}

func failf(format string, args ...any) model.ValidationResult {
	msg := fmt.Sprintf(format, args...)
	return model.ValidationResult{
		Valid:        false,
		Issues:       []string{msg},
		ErrorMessage: msg,
	}
}

// Report is the machine-readable output of `clipcast validate`.
type Report struct {
	Path          string   `json:"path"`
	Filename      string   `json:"filename"`
	Valid         bool     `json:"is_valid"`
	Issues        []string `json:"issues,omitempty"`
	DurationSec   float64  `json:"duration"`
	Resolution    string   `json:"resolution"`
	AspectRatio   float64  `json:"aspect_ratio"`
	FileSizeMB    float64  `json:"file_size_mb"`
	Codec         string   `json:"format"`
	BitrateKbps   float64  `json:"bitrate_kbps"`
	FPS           float64  `json:"fps"`
	ShortsReady   bool     `json:"youtube_shorts_compatible"`
	ReelsReady    bool     `json:"instagram_reels_compatible"`
}

// Report validates path and folds the outcome into a presentation record.
func (v *Validator) Report(ctx context.Context, path string) Report {
	res := v.Validate(ctx, path)
	meta := res.Meta

	resolution := "unknown"
	if meta.Width > 0 && meta.Height > 0 {
		resolution = fmt.Sprintf("%dx%d", meta.Width, meta.Height)
	}

	return Report{
		Path:        path,
		Filename:    filepath.Base(path),
		Valid:       res.Valid,
		Issues:      res.Issues,
		DurationSec: meta.DurationSec,
		Resolution:  resolution,
		AspectRatio: meta.AspectRatio,
		FileSizeMB:  float64(meta.SizeBytes) / 1024 / 1024,
		Codec:       meta.CodecName,
		BitrateKbps: float64(meta.BitRate) / 1000,
		FPS:         meta.FPS,
		ShortsReady: res.ShortsCompatible(v.limits.MaxDurationYouTube),
		ReelsReady:  res.ReelsCompatible(v.limits.MaxDurationInstagram),
	}
}
