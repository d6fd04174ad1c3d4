package model

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies an upload target.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
)

// AllPlatforms is the default upload target set, in output order.
var AllPlatforms = []Platform{PlatformYouTube, PlatformInstagram}

// ParsePlatforms parses a comma-separated platform list ("youtube,instagram").
// An empty input yields AllPlatforms. Duplicates are collapsed.
func ParsePlatforms(raw string) ([]Platform, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return append([]Platform(nil), AllPlatforms...), nil
	}
	seen := make(map[Platform]bool, 2)
	var out []Platform
	for _, part := range strings.Split(raw, ",") {
		name := Platform(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		switch name {
		case PlatformYouTube, PlatformInstagram:
		default:
			return nil, fmt.Errorf("unknown platform: %q (valid: youtube|instagram)", part)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no platforms selected")
	}
	return out, nil
}

// PrivacyStatus mirrors YouTube's privacy values; Instagram ignores it.
type PrivacyStatus string

const (
	PrivacyPublic   PrivacyStatus = "public"
	PrivacyUnlisted PrivacyStatus = "unlisted"
	PrivacyPrivate  PrivacyStatus = "private"
)

// ValidPrivacy reports whether s is a recognized privacy setting.
func ValidPrivacy(s string) bool {
	switch PrivacyStatus(s) {
	case PrivacyPublic, PrivacyUnlisted, PrivacyPrivate:
		return true
	}
	return false
}

// UploadRequest describes one video to publish across platforms.
type UploadRequest struct {
	VideoPath     string
	Title         string
	Description   string
	Tags          []string
	Privacy       PrivacyStatus
	IGCaption     string     // Instagram caption override; empty = title + description
	ScheduleAt    *time.Time // nil = publish immediately
	Platforms     []Platform
	ThumbnailPath string // optional custom thumbnail / cover
	ShareToStory  bool   // Instagram: also share the Reel to the Story
}

// InstagramCaption returns the caption to use for Instagram.
func (r UploadRequest) InstagramCaption() string {
	if r.IGCaption != "" {
		return r.IGCaption
	}
	if r.Description == "" {
		return r.Title
	}
	return r.Title + "\n\n" + r.Description
}

// UploadResult is the per-platform outcome record emitted as JSON.
type UploadResult struct {
	Platform     Platform `json:"platform"`
	Success      bool     `json:"success"`
	VideoID      string   `json:"video_id,omitempty"`
	VideoURL     string   `json:"video_url,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	DurationSec  float64  `json:"upload_duration"`

	// Err keeps the classified error for exit-code mapping; it never
	// appears in the JSON output.
	Err error `json:"-"`
}

// VideoMetadata holds the fields probed from a video file.
type VideoMetadata struct {
	DurationSec float64
	Width       int
	Height      int
	AspectRatio float64 // width / height; 0 when unknown
	CodecName   string
	BitRate     int64 // bits per second; 0 when unknown
	FPS         float64
	SizeBytes   int64
}

// ValidationResult reports threshold checks plus the probed metadata.
type ValidationResult struct {
	Valid        bool
	Issues       []string
	ErrorMessage string
	Meta         VideoMetadata
}

// ShortsCompatible reports whether the video fits YouTube Shorts limits.
func (v ValidationResult) ShortsCompatible(maxDurationSec float64) bool {
	if !v.Valid {
		return false
	}
	return v.Meta.DurationSec > 0 && v.Meta.DurationSec <= maxDurationSec &&
		v.Meta.AspectRatio > 0 && v.Meta.AspectRatio <= 1.0
}

// ReelsCompatible reports whether the video fits Instagram Reels limits.
func (v ValidationResult) ReelsCompatible(maxDurationSec float64) bool {
	if !v.Valid {
		return false
	}
	return v.Meta.DurationSec > 0 && v.Meta.DurationSec <= maxDurationSec &&
		v.Meta.AspectRatio > 0 && v.Meta.AspectRatio <= 1.0
}
