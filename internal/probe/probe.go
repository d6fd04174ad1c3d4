// Package probe extracts video metadata through ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"clipcast/internal/model"
	"clipcast/internal/util"
)

// Options controls prober behavior.
type Options struct {
	FFprobePath string
	Verbose     bool
	Runner      util.CmdRunner // nil = default os/exec runner
}

// Probe runs ffprobe against path and returns the parsed metadata.
func Probe(ctx context.Context, path string, opts Options) (model.VideoMetadata, error) {
	if opts.FFprobePath == "" {
		return model.VideoMetadata{}, errors.New("ffprobe path is required")
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	res, runErr := runner.Run(ctx, util.CmdSpec{
		Path:    opts.FFprobePath,
		Args:    args,
		Verbose: opts.Verbose,
	})
	if runErr != nil {
		stderr := strings.TrimSpace(string(res.Stderr))
		if stderr != "" {
			return model.VideoMetadata{}, fmt.Errorf("ffprobe failed: %s: %w", stderr, runErr)
		}
		return model.VideoMetadata{}, fmt.Errorf("ffprobe failed: %w", runErr)
	}

	var out ffprobeOutput
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		return model.VideoMetadata{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	var video *ffprobeStream
	for i := range out.Streams {
		if out.Streams[i].CodecType == "video" {
			video = &out.Streams[i]
			break
		}
	}
	if video == nil {
		return model.VideoMetadata{}, errors.New("no video stream found")
	}

	meta := model.VideoMetadata{
		DurationSec: parseFloat(out.Format.Duration),
		Width:       video.Width,
		Height:      video.Height,
		CodecName:   video.CodecName,
		BitRate:     parseInt(out.Format.BitRate),
		FPS:         ParseFrameRate(video.RFrameRate),
		SizeBytes:   parseInt(out.Format.Size),
	}
	if meta.Height > 0 {
		meta.AspectRatio = float64(meta.Width) / float64(meta.Height)
	}
	return meta, nil
}

// ParseFrameRate parses ffprobe's fractional frame rate ("30000/1001").
// Malformed input or a zero denominator yields 0.
func ParseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		return parseFloat(s)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
