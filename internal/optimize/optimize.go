// Package optimize re-encodes videos into platform-friendly vertical output
// and extracts cover frames, both via ffmpeg.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"clipcast/internal/util"
)

// Options control ffmpeg execution.
type Options struct {
	FFmpegPath string
	Verbose    bool
	Runner     util.CmdRunner // nil = default os/exec runner
}

// Result captures the optimized output.
type Result struct {
	OutputPath string
	Bytes      int64
}

// vertical 1080x1920 canvas: downscale to fit, then pad to center.
const verticalFilter = "scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920:(ow-iw)/2:(oh-ih)/2"

// Optimize transcodes inputPath into a Shorts/Reels-shaped MP4 at outputPath.
func Optimize(ctx context.Context, inputPath, outputPath string, opts Options) (Result, error) {
	if opts.FFmpegPath == "" {
		return Result{}, errors.New("ffmpeg path is required")
	}
	if inputPath == "" || outputPath == "" {
		return Result{}, errors.New("input and output paths are required")
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	if err := util.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return Result{}, fmt.Errorf("ensure output dir: %w", err)
	}

	args := BuildOptimizeArgs(inputPath, outputPath)
	_, runErr := runner.Run(ctx, util.CmdSpec{
		Path:    opts.FFmpegPath,
		Args:    args,
		Verbose: opts.Verbose,
	})
	if runErr != nil {
		// Delete incomplete file
		_ = util.RemoveIfExists(outputPath)
		return Result{}, fmt.Errorf("ffmpeg failed: %w", runErr)
	}

	fi, err := os.Stat(outputPath)
	if err != nil {
		return Result{}, fmt.Errorf("stat output: %w", err)
	}
	return Result{OutputPath: outputPath, Bytes: fi.Size()}, nil
}

// BuildOptimizeArgs constructs the ffmpeg argument list for Optimize.
func BuildOptimizeArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-vf", verticalFilter,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}
}

// ExtractCoverFrame grabs a single frame at frameTime seconds into a JPEG
// under a temp workdir; the caller removes the file.
func ExtractCoverFrame(ctx context.Context, videoPath string, frameTime float64, opts Options) (string, error) {
	if opts.FFmpegPath == "" {
		return "", errors.New("ffmpeg path is required")
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	dir, err := util.MakeTempWorkdir("cover")
	if err != nil {
		return "", err
	}
	coverPath := filepath.Join(dir, "cover.jpg")

	args := BuildCoverArgs(videoPath, coverPath, frameTime)
	if _, runErr := runner.Run(ctx, util.CmdSpec{
		Path:    opts.FFmpegPath,
		Args:    args,
		Verbose: opts.Verbose,
	}); runErr != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("cover frame extraction failed: %w", runErr)
	}

	if _, err := os.Stat(coverPath); err != nil {
		_ = os.RemoveAll(dir)
		return "", errors.New("cover frame extraction produced no output")
	}
	return coverPath, nil
}

// BuildCoverArgs constructs the ffmpeg argument list for ExtractCoverFrame.
func BuildCoverArgs(videoPath, coverPath string, frameTime float64) []string {
	return []string{
		"-ss", fmt.Sprintf("%.3f", frameTime),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		coverPath,
	}
}
