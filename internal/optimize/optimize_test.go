package optimize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipcast/internal/util"
)

type fakeFFmpeg struct {
	err      error
	outBytes int
	spec     util.CmdSpec
}

func (f *fakeFFmpeg) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.spec = spec
	if f.err != nil {
		return util.CmdResult{Code: 1}, f.err
	}
	out := spec.Args[len(spec.Args)-1]
	if err := os.WriteFile(out, make([]byte, f.outBytes), 0o644); err != nil {
		return util.CmdResult{}, err
	}
	return util.CmdResult{}, nil
}

func TestBuildOptimizeArgs(t *testing.T) {
	args := BuildOptimizeArgs("in.mp4", "out.mp4")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i in.mp4",
		"scale=1080:1920:force_original_aspect_ratio=decrease",
		"pad=1080:1920:(ow-iw)/2:(oh-ih)/2",
		"-c:v libx264",
		"-crf 23",
		"-b:a 128k",
		"-movflags +faststart",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output path must be last arg, got %q", args[len(args)-1])
	}
}

func TestBuildCoverArgs(t *testing.T) {
	args := BuildCoverArgs("clip.mp4", "cover.jpg", 1.0)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ss 1.000") || !strings.Contains(joined, "-frames:v 1") {
		t.Errorf("unexpected cover args: %s", joined)
	}
}

func TestOptimizeSuccess(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	fr := &fakeFFmpeg{outBytes: 2048}

	res, err := Optimize(context.Background(), "in.mp4", out, Options{FFmpegPath: "ffmpeg", Runner: fr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OutputPath != out || res.Bytes != 2048 {
		t.Errorf("result = %+v", res)
	}
}

func TestOptimizeFailureRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp4")
	// Simulate ffmpeg dying after creating a partial file.
	if err := os.WriteFile(out, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}
	fr := &fakeFFmpeg{err: errors.New("exit 1")}

	_, err := Optimize(context.Background(), "in.mp4", out, Options{FFmpegPath: "ffmpeg", Runner: fr})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("partial output should have been removed")
	}
}

func TestOptimizeRequiresFFmpeg(t *testing.T) {
	if _, err := Optimize(context.Background(), "in.mp4", "out.mp4", Options{}); err == nil {
		t.Fatal("expected error for missing ffmpeg path")
	}
}
