package probe

import (
	"context"
	"errors"
	"testing"

	"clipcast/internal/util"
)

type fakeRunner struct {
	stdout string
	stderr string
	err    error
	spec   util.CmdSpec
}

func (f *fakeRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.spec = spec
	return util.CmdResult{Stdout: []byte(f.stdout), Stderr: []byte(f.stderr)}, f.err
}

const sampleJSON = `{
  "streams": [
    {"codec_type": "audio", "codec_name": "aac"},
    {"codec_type": "video", "codec_name": "h264", "width": 1080, "height": 1920, "r_frame_rate": "30000/1001"}
  ],
  "format": {"duration": "42.500000", "bit_rate": "2500000", "size": "13312000"}
}`

func TestProbeParsesMetadata(t *testing.T) {
	fr := &fakeRunner{stdout: sampleJSON}
	meta, err := Probe(context.Background(), "/tmp/clip.mp4", Options{
		FFprobePath: "/usr/bin/ffprobe",
		Runner:      fr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meta.DurationSec != 42.5 {
		t.Errorf("DurationSec = %v, want 42.5", meta.DurationSec)
	}
	if meta.Width != 1080 || meta.Height != 1920 {
		t.Errorf("resolution = %dx%d, want 1080x1920", meta.Width, meta.Height)
	}
	if meta.CodecName != "h264" {
		t.Errorf("CodecName = %q, want h264", meta.CodecName)
	}
	if meta.BitRate != 2500000 {
		t.Errorf("BitRate = %d, want 2500000", meta.BitRate)
	}
	if meta.SizeBytes != 13312000 {
		t.Errorf("SizeBytes = %d, want 13312000", meta.SizeBytes)
	}
	got := meta.AspectRatio
	if got < 0.5624 || got > 0.5626 {
		t.Errorf("AspectRatio = %v, want ~0.5625", got)
	}
	if meta.FPS < 29.9 || meta.FPS > 30.0 {
		t.Errorf("FPS = %v, want ~29.97", meta.FPS)
	}

	// The video stream is selected, not the leading audio stream.
	if len(fr.spec.Args) == 0 || fr.spec.Args[len(fr.spec.Args)-1] != "/tmp/clip.mp4" {
		t.Errorf("ffprobe args = %v, want trailing video path", fr.spec.Args)
	}
}

func TestProbeNoVideoStream(t *testing.T) {
	fr := &fakeRunner{stdout: `{"streams": [{"codec_type": "audio"}], "format": {}}`}
	_, err := Probe(context.Background(), "x.mp4", Options{FFprobePath: "ffprobe", Runner: fr})
	if err == nil || err.Error() != "no video stream found" {
		t.Fatalf("expected no-video-stream error, got %v", err)
	}
}

func TestProbeCommandFailure(t *testing.T) {
	fr := &fakeRunner{stderr: "x.mp4: Invalid data found", err: errors.New("exit 1")}
	_, err := Probe(context.Background(), "x.mp4", Options{FFprobePath: "ffprobe", Runner: fr})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestProbeRequiresPath(t *testing.T) {
	_, err := Probe(context.Background(), "x.mp4", Options{})
	if err == nil {
		t.Fatal("expected error for missing ffprobe path")
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "integer fraction", in: "30/1", want: 30},
		{name: "ntsc", in: "30000/1001", want: 29.97002997002997},
		{name: "plain number", in: "25", want: 25},
		{name: "zero denominator", in: "30/0", want: 0},
		{name: "empty", in: "", want: 0},
		{name: "garbage", in: "abc/def", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFrameRate(tt.in); got != tt.want {
				t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
