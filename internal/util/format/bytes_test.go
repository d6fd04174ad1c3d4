package format

import "testing"

func TestHumanizeBytes(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want string
	}{
		{name: "zero", in: 0, want: "0 B"},
		{name: "bytes", in: 512, want: "512 B"},
		{name: "kilobytes", in: 1536, want: "1.5 KB"},
		{name: "megabytes", in: 50 * 1024 * 1024, want: "50.0 MB"},
		{name: "just under a gig", in: 1024*1024*1024 - 1, want: "1024.0 MB"},
		{name: "gigabytes", in: 3 * 1024 * 1024 * 1024, want: "3.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanizeBytes(tt.in); got != tt.want {
				t.Errorf("HumanizeBytes(%d) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "zero", in: 0, want: "0:00"},
		{name: "negative clamps", in: -3, want: "0:00"},
		{name: "under a minute", in: 42.4, want: "0:42"},
		{name: "rounds up", in: 59.6, want: "1:00"},
		{name: "minutes", in: 90, want: "1:30"},
		{name: "hours", in: 3723, want: "1:02:03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanizeDuration(tt.in); got != tt.want {
				t.Errorf("HumanizeDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
