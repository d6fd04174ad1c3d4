package youtube

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormatTitle(t *testing.T) {
	if got := FormatTitle("  Hello  "); got != "Hello" {
		t.Errorf("FormatTitle trimmed = %q", got)
	}
	long := strings.Repeat("x", 150)
	if got := FormatTitle(long); len(got) != 100 {
		t.Errorf("FormatTitle length = %d, want 100", len(got))
	}
}

func TestFormatTitleMultibyte(t *testing.T) {
	// A 40-character CJK title is within the 100-character limit and must
	// survive untouched.
	short := strings.Repeat("日", 40)
	if got := FormatTitle(short); got != short {
		t.Errorf("FormatTitle(%d CJK chars) = %q, want unchanged", 40, got)
	}

	long := strings.Repeat("日", 150)
	got := FormatTitle(long)
	if !utf8.ValidString(got) {
		t.Errorf("FormatTitle produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != maxTitleLen {
		t.Errorf("FormatTitle rune count = %d, want %d", n, maxTitleLen)
	}
}

func TestFormatDescription(t *testing.T) {
	got := FormatDescription("My video", []string{"Daily Vlog", "#travel", "fun"})
	if !strings.Contains(got, "#DailyVlog") {
		t.Errorf("spaces not stripped from hashtag: %q", got)
	}
	if !strings.Contains(got, "#travel") {
		t.Errorf("existing # not normalized: %q", got)
	}
	if !strings.Contains(got, "#Shorts") {
		t.Errorf("missing #Shorts: %q", got)
	}
}

func TestFormatDescriptionShortsNotDuplicated(t *testing.T) {
	got := FormatDescription("already tagged #shorts", nil)
	if strings.Count(strings.ToLower(got), "#shorts") != 1 {
		t.Errorf("#shorts duplicated: %q", got)
	}
}

func TestFormatDescriptionHashtagCap(t *testing.T) {
	tags := make([]string, 20)
	for i := range tags {
		tags[i] = "tag" + string(rune('a'+i))
	}
	got := FormatDescription("desc", tags)
	if n := strings.Count(got, "#") - 1; n != maxHashtags { // minus the #Shorts marker
		t.Errorf("hashtag count = %d, want %d: %q", n, maxHashtags, got)
	}
}

func TestFormatDescriptionLengthLimit(t *testing.T) {
	long := strings.Repeat("y", 6000)
	if got := FormatDescription(long, nil); len(got) != maxDescriptionLen {
		t.Errorf("length = %d, want %d", len(got), maxDescriptionLen)
	}
}

func TestFormatDescriptionMultibyteLengthLimit(t *testing.T) {
	long := strings.Repeat("映像", 4000)
	got := FormatDescription(long, nil)
	if !utf8.ValidString(got) {
		t.Errorf("FormatDescription produced invalid UTF-8: %q", got[:20])
	}
	if n := utf8.RuneCountInString(got); n != maxDescriptionLen {
		t.Errorf("rune count = %d, want %d", n, maxDescriptionLen)
	}
}

func TestCapTags(t *testing.T) {
	tags := make([]string, 600)
	if got := CapTags(tags); len(got) != maxTags {
		t.Errorf("CapTags length = %d, want %d", len(got), maxTags)
	}
	small := []string{"a", "b"}
	if got := CapTags(small); len(got) != 2 {
		t.Errorf("CapTags small length = %d", len(got))
	}
}
