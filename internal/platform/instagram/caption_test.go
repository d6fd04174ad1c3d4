package instagram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFormatCaptionAddsReelsTag(t *testing.T) {
	got := FormatCaption("check this out")
	assert.Contains(t, got, "#Reels")
	assert.True(t, strings.HasPrefix(got, "check this out"))
}

func TestFormatCaptionKeepsExistingReelsTag(t *testing.T) {
	got := FormatCaption("fun clip #reels #fyp")
	assert.Equal(t, 1, strings.Count(strings.ToLower(got), "#reels"))
}

func TestFormatCaptionEmpty(t *testing.T) {
	assert.Equal(t, "#Reels", FormatCaption(""))
}

func TestFormatCaptionTruncatesBodyNotTags(t *testing.T) {
	body := strings.Repeat("a very long caption sentence. ", 120)
	tags := "#Reels #GoLang #Shorts"
	got := FormatCaption(body + "\n\n" + tags)

	assert.LessOrEqual(t, len(got), maxCaptionLen)
	assert.True(t, strings.HasSuffix(got, tags), "hashtag block should survive truncation")
	assert.Contains(t, got, "...")
}

func TestFormatCaptionTruncatesWithoutTagBlock(t *testing.T) {
	got := FormatCaption(strings.Repeat("#reels words and more words ", 200))
	assert.LessOrEqual(t, len(got), maxCaptionLen)
}

func TestFormatCaptionMultibyte(t *testing.T) {
	tags := "#Reels #旅行"
	got := FormatCaption(strings.Repeat("東京の街を歩く。", 400) + "\n\n" + tags)

	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
	assert.LessOrEqual(t, utf8.RuneCountInString(got), maxCaptionLen)
	assert.True(t, strings.HasSuffix(got, tags), "hashtag block should survive truncation")
}

func TestSplitTrailingHashtags(t *testing.T) {
	body, tags := splitTrailingHashtags("hello world\n\n#one #two\n#three")
	assert.Equal(t, "hello world", body)
	assert.Equal(t, "#one #two\n#three", tags)

	body, tags = splitTrailingHashtags("no tags here")
	assert.Equal(t, "no tags here", body)
	assert.Empty(t, tags)
}
