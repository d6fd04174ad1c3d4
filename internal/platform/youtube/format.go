package youtube

import (
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 5000
	maxTags           = 500
	maxHashtags       = 10
)

// FormatTitle clips a title to YouTube's 100-character limit.
func FormatTitle(title string) string {
	return clipRunes(strings.TrimSpace(title), maxTitleLen)
}

// FormatDescription appends tag hashtags and guarantees a #Shorts marker,
// clipped to YouTube's 5000-character description limit.
func FormatDescription(description string, tags []string) string {
	desc := description

	if len(tags) > 0 {
		var hashtags []string
		for _, tag := range tags {
			if len(hashtags) >= maxHashtags {
				break
			}
			if h := hashtagify(tag); h != "#" {
				hashtags = append(hashtags, h)
			}
		}
		if len(hashtags) > 0 {
			desc += "\n\n" + strings.Join(hashtags, " ")
		}
	}

	desc = EnsureShortsTag(desc)

	return clipRunes(desc, maxDescriptionLen)
}

// EnsureShortsTag appends #Shorts unless the text already mentions it.
func EnsureShortsTag(s string) string {
	if strings.Contains(s, "#Shorts") || strings.Contains(s, "#shorts") {
		return s
	}
	return s + "\n\n#Shorts"
}

// CapTags bounds the tag list to YouTube's limit.
func CapTags(tags []string) []string {
	if len(tags) > maxTags {
		return tags[:maxTags]
	}
	return tags
}

func hashtagify(tag string) string {
	tag = strings.ReplaceAll(tag, " ", "")
	tag = strings.ReplaceAll(tag, "#", "")
	return "#" + tag
}

// clipRunes truncates s to at most n characters. The platform limits
// count characters, not bytes, so multibyte text must never be cut
// mid-rune.
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
