package instagram

import (
	"strings"
	"unicode/utf8"
)

const maxCaptionLen = 2200

// FormatCaption trims the caption to Instagram's limit and appends #Reels
// when absent. Trailing hashtag lines survive truncation so the discovery
// tags are never the part that gets cut.
func FormatCaption(caption string) string {
	caption = strings.TrimSpace(caption)

	if !containsFold(caption, "#reels") {
		if caption != "" {
			caption += "\n\n"
		}
		caption += "#Reels"
	}

	if utf8.RuneCountInString(caption) <= maxCaptionLen {
		return caption
	}

	body, tags := splitTrailingHashtags(caption)
	if tags == "" {
		return strings.TrimSpace(clipRunes(caption, maxCaptionLen-3)) + "..."
	}

	// Budget counts characters, not bytes: Instagram's limit is per
	// character and multibyte captions must not be cut mid-rune.
	budget := maxCaptionLen - utf8.RuneCountInString(tags) - 2 // blank line between body and tags
	if budget <= 3 {
		return clipRunes(tags, maxCaptionLen)
	}
	if utf8.RuneCountInString(body) > budget {
		body = strings.TrimSpace(clipRunes(body, budget-3)) + "..."
	}
	return body + "\n\n" + tags
}

func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// splitTrailingHashtags peels off the run of hashtag-only lines at the end
// of the caption. Returns the remaining body and the tag block.
func splitTrailingHashtags(caption string) (body, tags string) {
	lines := strings.Split(caption, "\n")
	cut := len(lines)
	for cut > 0 {
		line := strings.TrimSpace(lines[cut-1])
		if line == "" {
			cut--
			continue
		}
		if !isHashtagLine(line) {
			break
		}
		cut--
	}
	if cut == len(lines) {
		return caption, ""
	}
	body = strings.TrimSpace(strings.Join(lines[:cut], "\n"))
	tags = strings.TrimSpace(strings.Join(lines[cut:], "\n"))
	return body, tags
}

func isHashtagLine(line string) bool {
	for _, word := range strings.Fields(line) {
		if !strings.HasPrefix(word, "#") {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
