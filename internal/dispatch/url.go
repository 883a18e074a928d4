package dispatch

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`(https?://\S+)`)

// ExtractURL returns the first http(s) URL in text, or "" when none appears.
func ExtractURL(text string) string {
	return urlPattern.FindString(text)
}

// Classify maps a URL to its platform tag by substring match, checked in a
// fixed priority order. Unknown hosts yield "".
func Classify(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "youtube.com"), strings.Contains(lower, "youtu.be"):
		return "youtube"
	case strings.Contains(lower, "instagram.com"):
		return "instagram"
	case strings.Contains(lower, "tiktok.com"):
		return "tiktok"
	case strings.Contains(lower, "twitter.com"), strings.Contains(lower, "x.com"):
		return "twitter"
	default:
		return ""
	}
}
