package blogservice

import (
	"regexp"
	"strings"
)

var (
	scriptTagRX    = regexp.MustCompile(`(?is)<\s*script[^>]*>.*?<\s*/\s*script\s*>`)
	eventHandlerRX = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
)

// sanitizeMarkdown strips script elements and inline event handlers from embedded HTML.
func sanitizeMarkdown(markdown string) string {
	out := scriptTagRX.ReplaceAllString(markdown, "")
	return eventHandlerRX.ReplaceAllString(out, "")
}

// normalizeTags trims, lowercases and de-duplicates tags, dropping blanks.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))

	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}

	return out
}

// ParseTags splits a comma separated tag list.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	return normalizeTags(strings.Split(s, ","))
}
