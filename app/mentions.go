package app

import (
	"regexp"
	"strings"
)

// A mention is @ followed by a handle, not preceded by a word character so
// e-mail addresses are skipped.
var mentionPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9_])@([A-Za-z0-9_]{3,30})\b`)

// ParseMentions returns the mentioned handles, lowercased and deduplicated
// in order of first appearance.
func ParseMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	handles := make([]string, 0, len(matches))
	for _, match := range matches {
		handle := strings.ToLower(match[1])
		if seen[handle] {
			continue
		}
		seen[handle] = true
		handles = append(handles, handle)
	}
	return handles
}

// NewMentions returns handles in after that were not already in before.
func NewMentions(before string, after string) []string {
	previous := make(map[string]bool)
	for _, handle := range ParseMentions(before) {
		previous[handle] = true
	}
	var added []string
	for _, handle := range ParseMentions(after) {
		if !previous[handle] {
			added = append(added, handle)
		}
	}
	return added
}
