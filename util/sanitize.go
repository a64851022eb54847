package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizePasses bounds how many layers of entity encoding are peeled.
const maxSanitizePasses = 4

var (
	XSSPolicy  = bluemonday.UGCPolicy()
	TextPolicy = bluemonday.StrictPolicy()
)

// XSSSanitize sanitizes of HTML and returns the unescaped HTML
func XSSSanitize(val string) string {
	return sanitizeUnescaped(XSSPolicy, val)
}

// SanitizeText strips every tag, for plain text such as posts and messages.
func SanitizeText(val string) string {
	return strings.TrimSpace(sanitizeUnescaped(TextPolicy, val))
}

// sanitizeUnescaped sanitizes and unescapes until the value is stable, so
// entity-encoded markup cannot come back as live tags. Values still
// changing after maxSanitizePasses are returned escaped.
func sanitizeUnescaped(policy *bluemonday.Policy, val string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		out := html.UnescapeString(policy.Sanitize(val))
		if out == val {
			return out
		}
		val = out
	}
	return policy.Sanitize(val)
}
