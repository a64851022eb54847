package util

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

const (
	MinHandleLen = 3
	MaxHandleLen = 30
)

var (
	handlePattern   = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)
	nonHandleChars  = regexp.MustCompile(`[^a-z0-9_]+`)
	fallbackHandles = []string{
		"citizen",
		"member",
		"neighbour",
		"voice",
	}
)

func IsValidHandle(handle string) bool {
	return handlePattern.MatchString(handle)
}

// GenerateHandle derives a username from an e-mail local part with a random
// numeric suffix. Callers retry on a uniqueness conflict.
func GenerateHandle(email string) string {
	local := strings.ToLower(email)
	if at := strings.IndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}
	local = nonHandleChars.ReplaceAllString(local, "_")
	local = strings.Trim(local, "_")
	if len(local) < MinHandleLen {
		local = fallbackHandles[rand.Intn(len(fallbackHandles))]
	}
	suffix := fmt.Sprintf("_%04d", rand.Intn(10000))
	if len(local)+len(suffix) > MaxHandleLen {
		local = local[:MaxHandleLen-len(suffix)]
	}
	return local + suffix
}
