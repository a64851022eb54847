package util

import (
	"fmt"
	"net/url"

	"github.com/civicconnect/civicconnect-be/config"
)

// Avatar is the generated fallback for users that never uploaded one.
func Avatar(seed string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/initials/svg?seed=%v&size=%v", url.QueryEscape(seed), config.AvatarSize)
}

func AvatarOr(avatar string, seed string) string {
	if avatar != "" {
		return avatar
	}
	return Avatar(seed)
}
