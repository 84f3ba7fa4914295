package utils

import (
	"math/rand"
	"time"
)

// ReputationTier returns a display tier for a reputation balance.
func ReputationTier(reputation int) (name string, icon string) {
	switch {
	case reputation >= 1000:
		return "Luminary", "🌟"
	case reputation >= 201:
		return "Regular", "🌕"
	case reputation >= 51:
		return "Contributor", "🌗"
	case reputation >= 11:
		return "Member", "🌘"
	default:
		return "Newcomer", "🌑"
	}
}

// DaysSinceJoined counts full days since the account was created.
func DaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}

// RandomEmoji returns a random emoji used as the default avatar.
func RandomEmoji() string {
	emojis := []string{"🪐", "🌙", "☄️", "🌌", "🛰️", "🚀", "🌕", "⭐", "🔭", "🌠"}
	return emojis[rand.Intn(len(emojis))]
}
