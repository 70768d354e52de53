package utils

/**
 * This file contains utility functions to format the keys for Redis
 * channels and lists. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import "fmt"

func FormatGameEventsChannel(gameID uint) string {
	return fmt.Sprintf("game:%d:events", gameID)
}

// FormatGameEventsPattern matches the events channel of every game.
func FormatGameEventsPattern() string {
	return "game:*:events"
}

func FormatRecentEventsKey(gameID uint) string {
	return fmt.Sprintf("game:%d:recent", gameID)
}
