package redis

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event names as seen by socket.io clients.
const (
	EventPlayerJoined = "player.joined"
	EventPlayerLeft   = "player.left"
)

// GameEvent is the envelope carried on the game event bus.
// Payload holds one of PlayerJoined / PlayerLeft, already encoded.
type GameEvent struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	GameID     uint            `json:"game_id"`
	PlayerID   uint            `json:"player_id"` // player the event is about
	Channel    string          `json:"channel"`   // socket.io room, "game.{id}"
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// JoinedPlayer is the player summary sent with "player.joined".
type JoinedPlayer struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Level    int    `json:"level"`
	Side     string `json:"side,omitempty"`
}

// LeftPlayer is the player summary sent with "player.left".
type LeftPlayer struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}

type PlayerJoined struct {
	GameID              uint         `json:"game_id"`
	Player              JoinedPlayer `json:"player"`
	CurrentPlayersCount int          `json:"current_players_count"`
	MaxPlayers          int          `json:"max_players"`
}

type PlayerLeft struct {
	GameID              uint       `json:"game_id"`
	Player              LeftPlayer `json:"player"`
	CurrentPlayersCount int        `json:"current_players_count"`
}

// GameChannel is the room name of a game's private channel.
func GameChannel(gameID uint) string {
	return fmt.Sprintf("game.%d", gameID)
}
