package postgres

import (
	"time"
)

/*
 * 'GamePlayer' is a roster entry: a player confirmed in a game. The pair
 * (game_id, player_id) is unique.
 */
type GamePlayer struct {
	// NOTE: composite unique index backs the insert-or-ignore on join
	ID        uint      `gorm:"primaryKey" json:"-"`
	GameID    uint      `gorm:"not null;uniqueIndex:idx_game_players_game_player" json:"game_id"`
	PlayerID  uint      `gorm:"not null;uniqueIndex:idx_game_players_game_player;index" json:"player_id"`
	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Relationship with the game and the player profile
	Game   *Game   `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"-"`
	Player *Player `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE" json:"-"`
}
