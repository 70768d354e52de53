package postgres

import (
	"time"
)

// PlayerFavorite marks FavoritePlayerID as a favorite of PlayerID.
type PlayerFavorite struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	PlayerID         uint      `gorm:"not null;uniqueIndex:idx_player_favorites_pair" json:"player_id"`
	FavoritePlayerID uint      `gorm:"not null;uniqueIndex:idx_player_favorites_pair" json:"favorite_player_id"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`

	Player         *Player `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE" json:"-"`
	FavoritePlayer *Player `gorm:"foreignKey:FavoritePlayerID;constraint:OnDelete:CASCADE" json:"-"`
}
