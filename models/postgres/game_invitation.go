package postgres

import (
	"time"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

/*
 * 'GameInvitation' represents an invitation to a private game. There is at
 * most one row per (game, invited player); a re-invite reuses it.
 */
type GameInvitation struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	GameID    uint             `gorm:"not null;uniqueIndex:idx_game_invitations_game_player" json:"game_id"`
	PlayerID  uint             `gorm:"not null;uniqueIndex:idx_game_invitations_game_player;index:idx_game_invitations_player_status,priority:1" json:"player_id"`
	InvitedBy uint             `gorm:"not null" json:"invited_by"`
	Status    InvitationStatus `gorm:"size:10;not null;default:pending;index:idx_game_invitations_player_status,priority:2" json:"status"`
	CreatedAt time.Time        `json:"-"`
	UpdatedAt time.Time        `json:"-"`

	// Relationships
	Game    *Game   `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"game,omitempty"`
	Player  *Player `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE" json:"player,omitempty"`
	Inviter *Player `gorm:"foreignKey:InvitedBy;constraint:OnDelete:CASCADE" json:"invited_by_player,omitempty"`
}
