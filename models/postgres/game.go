package postgres

import (
	"time"
)

type GameVisibility string

const (
	VisibilityPublic  GameVisibility = "public"
	VisibilityPrivate GameVisibility = "private"
)

type GameStatus string

const (
	StatusOpen       GameStatus = "open"
	StatusFull       GameStatus = "full"
	StatusInProgress GameStatus = "in_progress"
	StatusCompleted  GameStatus = "completed"
	StatusCanceled   GameStatus = "canceled"
)

type GameKind string

const (
	KindCasual      GameKind = "casual"
	KindCompetitive GameKind = "competitive"
	KindTraining    GameKind = "training"
)

// DefaultMaxPlayers is the capacity of a game created without an explicit one.
const DefaultMaxPlayers = 4

/*
 * 'Game' defines a scheduled court session. Its roster lives in GamePlayer
 * and its private-game invitations in GameInvitation.
 */
type Game struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OwnerPlayerID   uint           `gorm:"not null;index:idx_games_owner" json:"owner_player_id"`
	Title           string         `gorm:"size:255" json:"title,omitempty"`
	Description     string         `gorm:"size:500" json:"description,omitempty"`
	Type            GameVisibility `gorm:"size:10;not null;default:public;index:idx_games_type" json:"type"`
	GameType        GameKind       `gorm:"size:20;not null;default:casual" json:"game_type"`
	Status          GameStatus     `gorm:"size:20;not null;default:open;index:idx_games_status" json:"status"`
	DataTime        *time.Time     `json:"data_time,omitempty"`
	ClubID          uint           `gorm:"not null;index" json:"club_id"`
	CourtID         uint           `gorm:"not null;index" json:"court_id"`
	CustomLocation  string         `gorm:"size:500" json:"custom_location,omitempty"`
	DurationMinutes int            `gorm:"default:90" json:"duration_minutes"`
	MinLevel        *int           `json:"min_level,omitempty"`
	MaxLevel        *int           `json:"max_level,omitempty"`
	MaxPlayers      int            `gorm:"not null;default:4" json:"max_players"`
	Price           *float64       `json:"price,omitempty"`
	CostPerPlayer   *float64       `json:"cost_per_player,omitempty"`
	CreatedAt       time.Time      `json:"-"`
	UpdatedAt       time.Time      `json:"-"`

	// Relationships
	Owner *Player `gorm:"foreignKey:OwnerPlayerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Club  *Club   `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	Court *Court  `gorm:"foreignKey:CourtID" json:"court,omitempty"`
}

// HasCapacity reports whether the game caps its roster size.
func (g Game) HasCapacity() bool {
	return g.MaxPlayers > 0
}

func (g Game) IsOwner(playerID uint) bool {
	return g.OwnerPlayerID == playerID
}
