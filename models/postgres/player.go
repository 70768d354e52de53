package postgres

import (
	"time"

	"gorm.io/datatypes"
)

type PlayerSide string

const (
	SideLeft  PlayerSide = "left"
	SideRight PlayerSide = "right"
)

/*
 * 'Player' is the sporting profile of a user. It is referenced by games,
 * memberships, invitations, friendships and favorites.
 */
type Player struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             *uint          `gorm:"uniqueIndex" json:"-"`
	FullName           string         `gorm:"size:100;not null" json:"full_name"`
	Phone              string         `gorm:"size:20" json:"phone,omitempty"`
	Level              int            `gorm:"default:3;index" json:"level"`
	Side               PlayerSide     `gorm:"size:10" json:"side,omitempty"`
	Bio                string         `gorm:"type:text" json:"bio,omitempty"`
	ProfileImageURL    string         `gorm:"type:text" json:"profile_image_url,omitempty"`
	PreferredLocations datatypes.JSON `gorm:"type:jsonb" json:"preferred_locations,omitempty"`
	PreferredTimes     datatypes.JSON `gorm:"type:jsonb" json:"preferred_times,omitempty"`
	CreatedAt          time.Time      `json:"-"`
	UpdatedAt          time.Time      `json:"-"`
}

// PlayerSummary is the public subset of a player shared with other players.
type PlayerSummary struct {
	ID              uint       `json:"id"`
	FullName        string     `json:"full_name"`
	Level           int        `json:"level"`
	Side            PlayerSide `json:"side,omitempty"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
}

func (p Player) Summary() PlayerSummary {
	return PlayerSummary{
		ID:              p.ID,
		FullName:        p.FullName,
		Level:           p.Level,
		Side:            p.Side,
		ProfileImageURL: p.ProfileImageURL,
	}
}
