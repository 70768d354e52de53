package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

/*
 * 'Friendship' is stored in one direction (PlayerID sent the request or
 * blocked, FriendID received it) but it means the same thing both ways.
 * A unique index on the unordered pair is created by MigrateDatabase.
 */
type Friendship struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	PlayerID  uint             `gorm:"not null;index" json:"player_id"`
	FriendID  uint             `gorm:"not null;index" json:"friend_id"`
	Status    FriendshipStatus `gorm:"size:10;not null;default:pending" json:"status"`
	CreatedAt time.Time        `json:"-"`
	UpdatedAt time.Time        `json:"-"`

	// Relationships
	Player *Player `gorm:"foreignKey:PlayerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"player,omitempty"`
	Friend *Player `gorm:"foreignKey:FriendID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"friend,omitempty"`
}

func (Friendship) TableName() string {
	return "friends"
}

// Other returns the id on the opposite side of the relation from playerID.
func (f Friendship) Other(playerID uint) uint {
	if f.PlayerID == playerID {
		return f.FriendID
	}
	return f.PlayerID
}

// GORM hook to ensure that both players are different
func (f *Friendship) BeforeSave(tx *gorm.DB) error {
	if f.PlayerID == f.FriendID {
		return errors.New("a friendship needs two different players")
	}
	return nil
}
