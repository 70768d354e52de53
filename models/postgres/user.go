package postgres

import (
	"time"
)

/*
 * 'User' is the account used to log in. A user owns at most one Player
 * profile; most game operations need that profile to exist.
 */
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     string    `gorm:"size:100" json:"full_name"`
	MemberSince  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"member_since"`

	// Relationship with the player profile
	Player *Player `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"player,omitempty"`
}
