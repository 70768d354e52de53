package postgres

/*
 * 'Club' and 'Court' are maintained outside the game core. Games only hold
 * references to them.
 */
type Club struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:150;not null" json:"name"`
	City  string `gorm:"size:100" json:"city,omitempty"`
	State string `gorm:"size:50" json:"state,omitempty"`

	Courts []Court `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"courts,omitempty"`
}

type Court struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ClubID  uint   `gorm:"not null;index" json:"club_id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	Type    string `gorm:"size:50" json:"type,omitempty"`
	Covered bool   `gorm:"default:false" json:"covered"`
}
