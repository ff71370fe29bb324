package models

import "time"

const (
	MaxEmergencyContacts       = 5
	ContactNameMaxLength       = 50
	ContactRelationshipMaxLength = 20
)

// EmergencyContact is a person the user wants reachable about their
// check-in status. At least one of Phone or Email is always set.
type EmergencyContact struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"not null;index" json:"userId"`
	Name         string `gorm:"not null" json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
