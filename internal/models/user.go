package models

import "time"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const DefaultReminderTime = "09:00"

// UserStats is the derived streak snapshot owned by the check-in service.
// It is always recomputed from the user's full check-in history; nothing
// updates these fields incrementally.
type UserStats struct {
	TotalCheckIns int        `gorm:"not null;default:0" json:"totalCheckIns"`
	CurrentStreak int        `gorm:"not null;default:0" json:"currentStreak"`
	LongestStreak int        `gorm:"not null;default:0" json:"longestStreak"`
	LastCheckIn   *time.Time `json:"lastCheckIn"`
}

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Nickname     string `json:"nickname"`
	Bio          string `json:"bio"`

	NotificationEnabled bool   `gorm:"not null;default:true" json:"notificationEnabled"`
	CheckInReminder     bool   `gorm:"not null;default:true" json:"checkInReminder"`
	ReminderTime        string `gorm:"not null;default:09:00" json:"reminderTime"`
	Theme               string `gorm:"not null;default:light" json:"theme"`

	Stats UserStats `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`

	IsActive    bool       `gorm:"not null;default:true" json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
