package db

import "gorm.io/gorm"

type Repositories struct {
	Users         *UserRepository
	CheckIns      *CheckInRepository
	Notifications *NotificationRepository
	Contacts      *ContactRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		CheckIns:      NewCheckInRepository(database),
		Notifications: NewNotificationRepository(database),
		Contacts:      NewContactRepository(database),
	}
}
