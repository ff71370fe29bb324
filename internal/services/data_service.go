package services

import (
	"fmt"

	"github.com/sileme/sileme/internal/models"
)

// ClearAllConfirmToken must be sent verbatim before the bulk wipe runs.
const ClearAllConfirmToken = "DELETE_ALL_DATA"

type DataCheckInRepository interface {
	DeleteByUser(userID uint) (int64, error)
}

type DataNotificationRepository interface {
	DeleteByUser(userID uint, onlyRead bool, category string) (int64, error)
}

type DataContactRepository interface {
	DeleteByUser(userID uint) (int64, error)
}

type DataUserRepository interface {
	UpdateStats(userID uint, stats models.UserStats) error
}

// DataService wipes a user's stored data on request. The account itself
// survives; only its content goes.
type DataService struct {
	checkIns      DataCheckInRepository
	notifications DataNotificationRepository
	contacts      DataContactRepository
	users         DataUserRepository
}

func NewDataService(checkIns DataCheckInRepository, notifications DataNotificationRepository, contacts DataContactRepository, users DataUserRepository) *DataService {
	return &DataService{
		checkIns:      checkIns,
		notifications: notifications,
		contacts:      contacts,
		users:         users,
	}
}

type ClearAllResult struct {
	CheckInsDeleted      int64 `json:"checkInsDeleted"`
	NotificationsDeleted int64 `json:"notificationsDeleted"`
	ContactsDeleted      int64 `json:"contactsDeleted"`
}

// ClearAll deletes every check-in, notification and emergency contact the
// user owns and resets the cached stats to zero. The caller must confirm
// with ClearAllConfirmToken; anything else is rejected.
func (service *DataService) ClearAll(userID uint, confirm string) (ClearAllResult, error) {
	if confirm != ClearAllConfirmToken {
		return ClearAllResult{}, newValidationError(FieldViolation{
			Field:   "confirm",
			Message: fmt.Sprintf("confirm must be %q", ClearAllConfirmToken),
		})
	}

	checkIns, err := service.checkIns.DeleteByUser(userID)
	if err != nil {
		return ClearAllResult{}, fmt.Errorf("delete check-ins: %w", err)
	}
	notifications, err := service.notifications.DeleteByUser(userID, false, "")
	if err != nil {
		return ClearAllResult{}, fmt.Errorf("delete notifications: %w", err)
	}
	contacts, err := service.contacts.DeleteByUser(userID)
	if err != nil {
		return ClearAllResult{}, fmt.Errorf("delete contacts: %w", err)
	}
	if err := service.users.UpdateStats(userID, models.UserStats{}); err != nil {
		return ClearAllResult{}, fmt.Errorf("reset stats: %w", err)
	}

	return ClearAllResult{
		CheckInsDeleted:      checkIns,
		NotificationsDeleted: notifications,
		ContactsDeleted:      contacts,
	}, nil
}
