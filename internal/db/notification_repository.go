package db

import (
	"time"

	"github.com/sileme/sileme/internal/models"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	database *gorm.DB
}

func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{database: database}
}

func (repo *NotificationRepository) Create(notification *models.Notification) error {
	return repo.database.Create(notification).Error
}

func (repo *NotificationRepository) Save(notification *models.Notification) error {
	return repo.database.Save(notification).Error
}

func (repo *NotificationRepository) FindByID(notificationID uint) (models.Notification, bool, error) {
	notification := models.Notification{}
	result := repo.database.Where("id = ?", notificationID).Limit(1).Find(&notification)
	if result.Error != nil {
		return models.Notification{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Notification{}, false, nil
	}
	return notification, true, nil
}

// FindByIDForUser resolves an owner-scoped notification. Expired rows are
// invisible here too, matching the list and count queries.
func (repo *NotificationRepository) FindByIDForUser(userID uint, notificationID uint, now time.Time) (models.Notification, bool, error) {
	notification := models.Notification{}
	result := repo.database.
		Where("user_id = ? AND id = ? AND expires_at > ?", userID, notificationID, now).
		Limit(1).
		Find(&notification)
	if result.Error != nil {
		return models.Notification{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Notification{}, false, nil
	}
	return notification, true, nil
}

// ListByUser returns the user's unexpired notifications, newest first.
func (repo *NotificationRepository) ListByUser(userID uint, query models.NotificationListQuery, now time.Time) ([]models.Notification, error) {
	scope := repo.scopeForQuery(userID, query, now).Order("created_at DESC, id DESC")
	if query.Limit > 0 {
		scope = scope.Limit(query.Limit).Offset(query.Offset)
	}

	notifications := make([]models.Notification, 0)
	if err := scope.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (repo *NotificationRepository) CountByUser(userID uint, query models.NotificationListQuery, now time.Time) (int64, error) {
	var count int64
	if err := repo.scopeForQuery(userID, query, now).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *NotificationRepository) scopeForQuery(userID uint, query models.NotificationListQuery, now time.Time) *gorm.DB {
	scope := repo.database.Model(&models.Notification{}).
		Where("user_id = ? AND expires_at > ?", userID, now)
	if query.UnreadOnly {
		scope = scope.Where("is_read = ?", false)
	}
	if query.Category != "" {
		scope = scope.Where("category = ?", query.Category)
	}
	if query.Type != "" {
		scope = scope.Where("type = ?", query.Type)
	}
	return scope
}

func (repo *NotificationRepository) CountUnreadByUser(userID uint, now time.Time) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ? AND expires_at > ?", userID, false, now).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *NotificationRepository) CountCreatedSince(userID uint, since time.Time) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Notification{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsCategorySince reports whether the user already has a notification of
// the category created at or after the given instant. The reminder task uses
// it to stay restart-safe within one day.
func (repo *NotificationRepository) ExistsCategorySince(userID uint, category string, since time.Time) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Notification{}).
		Where("user_id = ? AND category = ? AND created_at >= ?", userID, category, since).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ListPending returns every notification due for dispatch: scheduled, not
// yet sent, fire time reached, not expired. Spans all users.
func (repo *NotificationRepository) ListPending(now time.Time) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	if err := repo.database.
		Where("is_scheduled = ? AND is_sent = ? AND scheduled_for <= ? AND expires_at > ?", true, false, now, now).
		Order("scheduled_for ASC, id ASC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (repo *NotificationRepository) MarkAllReadByUser(userID uint, readAt time.Time) (int64, error) {
	result := repo.database.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": readAt})
	return result.RowsAffected, result.Error
}

// DeleteExpired removes every notification past its expiry. Hard delete.
func (repo *NotificationRepository) DeleteExpired(now time.Time) (int64, error) {
	result := repo.database.
		Where("expires_at < ?", now).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (repo *NotificationRepository) DeleteByIDForUser(userID uint, notificationID uint) (bool, error) {
	result := repo.database.
		Where("user_id = ? AND id = ?", userID, notificationID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByUser removes the user's notifications matching the filter. With a
// zero filter it clears everything the user owns.
func (repo *NotificationRepository) DeleteByUser(userID uint, onlyRead bool, category string) (int64, error) {
	scope := repo.database.Where("user_id = ?", userID)
	if onlyRead {
		scope = scope.Where("is_read = ?", true)
	}
	if category != "" {
		scope = scope.Where("category = ?", category)
	}
	result := scope.Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
