package db

import (
	"time"

	"github.com/sileme/sileme/internal/models"
	"gorm.io/gorm"
)

type CheckInRepository struct {
	database *gorm.DB
}

func NewCheckInRepository(database *gorm.DB) *CheckInRepository {
	return &CheckInRepository{database: database}
}

func (repo *CheckInRepository) ListByUser(userID uint, query models.CheckInListQuery) ([]models.CheckIn, error) {
	scope := repo.scopeForQuery(userID, query).Order("date DESC, id DESC")
	if query.Limit > 0 {
		scope = scope.Limit(query.Limit).Offset(query.Offset)
	}

	checkIns := make([]models.CheckIn, 0)
	if err := scope.Find(&checkIns).Error; err != nil {
		return nil, err
	}
	return checkIns, nil
}

func (repo *CheckInRepository) CountByUser(userID uint, query models.CheckInListQuery) (int64, error) {
	var count int64
	if err := repo.scopeForQuery(userID, query).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *CheckInRepository) scopeForQuery(userID uint, query models.CheckInListQuery) *gorm.DB {
	scope := repo.database.Model(&models.CheckIn{}).Where("user_id = ?", userID)
	if query.FromStart != nil {
		scope = scope.Where("date >= ?", *query.FromStart)
	}
	if query.ToEnd != nil {
		scope = scope.Where("date < ?", *query.ToEnd)
	}
	if query.Mood != "" {
		scope = scope.Where("mood = ?", query.Mood)
	}
	if query.Tag != "" {
		scope = scope.Where("tags LIKE ?", `%"`+query.Tag+`"%`)
	}
	return scope
}

// ListDaysByUser returns every check-in day for the user in ascending order.
// This is the streak engine's input: one row per calendar day by the unique
// (user_id, date) index.
func (repo *CheckInRepository) ListDaysByUser(userID uint) ([]time.Time, error) {
	days := make([]time.Time, 0)
	if err := repo.database.Model(&models.CheckIn{}).
		Where("user_id = ?", userID).
		Order("date ASC").
		Pluck("date", &days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

// ListCreatedAtByUser returns the creation timestamps of every check-in,
// used by the early-bird achievement count.
func (repo *CheckInRepository) ListCreatedAtByUser(userID uint) ([]time.Time, error) {
	createdAt := make([]time.Time, 0)
	if err := repo.database.Model(&models.CheckIn{}).
		Where("user_id = ?", userID).
		Pluck("created_at", &createdAt).Error; err != nil {
		return nil, err
	}
	return createdAt, nil
}

func (repo *CheckInRepository) FindByIDForUser(userID uint, checkInID uint) (models.CheckIn, bool, error) {
	entry := models.CheckIn{}
	result := repo.database.
		Where("user_id = ? AND id = ?", userID, checkInID).
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.CheckIn{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.CheckIn{}, false, nil
	}
	return entry, true, nil
}

func (repo *CheckInRepository) FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.CheckIn, bool, error) {
	entry := models.CheckIn{}
	result := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart, dayEnd).
		Order("date DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.CheckIn{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.CheckIn{}, false, nil
	}
	return entry, true, nil
}

func (repo *CheckInRepository) ExistsByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.CheckIn{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart, dayEnd).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *CheckInRepository) CountByUserRange(userID uint, fromStart time.Time, toEnd time.Time) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.CheckIn{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, fromStart, toEnd).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a check-in. A same-day duplicate surfaces as
// gorm.ErrDuplicatedKey via the (user_id, date) unique index.
func (repo *CheckInRepository) Create(entry *models.CheckIn) error {
	return translateUniqueViolation(repo.database.Create(entry).Error)
}

func (repo *CheckInRepository) Save(entry *models.CheckIn) error {
	return repo.database.Save(entry).Error
}

// DeleteByUser removes every check-in the user owns. Used by the bulk
// data-clear operation only.
func (repo *CheckInRepository) DeleteByUser(userID uint) (int64, error) {
	result := repo.database.
		Where("user_id = ?", userID).
		Delete(&models.CheckIn{})
	return result.RowsAffected, result.Error
}

func (repo *CheckInRepository) DeleteByIDForUser(userID uint, checkInID uint) (bool, error) {
	result := repo.database.
		Where("user_id = ? AND id = ?", userID, checkInID).
		Delete(&models.CheckIn{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
