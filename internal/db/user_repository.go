package db

import (
	"time"

	"github.com/sileme/sileme/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) Create(user *models.User) error {
	return translateUniqueViolation(repo.database.Create(user).Error)
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByUsername(username string) (models.User, bool, error) {
	user := models.User{}
	result := repo.database.Where("username = ?", username).Limit(1).Find(&user)
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, false, nil
	}
	return user, true, nil
}

func (repo *UserRepository) FindByNormalizedEmail(email string) (models.User, bool, error) {
	user := models.User{}
	result := repo.database.Where("lower(trim(email)) = ?", email).Limit(1).Find(&user)
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, false, nil
	}
	return user, true, nil
}

func (repo *UserRepository) ExistsByUsername(username string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("username = ?", username).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// UpdateStats persists a freshly recomputed streak snapshot in one atomic
// update, so concurrent readers never observe a torn snapshot.
func (repo *UserRepository) UpdateStats(userID uint, stats models.UserStats) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"stats_total_check_ins": stats.TotalCheckIns,
		"stats_current_streak":  stats.CurrentStreak,
		"stats_longest_streak":  stats.LongestStreak,
		"stats_last_check_in":   stats.LastCheckIn,
	}).Error
}

func (repo *UserRepository) UpdateLastLogin(userID uint, loginAt time.Time) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("last_login_at", loginAt).Error
}

func (repo *UserRepository) UpdateByID(userID uint, updates map[string]any) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

// ListReminderUsers returns every active user who opted into check-in
// reminders and has notifications enabled.
func (repo *UserRepository) ListReminderUsers() ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.
		Where("is_active = ? AND check_in_reminder = ? AND notification_enabled = ?", true, true, true).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// NotificationEnabledByIDs maps each requested user ID to their
// notification-enabled flag. Missing users are simply absent from the map.
func (repo *UserRepository) NotificationEnabledByIDs(userIDs []uint) (map[uint]bool, error) {
	if len(userIDs) == 0 {
		return map[uint]bool{}, nil
	}

	users := make([]models.User, 0, len(userIDs))
	if err := repo.database.
		Select("id", "notification_enabled").
		Where("id IN ?", userIDs).
		Find(&users).Error; err != nil {
		return nil, err
	}

	enabled := make(map[uint]bool, len(users))
	for _, user := range users {
		enabled[user.ID] = user.NotificationEnabled
	}
	return enabled, nil
}
