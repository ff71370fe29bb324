package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sileme/sileme/internal/models"
	"github.com/sileme/sileme/internal/security"
	"gorm.io/gorm"
)

var (
	ErrCurrentPasswordInvalid = errors.New("current password invalid")
)

const BioMaxLength = 200

var reminderTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type SettingsUserRepository interface {
	FindByID(userID uint) (models.User, error)
	UpdateByID(userID uint, updates map[string]any) error
}

type SettingsService struct {
	users SettingsUserRepository
}

func NewSettingsService(users SettingsUserRepository) *SettingsService {
	return &SettingsService{users: users}
}

type ProfileUpdate struct {
	Nickname *string
	Bio      *string
	Theme    *string
}

type NotificationSettingsUpdate struct {
	NotificationEnabled *bool
	CheckInReminder     *bool
	ReminderTime        *string
}

func (service *SettingsService) LoadSettings(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// UpdateProfile applies only the fields the caller set. Nil pointers keep
// the stored value.
func (service *SettingsService) UpdateProfile(userID uint, update ProfileUpdate) error {
	collector := violationCollector{}
	updates := map[string]any{}

	if update.Nickname != nil {
		nickname := strings.TrimSpace(*update.Nickname)
		if utf8.RuneCountInString(nickname) > NicknameMaxLength {
			collector.add("nickname", fmt.Sprintf("nickname must be at most %d characters", NicknameMaxLength))
		} else {
			updates["nickname"] = nickname
		}
	}
	if update.Bio != nil {
		bio := strings.TrimSpace(*update.Bio)
		if utf8.RuneCountInString(bio) > BioMaxLength {
			collector.add("bio", fmt.Sprintf("bio must be at most %d characters", BioMaxLength))
		} else {
			updates["bio"] = bio
		}
	}
	if update.Theme != nil {
		theme := *update.Theme
		if theme != models.ThemeLight && theme != models.ThemeDark {
			collector.add("theme", "theme must be light or dark")
		} else {
			updates["theme"] = theme
		}
	}

	if err := collector.result(); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return service.users.UpdateByID(userID, updates)
}

func (service *SettingsService) UpdateNotificationSettings(userID uint, update NotificationSettingsUpdate) error {
	updates := map[string]any{}

	if update.NotificationEnabled != nil {
		updates["notification_enabled"] = *update.NotificationEnabled
	}
	if update.CheckInReminder != nil {
		updates["check_in_reminder"] = *update.CheckInReminder
	}
	if update.ReminderTime != nil {
		if !reminderTimeRegex.MatchString(*update.ReminderTime) {
			return newValidationError(FieldViolation{
				Field:   "reminderTime",
				Message: "reminder time must be HH:MM",
			})
		}
		updates["reminder_time"] = *update.ReminderTime
	}

	if len(updates) == 0 {
		return nil
	}
	return service.users.UpdateByID(userID, updates)
}

// DeactivateAccount soft-deletes the account: the user can no longer log
// in, and the username and email are renamed so they become free for
// re-registration. Check-in history stays untouched.
func (service *SettingsService) DeactivateAccount(userID uint) error {
	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	stamp := time.Now().Unix()
	return service.users.UpdateByID(userID, map[string]any{
		"is_active": false,
		"username":  fmt.Sprintf("deleted_%d_%s", stamp, user.Username),
		"email":     fmt.Sprintf("deleted_%d_%s", stamp, user.Email),
	})
}

func (service *SettingsService) ChangePassword(userID uint, currentPassword string, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < PasswordMinLength {
		return newValidationError(FieldViolation{
			Field:   "newPassword",
			Message: fmt.Sprintf("password must be at least %d characters", PasswordMinLength),
		})
	}

	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !security.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrCurrentPasswordInvalid
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return service.users.UpdateByID(userID, map[string]any{"password_hash": hash})
}
