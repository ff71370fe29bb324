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
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
	PasswordMinLength = 8
	NicknameMaxLength = 50
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthUserRepository interface {
	Create(user *models.User) error
	FindByID(userID uint) (models.User, error)
	FindByUsername(username string) (models.User, bool, error)
	FindByNormalizedEmail(email string) (models.User, bool, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByNormalizedEmail(email string) (bool, error)
	UpdateLastLogin(userID uint, loginAt time.Time) error
}

type AuthService struct {
	users AuthUserRepository
	clock func() time.Time
}

func NewAuthService(users AuthUserRepository, clock func() time.Time) *AuthService {
	if clock == nil {
		clock = time.Now
	}
	return &AuthService{users: users, clock: clock}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Nickname string
}

// Register creates an account with the default settings: notifications and
// the daily reminder on, light theme. Emails are stored lowercased.
func (service *AuthService) Register(input RegisterInput) (models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Nickname = strings.TrimSpace(input.Nickname)

	if err := validateRegisterInput(input); err != nil {
		return models.User{}, err
	}

	usernameTaken, err := service.users.ExistsByUsername(input.Username)
	if err != nil {
		return models.User{}, fmt.Errorf("check username: %w", err)
	}
	if usernameTaken {
		return models.User{}, ErrUsernameTaken
	}
	emailTaken, err := service.users.ExistsByNormalizedEmail(input.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if emailTaken {
		return models.User{}, ErrEmailTaken
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	nickname := input.Nickname
	if nickname == "" {
		nickname = input.Username
	}

	user := models.User{
		Username:            input.Username,
		Email:               input.Email,
		PasswordHash:        hash,
		Nickname:            nickname,
		NotificationEnabled: true,
		CheckInReminder:     true,
		ReminderTime:        models.DefaultReminderTime,
		Theme:               models.ThemeLight,
		IsActive:            true,
	}
	if err := service.users.Create(&user); err != nil {
		// The unique indexes are the source of truth; the pre-checks above
		// only race with a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login accepts a username or an email as the identifier. Disabled accounts
// fail after the password check so the two cases are indistinguishable by
// timing.
func (service *AuthService) Login(identifier string, password string) (models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user, found, err := service.users.FindByUsername(identifier)
	if err != nil {
		return models.User{}, fmt.Errorf("find by username: %w", err)
	}
	if !found {
		user, found, err = service.users.FindByNormalizedEmail(strings.ToLower(identifier))
		if err != nil {
			return models.User{}, fmt.Errorf("find by email: %w", err)
		}
	}
	if !found {
		return models.User{}, ErrInvalidCredentials
	}

	if !security.CheckPassword(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.User{}, ErrAccountDisabled
	}

	now := service.clock()
	if err := service.users.UpdateLastLogin(user.ID, now); err != nil {
		return models.User{}, fmt.Errorf("update last login: %w", err)
	}
	user.LastLoginAt = &now
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func validateRegisterInput(input RegisterInput) error {
	collector := violationCollector{}

	length := utf8.RuneCountInString(input.Username)
	switch {
	case length < UsernameMinLength || length > UsernameMaxLength:
		collector.add("username", fmt.Sprintf("username must be %d to %d characters", UsernameMinLength, UsernameMaxLength))
	case !usernameRegex.MatchString(input.Username):
		collector.add("username", "username may only contain letters, digits and underscores")
	}

	if !emailRegex.MatchString(input.Email) {
		collector.add("email", "email address is not valid")
	}

	if utf8.RuneCountInString(input.Password) < PasswordMinLength {
		collector.add("password", fmt.Sprintf("password must be at least %d characters", PasswordMinLength))
	}

	if utf8.RuneCountInString(input.Nickname) > NicknameMaxLength {
		collector.add("nickname", fmt.Sprintf("nickname must be at most %d characters", NicknameMaxLength))
	}

	return collector.result()
}
