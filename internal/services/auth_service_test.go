package services

import (
	"errors"
	"testing"
	"time"

	"github.com/sileme/sileme/internal/models"
	"github.com/sileme/sileme/internal/security"
	"gorm.io/gorm"
)

type authUserRepositoryStub struct {
	users  map[uint]models.User
	nextID uint
}

func newAuthUserRepositoryStub() *authUserRepositoryStub {
	return &authUserRepositoryStub{users: make(map[uint]models.User), nextID: 1}
}

func (stub *authUserRepositoryStub) Create(user *models.User) error {
	for _, existing := range stub.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = stub.nextID
	stub.nextID++
	stub.users[user.ID] = *user
	return nil
}

func (stub *authUserRepositoryStub) FindByID(userID uint) (models.User, error) {
	user, exists := stub.users[userID]
	if !exists {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *authUserRepositoryStub) FindByUsername(username string) (models.User, bool, error) {
	for _, user := range stub.users {
		if user.Username == username {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (stub *authUserRepositoryStub) FindByNormalizedEmail(email string) (models.User, bool, error) {
	for _, user := range stub.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (stub *authUserRepositoryStub) ExistsByUsername(username string) (bool, error) {
	_, found, _ := stub.FindByUsername(username)
	return found, nil
}

func (stub *authUserRepositoryStub) ExistsByNormalizedEmail(email string) (bool, error) {
	_, found, _ := stub.FindByNormalizedEmail(email)
	return found, nil
}

func (stub *authUserRepositoryStub) UpdateLastLogin(userID uint, loginAt time.Time) error {
	user, exists := stub.users[userID]
	if !exists {
		return gorm.ErrRecordNotFound
	}
	stamp := loginAt
	user.LastLoginAt = &stamp
	stub.users[userID] = user
	return nil
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username: "dailybird",
		Email:    "Bird@Example.com",
		Password: "sunrise-hour",
	}
}

func TestRegisterAppliesAccountDefaults(t *testing.T) {
	repo := newAuthUserRepositoryStub()
	service := NewAuthService(repo, nil)

	user, err := service.Register(validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if user.Email != "bird@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Nickname != "dailybird" {
		t.Fatalf("expected nickname defaulted to username, got %q", user.Nickname)
	}
	if !user.NotificationEnabled || !user.CheckInReminder || !user.IsActive {
		t.Fatalf("expected notification defaults on, got %+v", user)
	}
	if user.ReminderTime != models.DefaultReminderTime {
		t.Fatalf("expected default reminder time, got %q", user.ReminderTime)
	}
	if user.PasswordHash == "sunrise-hour" || user.PasswordHash == "" {
		t.Fatal("expected hashed password")
	}
}

func TestRegisterRejectsTakenIdentity(t *testing.T) {
	repo := newAuthUserRepositoryStub()
	service := NewAuthService(repo, nil)

	if _, err := service.Register(validRegisterInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := service.Register(validRegisterInput())
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	other := validRegisterInput()
	other.Username = "otherbird"
	_, err = service.Register(other)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterCollectsViolations(t *testing.T) {
	repo := newAuthUserRepositoryStub()
	service := NewAuthService(repo, nil)

	_, err := service.Register(RegisterInput{
		Username: "a!",
		Email:    "not-an-email",
		Password: "short",
	})

	validationError := &ValidationError{}
	if !errors.As(err, &validationError) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationError.Violations) != 3 {
		t.Fatalf("expected 3 violations, got %+v", validationError.Violations)
	}
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	repo := newAuthUserRepositoryStub()
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	service := NewAuthService(repo, fixedClock(now))

	registered, err := service.Register(validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	byUsername, err := service.Login("dailybird", "sunrise-hour")
	if err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if byUsername.ID != registered.ID {
		t.Fatalf("unexpected user %d", byUsername.ID)
	}
	if byUsername.LastLoginAt == nil || !byUsername.LastLoginAt.Equal(now) {
		t.Fatalf("expected last login stamped, got %v", byUsername.LastLoginAt)
	}

	byEmail, err := service.Login("Bird@Example.com", "sunrise-hour")
	if err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if byEmail.ID != registered.ID {
		t.Fatalf("unexpected user %d", byEmail.ID)
	}
}

func TestLoginRejectsWrongPasswordAndUnknownUser(t *testing.T) {
	repo := newAuthUserRepositoryStub()
	service := NewAuthService(repo, nil)

	if _, err := service.Register(validRegisterInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := service.Login("dailybird", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := service.Login("nobody", "sunrise-hour"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	repo := newAuthUserRepositoryStub()
	service := NewAuthService(repo, nil)

	user, err := service.Register(validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	disabled := repo.users[user.ID]
	disabled.IsActive = false
	repo.users[user.ID] = disabled

	if _, err := service.Login("dailybird", "sunrise-hour"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

type settingsUserRepositoryStub struct {
	*authUserRepositoryStub
	updates map[string]any
}

func (stub *settingsUserRepositoryStub) UpdateByID(userID uint, updates map[string]any) error {
	if _, exists := stub.users[userID]; !exists {
		return gorm.ErrRecordNotFound
	}
	stub.updates = updates
	return nil
}

func TestUpdateNotificationSettingsValidatesReminderTime(t *testing.T) {
	repo := &settingsUserRepositoryStub{authUserRepositoryStub: newAuthUserRepositoryStub()}
	repo.users[1] = models.User{ID: 1}
	service := NewSettingsService(repo)

	bad := "25:00"
	err := service.UpdateNotificationSettings(1, NotificationSettingsUpdate{ReminderTime: &bad})
	validationError := &ValidationError{}
	if !errors.As(err, &validationError) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	good := "21:30"
	enabled := false
	if err := service.UpdateNotificationSettings(1, NotificationSettingsUpdate{ReminderTime: &good, NotificationEnabled: &enabled}); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if repo.updates["reminder_time"] != "21:30" {
		t.Fatalf("expected reminder_time update, got %v", repo.updates)
	}
	if repo.updates["notification_enabled"] != false {
		t.Fatalf("expected notification_enabled update, got %v", repo.updates)
	}
}

func TestChangePasswordChecksCurrent(t *testing.T) {
	repo := &settingsUserRepositoryStub{authUserRepositoryStub: newAuthUserRepositoryStub()}
	hash, err := security.HashPassword("old-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	repo.users[1] = models.User{ID: 1, PasswordHash: hash}
	service := NewSettingsService(repo)

	if err := service.ChangePassword(1, "wrong", "new-password-1"); !errors.Is(err, ErrCurrentPasswordInvalid) {
		t.Fatalf("expected ErrCurrentPasswordInvalid, got %v", err)
	}

	if err := service.ChangePassword(1, "old-password", "new-password-1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	newHash, ok := repo.updates["password_hash"].(string)
	if !ok || !security.CheckPassword(newHash, "new-password-1") {
		t.Fatal("expected new password hash persisted")
	}
}
