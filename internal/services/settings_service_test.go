package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/sileme/sileme/internal/models"
)

func TestDeactivateAccountRenamesAndDisables(t *testing.T) {
	repo := &settingsUserRepositoryStub{authUserRepositoryStub: newAuthUserRepositoryStub()}
	repo.users[1] = models.User{
		ID:       1,
		Username: "bird",
		Email:    "bird@example.com",
		IsActive: true,
	}
	service := NewSettingsService(repo)

	if err := service.DeactivateAccount(1); err != nil {
		t.Fatalf("deactivate account: %v", err)
	}

	if active, ok := repo.updates["is_active"].(bool); !ok || active {
		t.Fatalf("expected is_active false, got %v", repo.updates["is_active"])
	}
	username := repo.updates["username"].(string)
	if !strings.HasPrefix(username, "deleted_") || !strings.HasSuffix(username, "_bird") {
		t.Fatalf("expected renamed username, got %q", username)
	}
	email := repo.updates["email"].(string)
	if !strings.HasPrefix(email, "deleted_") || !strings.HasSuffix(email, "_bird@example.com") {
		t.Fatalf("expected renamed email, got %q", email)
	}
}

func TestDeactivateAccountUnknownUser(t *testing.T) {
	repo := &settingsUserRepositoryStub{authUserRepositoryStub: newAuthUserRepositoryStub()}
	service := NewSettingsService(repo)

	if err := service.DeactivateAccount(9); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
