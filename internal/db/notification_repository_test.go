package db

import (
	"testing"
	"time"

	"github.com/sileme/sileme/internal/models"
)

func seedNotification(t *testing.T, repo *NotificationRepository, notification models.Notification) models.Notification {
	t.Helper()
	if notification.Type == "" {
		notification.Type = models.NotificationTypeInfo
	}
	if notification.Category == "" {
		notification.Category = models.NotificationCategoryOther
	}
	if notification.Priority == 0 {
		notification.Priority = models.DefaultNotificationPriority
	}
	if notification.Channels == nil {
		notification.Channels = []string{models.ChannelPush}
	}
	if notification.Data == nil {
		notification.Data = map[string]string{}
	}
	if notification.Title == "" {
		notification.Title = "title"
	}
	if notification.Message == "" {
		notification.Message = "message"
	}
	if err := repo.Create(&notification); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return notification
}

func TestListPendingSelectsOnlyDueUnsentUnexpired(t *testing.T) {
	database := openTestDatabase(t)
	repo := NewNotificationRepository(database)
	user := seedUser(t, database, "pending")

	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	expiry := now.AddDate(0, 0, 30)

	due := seedNotification(t, repo, models.Notification{
		UserID: user.ID, ScheduledFor: &past, IsScheduled: true, ExpiresAt: expiry,
	})
	seedNotification(t, repo, models.Notification{ // not yet due
		UserID: user.ID, ScheduledFor: &future, IsScheduled: true, ExpiresAt: expiry,
	})
	seedNotification(t, repo, models.Notification{ // already sent
		UserID: user.ID, ScheduledFor: &past, IsScheduled: true, IsSent: true, ExpiresAt: expiry,
	})
	seedNotification(t, repo, models.Notification{ // expired
		UserID: user.ID, ScheduledFor: &past, IsScheduled: true, ExpiresAt: now.Add(-time.Second),
	})
	seedNotification(t, repo, models.Notification{ // immediate, never scheduled
		UserID: user.ID, ExpiresAt: expiry,
	})

	pending, err := repo.ListPending(now)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected exactly 1 pending, got %d", len(pending))
	}
	if pending[0].ID != due.ID {
		t.Fatalf("expected due notification %d, got %d", due.ID, pending[0].ID)
	}
}

func TestDeleteExpiredSweep(t *testing.T) {
	database := openTestDatabase(t)
	repo := NewNotificationRepository(database)
	user := seedUser(t, database, "sweeper")

	now := time.Now()
	seedNotification(t, repo, models.Notification{UserID: user.ID, ExpiresAt: now.Add(-time.Hour)})
	seedNotification(t, repo, models.Notification{UserID: user.ID, ExpiresAt: now.Add(-time.Minute)})
	kept := seedNotification(t, repo, models.Notification{UserID: user.ID, ExpiresAt: now.Add(time.Hour)})

	removed, err := repo.DeleteExpired(now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	remaining, err := repo.ListByUser(user.ID, models.NotificationListQuery{}, now)
	if err != nil {
		t.Fatalf("list remaining: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != kept.ID {
		t.Fatalf("expected only the unexpired notification, got %+v", remaining)
	}
}

func TestListByUserHidesExpiredAndFilters(t *testing.T) {
	database := openTestDatabase(t)
	repo := NewNotificationRepository(database)
	user := seedUser(t, database, "lister")

	now := time.Now()
	expiry := now.AddDate(0, 0, 30)
	seedNotification(t, repo, models.Notification{UserID: user.ID, Category: models.NotificationCategoryReminder, ExpiresAt: expiry})
	seedNotification(t, repo, models.Notification{UserID: user.ID, Category: models.NotificationCategoryCheckIn, IsRead: true, ExpiresAt: expiry})
	seedNotification(t, repo, models.Notification{UserID: user.ID, Category: models.NotificationCategoryCheckIn, ExpiresAt: now.Add(-time.Minute)})

	visible, err := repo.ListByUser(user.ID, models.NotificationListQuery{}, now)
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible, got %d", len(visible))
	}

	unread, err := repo.ListByUser(user.ID, models.NotificationListQuery{UnreadOnly: true}, now)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("expected 1 unread, got %d", len(unread))
	}

	reminders, err := repo.CountByUser(user.ID, models.NotificationListQuery{Category: models.NotificationCategoryReminder}, now)
	if err != nil {
		t.Fatalf("count reminders: %v", err)
	}
	if reminders != 1 {
		t.Fatalf("expected 1 reminder, got %d", reminders)
	}
}

func TestFindByIDForUserHidesExpiredAndForeign(t *testing.T) {
	database := openTestDatabase(t)
	repo := NewNotificationRepository(database)
	owner := seedUser(t, database, "owner")
	other := seedUser(t, database, "other")

	now := time.Now()
	live := seedNotification(t, repo, models.Notification{UserID: owner.ID, ExpiresAt: now.Add(time.Hour)})
	expired := seedNotification(t, repo, models.Notification{UserID: owner.ID, ExpiresAt: now.Add(-time.Minute)})

	found, ok, err := repo.FindByIDForUser(owner.ID, live.ID, now)
	if err != nil {
		t.Fatalf("find live: %v", err)
	}
	if !ok || found.ID != live.ID {
		t.Fatalf("expected live notification %d, got ok=%v id=%d", live.ID, ok, found.ID)
	}

	if _, ok, err = repo.FindByIDForUser(owner.ID, expired.ID, now); err != nil {
		t.Fatalf("find expired: %v", err)
	} else if ok {
		t.Fatal("expected an expired notification to be invisible")
	}

	if _, ok, err = repo.FindByIDForUser(other.ID, live.ID, now); err != nil {
		t.Fatalf("find foreign: %v", err)
	} else if ok {
		t.Fatal("expected another user's notification to be invisible")
	}
}

func TestMarkAllReadByUser(t *testing.T) {
	database := openTestDatabase(t)
	repo := NewNotificationRepository(database)
	user := seedUser(t, database, "reader")

	now := time.Now()
	expiry := now.AddDate(0, 0, 30)
	seedNotification(t, repo, models.Notification{UserID: user.ID, ExpiresAt: expiry})
	seedNotification(t, repo, models.Notification{UserID: user.ID, ExpiresAt: expiry})
	seedNotification(t, repo, models.Notification{UserID: user.ID, IsRead: true, ExpiresAt: expiry})

	updated, err := repo.MarkAllReadByUser(user.ID, now)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 updated, got %d", updated)
	}

	unread, err := repo.CountUnreadByUser(user.ID, now)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}
}

func TestExistsCategorySince(t *testing.T) {
	database := openTestDatabase(t)
	repo := NewNotificationRepository(database)
	user := seedUser(t, database, "dedupe")

	now := time.Now()
	seedNotification(t, repo, models.Notification{
		UserID:    user.ID,
		Category:  models.NotificationCategoryReminder,
		ExpiresAt: now.AddDate(0, 0, 30),
	})

	exists, err := repo.ExistsCategorySince(user.ID, models.NotificationCategoryReminder, now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("exists since: %v", err)
	}
	if !exists {
		t.Fatal("expected reminder found since a minute ago")
	}

	exists, err = repo.ExistsCategorySince(user.ID, models.NotificationCategoryReminder, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("exists since future: %v", err)
	}
	if exists {
		t.Fatal("expected no reminder created after a future instant")
	}
}

func TestNotificationEnabledByIDs(t *testing.T) {
	database := openTestDatabase(t)
	users := NewUserRepository(database)
	enabled := seedUser(t, database, "enabled")
	disabled := seedUser(t, database, "disabled")
	if err := users.UpdateByID(disabled.ID, map[string]any{"notification_enabled": false}); err != nil {
		t.Fatalf("disable notifications: %v", err)
	}

	flags, err := users.NotificationEnabledByIDs([]uint{enabled.ID, disabled.ID})
	if err != nil {
		t.Fatalf("load flags: %v", err)
	}
	if !flags[enabled.ID] || flags[disabled.ID] {
		t.Fatalf("unexpected flags %v", flags)
	}
}
