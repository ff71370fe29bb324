package services

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sileme/sileme/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

const (
	DefaultNotificationExpiryDays = 30
	TitleMaxLength                = 100
	MessageMaxLength              = 500
)

type NotificationRepository interface {
	Create(notification *models.Notification) error
	Save(notification *models.Notification) error
	FindByID(notificationID uint) (models.Notification, bool, error)
	FindByIDForUser(userID uint, notificationID uint, now time.Time) (models.Notification, bool, error)
	ListByUser(userID uint, query models.NotificationListQuery, now time.Time) ([]models.Notification, error)
	CountByUser(userID uint, query models.NotificationListQuery, now time.Time) (int64, error)
	CountUnreadByUser(userID uint, now time.Time) (int64, error)
	CountCreatedSince(userID uint, since time.Time) (int64, error)
	ExistsCategorySince(userID uint, category string, since time.Time) (bool, error)
	ListPending(now time.Time) ([]models.Notification, error)
	MarkAllReadByUser(userID uint, readAt time.Time) (int64, error)
	DeleteExpired(now time.Time) (int64, error)
	DeleteByIDForUser(userID uint, notificationID uint) (bool, error)
	DeleteByUser(userID uint, onlyRead bool, category string) (int64, error)
}

type NotificationUserReader interface {
	NotificationEnabledByIDs(userIDs []uint) (map[uint]bool, error)
}

type NotificationStoreConfig struct {
	Location   *time.Location
	Clock      func() time.Time
	ExpiryDays int
}

func (config *NotificationStoreConfig) applyDefaults() {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.ExpiryDays <= 0 {
		config.ExpiryDays = DefaultNotificationExpiryDays
	}
}

// NotificationStore owns notification state transitions. All field
// normalization (defaults, readAt/sentAt stamps, expiry) happens here,
// explicitly, never in storage hooks.
type NotificationStore struct {
	notifications NotificationRepository
	users         NotificationUserReader
	config        NotificationStoreConfig
}

func NewNotificationStore(
	notifications NotificationRepository,
	users NotificationUserReader,
	config NotificationStoreConfig,
) *NotificationStore {
	config.applyDefaults()
	return &NotificationStore{
		notifications: notifications,
		users:         users,
		config:        config,
	}
}

type NotificationInput struct {
	Title        string
	Message      string
	Type         string
	Priority     int
	Category     string
	Data         map[string]string
	ScheduledFor *time.Time
	Channels     []string
	Meta         models.NotificationMeta
}

// PendingNotification pairs a dispatchable notification with the owner flag
// the dispatcher needs to decide deliverability.
type PendingNotification struct {
	Notification             models.Notification
	OwnerNotificationEnabled bool
}

// Create validates the input, applies defaults, and persists the
// notification. It is scheduled exactly when ScheduledFor is set.
func (store *NotificationStore) Create(userID uint, input NotificationInput) (models.Notification, error) {
	if err := store.validateInput(input); err != nil {
		return models.Notification{}, err
	}

	now := store.config.Clock()
	notification := models.Notification{
		UserID:       userID,
		Title:        input.Title,
		Message:      input.Message,
		Type:         input.Type,
		Priority:     input.Priority,
		Category:     input.Category,
		Data:         input.Data,
		ScheduledFor: input.ScheduledFor,
		IsScheduled:  input.ScheduledFor != nil,
		Channels:     input.Channels,
		Meta:         input.Meta,
		ExpiresAt:    now.AddDate(0, 0, store.config.ExpiryDays),
	}
	if notification.Type == "" {
		notification.Type = models.NotificationTypeInfo
	}
	if notification.Priority == 0 {
		notification.Priority = models.DefaultNotificationPriority
	}
	if notification.Category == "" {
		notification.Category = models.NotificationCategoryOther
	}
	if len(notification.Channels) == 0 {
		notification.Channels = []string{models.ChannelPush}
	}
	if notification.Data == nil {
		notification.Data = map[string]string{}
	}

	if err := store.notifications.Create(&notification); err != nil {
		return models.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return notification, nil
}

// CreateSystemNotification builds an immediate system message delivered on
// push and realtime channels.
func (store *NotificationStore) CreateSystemNotification(userID uint, title string, message string, category string, data map[string]string) (models.Notification, error) {
	if category == "" {
		category = models.NotificationCategorySystem
	}
	return store.Create(userID, NotificationInput{
		Title:    title,
		Message:  message,
		Type:     models.NotificationTypeSystem,
		Category: category,
		Data:     data,
		Channels: []string{models.ChannelPush, models.ChannelRealtime},
		Meta:     models.NotificationMeta{Source: "system"},
	})
}

// CreateReminder builds the daily check-in reminder. It is immediate, not
// scheduled; the reminder task delivers it right after creation.
func (store *NotificationStore) CreateReminder(userID uint) (models.Notification, error) {
	return store.Create(userID, NotificationInput{
		Title:    "Check-in reminder",
		Message:  "Don't forget today's check-in. Keep the habit going!",
		Type:     models.NotificationTypeInfo,
		Category: models.NotificationCategoryReminder,
		Channels: []string{models.ChannelPush, models.ChannelRealtime},
		Meta:     models.NotificationMeta{Source: "system", Sound: "default"},
	})
}

// Get resolves one of the owner's notifications. Expired notifications are
// not found, same as in listings.
func (store *NotificationStore) Get(userID uint, notificationID uint) (models.Notification, error) {
	notification, found, err := store.notifications.FindByIDForUser(userID, notificationID, store.config.Clock())
	if err != nil {
		return models.Notification{}, fmt.Errorf("load notification: %w", err)
	}
	if !found {
		return models.Notification{}, ErrNotificationNotFound
	}
	return notification, nil
}

// MarkRead flips the read flag and stamps ReadAt exactly once. Calling it
// again is a no-op that returns the unchanged notification.
func (store *NotificationStore) MarkRead(userID uint, notificationID uint) (models.Notification, error) {
	notification, found, err := store.notifications.FindByIDForUser(userID, notificationID, store.config.Clock())
	if err != nil {
		return models.Notification{}, fmt.Errorf("load notification: %w", err)
	}
	if !found {
		return models.Notification{}, ErrNotificationNotFound
	}
	if notification.IsRead {
		return notification, nil
	}

	readAt := store.config.Clock()
	notification.IsRead = true
	notification.ReadAt = &readAt
	if err := store.notifications.Save(&notification); err != nil {
		return models.Notification{}, fmt.Errorf("save notification: %w", err)
	}
	return notification, nil
}

// MarkSent flips the sent flag and stamps SentAt exactly once. Idempotent.
func (store *NotificationStore) MarkSent(notificationID uint) error {
	notification, found, err := store.notifications.FindByID(notificationID)
	if err != nil {
		return fmt.Errorf("load notification: %w", err)
	}
	if !found {
		return ErrNotificationNotFound
	}
	if notification.IsSent {
		return nil
	}

	sentAt := store.config.Clock()
	notification.IsSent = true
	notification.SentAt = &sentAt
	if err := store.notifications.Save(&notification); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

func (store *NotificationStore) MarkAllRead(userID uint) (int64, error) {
	return store.notifications.MarkAllReadByUser(userID, store.config.Clock())
}

// UnreadCount excludes expired notifications.
func (store *NotificationStore) UnreadCount(userID uint) (int64, error) {
	return store.notifications.CountUnreadByUser(userID, store.config.Clock())
}

func (store *NotificationStore) List(userID uint, query models.NotificationListQuery) ([]models.Notification, int64, error) {
	now := store.config.Clock()
	notifications, err := store.notifications.ListByUser(userID, query, now)
	if err != nil {
		return nil, 0, err
	}
	total, err := store.notifications.CountByUser(userID, models.NotificationListQuery{
		UnreadOnly: query.UnreadOnly,
		Category:   query.Category,
		Type:       query.Type,
	}, now)
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// ListPending returns dispatchable notifications across all owners, each
// joined with the owner's notification-enabled flag.
func (store *NotificationStore) ListPending() ([]PendingNotification, error) {
	notifications, err := store.notifications.ListPending(store.config.Clock())
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	if len(notifications) == 0 {
		return []PendingNotification{}, nil
	}

	ownerIDs := make([]uint, 0, len(notifications))
	seen := make(map[uint]struct{}, len(notifications))
	for _, notification := range notifications {
		if _, exists := seen[notification.UserID]; exists {
			continue
		}
		seen[notification.UserID] = struct{}{}
		ownerIDs = append(ownerIDs, notification.UserID)
	}

	enabled, err := store.users.NotificationEnabledByIDs(ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load owner notification flags: %w", err)
	}

	pending := make([]PendingNotification, 0, len(notifications))
	for _, notification := range notifications {
		pending = append(pending, PendingNotification{
			Notification:             notification,
			OwnerNotificationEnabled: enabled[notification.UserID],
		})
	}
	return pending, nil
}

// HasReminderToday reports whether a reminder notification was already
// created for the user today, keeping the reminder task restart-safe.
func (store *NotificationStore) HasReminderToday(userID uint) (bool, error) {
	todayStart := DateAtLocation(store.config.Clock(), store.config.Location)
	return store.notifications.ExistsCategorySince(userID, models.NotificationCategoryReminder, todayStart)
}

// CleanupExpired permanently removes every notification past its expiry and
// returns how many were deleted.
func (store *NotificationStore) CleanupExpired() (int64, error) {
	return store.notifications.DeleteExpired(store.config.Clock())
}

func (store *NotificationStore) Delete(userID uint, notificationID uint) error {
	deleted, err := store.notifications.DeleteByIDForUser(userID, notificationID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if !deleted {
		return ErrNotificationNotFound
	}
	return nil
}

func (store *NotificationStore) BulkDelete(userID uint, onlyRead bool, category string) (int64, error) {
	return store.notifications.DeleteByUser(userID, onlyRead, category)
}

// NotificationStats is the per-user summary surfaced by the API.
type NotificationStats struct {
	Total    int64 `json:"total"`
	Unread   int64 `json:"unread"`
	Recent24 int64 `json:"recent24h"`
}

func (store *NotificationStore) Stats(userID uint) (NotificationStats, error) {
	now := store.config.Clock()

	total, err := store.notifications.CountByUser(userID, models.NotificationListQuery{}, now)
	if err != nil {
		return NotificationStats{}, err
	}
	unread, err := store.notifications.CountUnreadByUser(userID, now)
	if err != nil {
		return NotificationStats{}, err
	}
	recent, err := store.notifications.CountCreatedSince(userID, now.Add(-24*time.Hour))
	if err != nil {
		return NotificationStats{}, err
	}

	return NotificationStats{Total: total, Unread: unread, Recent24: recent}, nil
}

func (store *NotificationStore) validateInput(input NotificationInput) error {
	collector := &violationCollector{}

	if input.Title == "" {
		collector.add("title", "title is required")
	} else if utf8.RuneCountInString(input.Title) > TitleMaxLength {
		collector.add("title", fmt.Sprintf("title must be at most %d characters", TitleMaxLength))
	}

	if input.Message == "" {
		collector.add("message", "message is required")
	} else if utf8.RuneCountInString(input.Message) > MessageMaxLength {
		collector.add("message", fmt.Sprintf("message must be at most %d characters", MessageMaxLength))
	}

	if input.Type != "" && !models.IsValidNotificationType(input.Type) {
		collector.add("type", "unknown notification type")
	}
	if input.Category != "" && !models.IsValidNotificationCategory(input.Category) {
		collector.add("category", "unknown notification category")
	}
	if input.Priority != 0 && (input.Priority < models.MinNotificationPriority || input.Priority > models.MaxNotificationPriority) {
		collector.add("priority", fmt.Sprintf("priority must be between %d and %d", models.MinNotificationPriority, models.MaxNotificationPriority))
	}
	for _, channel := range input.Channels {
		if !models.IsValidNotificationChannel(channel) {
			collector.add("channels", "unknown notification channel: "+channel)
			break
		}
	}

	return collector.result()
}
