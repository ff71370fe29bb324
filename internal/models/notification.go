package models

import "time"

const (
	NotificationTypeInfo      = "info"
	NotificationTypeWarning   = "warning"
	NotificationTypeEmergency = "emergency"
	NotificationTypeSuccess   = "success"
	NotificationTypeSystem    = "system"
)

const (
	NotificationCategoryCheckIn   = "checkin"
	NotificationCategoryReminder  = "reminder"
	NotificationCategorySystem    = "system"
	NotificationCategorySocial    = "social"
	NotificationCategoryEmergency = "emergency"
	NotificationCategoryOther     = "other"
)

const (
	ChannelPush     = "push"
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelRealtime = "realtime"
)

const (
	MinNotificationPriority     = 1
	MaxNotificationPriority     = 5
	DefaultNotificationPriority = 3
)

func NotificationTypes() []string {
	return []string{
		NotificationTypeInfo,
		NotificationTypeWarning,
		NotificationTypeEmergency,
		NotificationTypeSuccess,
		NotificationTypeSystem,
	}
}

func NotificationCategories() []string {
	return []string{
		NotificationCategoryCheckIn,
		NotificationCategoryReminder,
		NotificationCategorySystem,
		NotificationCategorySocial,
		NotificationCategoryEmergency,
		NotificationCategoryOther,
	}
}

func NotificationChannels() []string {
	return []string{ChannelPush, ChannelEmail, ChannelSMS, ChannelRealtime}
}

func IsValidNotificationType(value string) bool {
	return containsString(NotificationTypes(), value)
}

func IsValidNotificationCategory(value string) bool {
	return containsString(NotificationCategories(), value)
}

func IsValidNotificationChannel(value string) bool {
	return containsString(NotificationChannels(), value)
}

func containsString(values []string, needle string) bool {
	for _, value := range values {
		if value == needle {
			return true
		}
	}
	return false
}

// NotificationMeta carries presentation hints for the delivering client.
type NotificationMeta struct {
	Source    string `json:"source"`
	ActionURL string `json:"actionUrl"`
	ImageURL  string `json:"imageUrl"`
	Sound     string `json:"sound"`
}

// Notification is a message addressed to one user. ReadAt is set exactly
// once when IsRead transitions to true, and SentAt exactly once when IsSent
// transitions to true; both transitions are applied by the notification
// service, never by storage hooks.
type Notification struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index:idx_notification_user_read" json:"userId"`
	Title    string `gorm:"not null" json:"title"`
	Message  string `gorm:"not null" json:"message"`
	Type     string `gorm:"not null;default:info" json:"type"`
	Priority int    `gorm:"not null;default:3" json:"priority"`
	Category string `gorm:"not null;default:other" json:"category"`

	Data map[string]string `gorm:"serializer:json" json:"data"`

	IsRead bool       `gorm:"not null;default:false;index:idx_notification_user_read" json:"isRead"`
	ReadAt *time.Time `json:"readAt"`

	ScheduledFor *time.Time `gorm:"index:idx_notification_pending" json:"scheduledFor"`
	IsScheduled  bool       `gorm:"not null;default:false;index:idx_notification_pending" json:"isScheduled"`
	IsSent       bool       `gorm:"not null;default:false" json:"isSent"`
	SentAt       *time.Time `json:"sentAt"`

	Channels []string         `gorm:"serializer:json" json:"channels"`
	Meta     NotificationMeta `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsExpired reports whether the notification has passed its expiry at the
// given instant. Computed, never stored.
func (notification Notification) IsExpired(now time.Time) bool {
	return notification.ExpiresAt.Before(now)
}

// IsOverdue reports whether a scheduled notification missed its fire time
// and has not been sent yet.
func (notification Notification) IsOverdue(now time.Time) bool {
	return notification.ScheduledFor != nil &&
		notification.ScheduledFor.Before(now) &&
		!notification.IsSent
}

func (notification Notification) WantsChannel(channel string) bool {
	return containsString(notification.Channels, channel)
}

// NotificationListQuery narrows notification listings. Zero fields are
// ignored.
type NotificationListQuery struct {
	UnreadOnly bool
	Category   string
	Type       string
	Limit      int
	Offset     int
}
