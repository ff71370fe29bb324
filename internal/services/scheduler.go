package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sileme/sileme/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultDispatchInterval = time.Minute
	DefaultCleanupTime      = "02:00"
	DefaultReminderTime     = "09:00"
)

type SchedulerNotificationStore interface {
	ListPending() ([]PendingNotification, error)
	MarkSent(notificationID uint) error
	CleanupExpired() (int64, error)
	CreateReminder(userID uint) (models.Notification, error)
	HasReminderToday(userID uint) (bool, error)
}

type SchedulerCheckInReader interface {
	HasCheckedInToday(userID uint) (bool, error)
}

type SchedulerUserReader interface {
	ListReminderUsers() ([]models.User, error)
}

type SchedulerConfig struct {
	Location         *time.Location
	Clock            func() time.Time
	DispatchInterval time.Duration
	CleanupTime      string
	ReminderTime     string
}

func (config *SchedulerConfig) applyDefaults() {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.DispatchInterval <= 0 {
		config.DispatchInterval = DefaultDispatchInterval
	}
	if config.CleanupTime == "" {
		config.CleanupTime = DefaultCleanupTime
	}
	if config.ReminderTime == "" {
		config.ReminderTime = DefaultReminderTime
	}
}

// Scheduler drives the three recurring notification tasks: dispatching
// pending notifications, purging expired ones, and generating daily
// check-in reminders. It owns no ambient global state; construct it once,
// Start it, and Stop it on shutdown. Task errors and panics are logged and
// never unschedule future ticks.
type Scheduler struct {
	notifications SchedulerNotificationStore
	checkIns      SchedulerCheckInReader
	users         SchedulerUserReader
	sink          DeliverySink
	config        SchedulerConfig
	logger        *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	dispatchGuard sync.Mutex
	cleanupGuard  sync.Mutex
	reminderGuard sync.Mutex
}

func NewScheduler(
	notifications SchedulerNotificationStore,
	checkIns SchedulerCheckInReader,
	users SchedulerUserReader,
	sink DeliverySink,
	config SchedulerConfig,
	logger *zap.Logger,
) *Scheduler {
	config.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		notifications: notifications,
		checkIns:      checkIns,
		users:         users,
		sink:          sink,
		config:        config,
		logger:        logger,
	}
}

// Start launches the three task loops. Each task runs on its own timer so a
// slow dispatch pass never delays the cleanup or reminder schedule.
func (scheduler *Scheduler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	scheduler.cancel = cancel

	scheduler.wg.Add(3)
	go scheduler.runIntervalLoop(runCtx, "dispatch", scheduler.config.DispatchInterval, &scheduler.dispatchGuard, scheduler.runDispatch)
	go scheduler.runDailyLoop(runCtx, "cleanup", scheduler.config.CleanupTime, &scheduler.cleanupGuard, scheduler.runCleanup)
	go scheduler.runDailyLoop(runCtx, "reminders", scheduler.config.ReminderTime, &scheduler.reminderGuard, scheduler.runReminders)

	scheduler.logger.Info("scheduler started",
		zap.Duration("dispatch_interval", scheduler.config.DispatchInterval),
		zap.String("cleanup_at", scheduler.config.CleanupTime),
		zap.String("reminders_at", scheduler.config.ReminderTime),
	)
}

// Stop cancels all task loops and waits for in-flight runs to finish.
func (scheduler *Scheduler) Stop() {
	if scheduler.cancel != nil {
		scheduler.cancel()
	}
	scheduler.wg.Wait()
	scheduler.logger.Info("scheduler stopped")
}

func (scheduler *Scheduler) runIntervalLoop(ctx context.Context, name string, interval time.Duration, guard *sync.Mutex, task func(context.Context) error) {
	defer scheduler.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scheduler.runGuarded(ctx, name, guard, task)
		}
	}
}

func (scheduler *Scheduler) runDailyLoop(ctx context.Context, name string, fireAt string, guard *sync.Mutex, task func(context.Context) error) {
	defer scheduler.wg.Done()

	for {
		wait := time.Until(NextDailyFireTime(scheduler.config.Clock(), fireAt, scheduler.config.Location))
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			scheduler.runGuarded(ctx, name, guard, task)
		}
	}
}

// runGuarded enforces one active run per task and converts panics and
// errors into log entries so the loop stays alive.
func (scheduler *Scheduler) runGuarded(ctx context.Context, name string, guard *sync.Mutex, task func(context.Context) error) {
	if !guard.TryLock() {
		scheduler.logger.Warn("previous run still active, skipping tick", zap.String("task", name))
		return
	}
	defer guard.Unlock()

	defer func() {
		if recovered := recover(); recovered != nil {
			scheduler.logger.Error("task panicked",
				zap.String("task", name),
				zap.Any("panic", recovered),
			)
		}
	}()

	if err := task(ctx); err != nil {
		scheduler.logger.Error("task failed", zap.String("task", name), zap.Error(err))
	}
}

// runDispatch delivers every pending notification. A failure on one
// notification is logged and leaves it unsent for the next tick; the rest
// of the batch still processes (at-least-once, not exactly-once).
func (scheduler *Scheduler) runDispatch(ctx context.Context) error {
	pending, err := scheduler.notifications.ListPending()
	if err != nil {
		return fmt.Errorf("list pending notifications: %w", err)
	}

	delivered := 0
	for _, item := range pending {
		if err := scheduler.deliver(ctx, item.Notification, item.OwnerNotificationEnabled); err != nil {
			scheduler.logger.Warn("notification delivery failed",
				zap.Uint("notification_id", item.Notification.ID),
				zap.Uint("user_id", item.Notification.UserID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}

	if len(pending) > 0 {
		scheduler.logger.Info("dispatch tick finished",
			zap.Int("pending", len(pending)),
			zap.Int("delivered", delivered),
		)
	}
	return nil
}

// deliver publishes the notification on every declared channel the sink
// supports, then marks it sent. Owners with notifications disabled get a
// silent mark-sent so the row stops showing up as pending.
func (scheduler *Scheduler) deliver(ctx context.Context, notification models.Notification, ownerEnabled bool) error {
	if !ownerEnabled {
		return scheduler.notifications.MarkSent(notification.ID)
	}

	published := make(map[string]bool, len(notification.Channels))
	for _, channel := range notification.Channels {
		if published[channel] || !scheduler.sink.Supports(channel) {
			continue
		}
		if err := scheduler.sink.Publish(ctx, notification.UserID, "notification", notificationEventPayload(notification)); err != nil {
			return fmt.Errorf("publish on %s: %w", channel, err)
		}
		published[channel] = true
	}

	return scheduler.notifications.MarkSent(notification.ID)
}

func (scheduler *Scheduler) runCleanup(_ context.Context) error {
	removed, err := scheduler.notifications.CleanupExpired()
	if err != nil {
		return fmt.Errorf("cleanup expired notifications: %w", err)
	}
	if removed > 0 {
		scheduler.logger.Info("expired notifications removed", zap.Int64("count", removed))
	}
	return nil
}

// runReminders creates and delivers a reminder for every opted-in user who
// has not checked in today. Per-user failures are logged and never abort
// the scan. The has-reminder-today guard keeps the task safe to rerun
// after a restart.
func (scheduler *Scheduler) runReminders(ctx context.Context) error {
	users, err := scheduler.users.ListReminderUsers()
	if err != nil {
		return fmt.Errorf("list reminder users: %w", err)
	}

	created := 0
	for _, user := range users {
		sent, err := scheduler.remindUser(ctx, user.ID)
		if err != nil {
			scheduler.logger.Warn("reminder failed",
				zap.Uint("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}
		if sent {
			created++
		}
	}

	if created > 0 {
		scheduler.logger.Info("check-in reminders sent", zap.Int("count", created))
	}
	return nil
}

func (scheduler *Scheduler) remindUser(ctx context.Context, userID uint) (bool, error) {
	checkedIn, err := scheduler.checkIns.HasCheckedInToday(userID)
	if err != nil {
		return false, fmt.Errorf("check today's status: %w", err)
	}
	if checkedIn {
		return false, nil
	}

	alreadyReminded, err := scheduler.notifications.HasReminderToday(userID)
	if err != nil {
		return false, fmt.Errorf("check existing reminder: %w", err)
	}
	if alreadyReminded {
		return false, nil
	}

	notification, err := scheduler.notifications.CreateReminder(userID)
	if err != nil {
		return false, fmt.Errorf("create reminder: %w", err)
	}

	if err := scheduler.deliver(ctx, notification, true); err != nil {
		// The reminder exists and stays visible in-app; only the realtime
		// push failed.
		return true, fmt.Errorf("deliver reminder: %w", err)
	}
	return true, nil
}

func notificationEventPayload(notification models.Notification) map[string]any {
	return map[string]any{
		"id":        notification.ID,
		"title":     notification.Title,
		"message":   notification.Message,
		"type":      notification.Type,
		"priority":  notification.Priority,
		"category":  notification.Category,
		"createdAt": notification.CreatedAt,
	}
}

// NextDailyFireTime returns the next occurrence of the HH:MM wall-clock
// time in the given location, strictly after now. A malformed fireAt falls
// back to midnight.
func NextDailyFireTime(now time.Time, fireAt string, location *time.Location) time.Time {
	hour, minute := parseFireTime(fireAt)
	localNow := now.In(location)
	candidate := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), hour, minute, 0, 0, location)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func parseFireTime(fireAt string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(fireAt), ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0
	}
	return hour, minute
}
