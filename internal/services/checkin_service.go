package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/sileme/sileme/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyCheckedIn is returned for a duplicate same-day check-in,
	// whether caught by the pre-check or by the storage unique index.
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrCheckInNotFound  = errors.New("check-in not found")
	// ErrCheckInNotToday rejects edits to past check-ins; only today's
	// record is editable.
	ErrCheckInNotToday = errors.New("only today's check-in can be modified")
)

const (
	DefaultNoteMaxLength    = 200
	DefaultTagMaxCount      = 10
	DefaultTagMaxLength     = 20
	DefaultEarlyCheckInHour = 6
)

type CheckInRepository interface {
	ListByUser(userID uint, query models.CheckInListQuery) ([]models.CheckIn, error)
	CountByUser(userID uint, query models.CheckInListQuery) (int64, error)
	ListDaysByUser(userID uint) ([]time.Time, error)
	ListCreatedAtByUser(userID uint) ([]time.Time, error)
	FindByIDForUser(userID uint, checkInID uint) (models.CheckIn, bool, error)
	FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.CheckIn, bool, error)
	ExistsByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (bool, error)
	Create(entry *models.CheckIn) error
	Save(entry *models.CheckIn) error
	DeleteByIDForUser(userID uint, checkInID uint) (bool, error)
}

type CheckInUserWriter interface {
	UpdateStats(userID uint, stats models.UserStats) error
}

type CheckInNotifier interface {
	CreateSystemNotification(userID uint, title string, message string, category string, data map[string]string) (models.Notification, error)
}

type CheckInServiceConfig struct {
	Location         *time.Location
	Clock            func() time.Time
	NoteMaxLength    int
	TagMaxCount      int
	TagMaxLength     int
	EarlyCheckInHour int
}

func (config *CheckInServiceConfig) applyDefaults() {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.NoteMaxLength <= 0 {
		config.NoteMaxLength = DefaultNoteMaxLength
	}
	if config.TagMaxCount <= 0 {
		config.TagMaxCount = DefaultTagMaxCount
	}
	if config.TagMaxLength <= 0 {
		config.TagMaxLength = DefaultTagMaxLength
	}
	if config.EarlyCheckInHour <= 0 {
		config.EarlyCheckInHour = DefaultEarlyCheckInHour
	}
}

// CheckInService enforces the one-check-in-per-day invariant and owns the
// user's streak snapshot: it is the only writer of user stats.
type CheckInService struct {
	checkIns      CheckInRepository
	users         CheckInUserWriter
	notifications CheckInNotifier
	sink          DeliverySink
	config        CheckInServiceConfig
	logger        *zap.Logger
}

func NewCheckInService(
	checkIns CheckInRepository,
	users CheckInUserWriter,
	notifications CheckInNotifier,
	sink DeliverySink,
	config CheckInServiceConfig,
	logger *zap.Logger,
) *CheckInService {
	config.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInService{
		checkIns:      checkIns,
		users:         users,
		notifications: notifications,
		sink:          sink,
		config:        config,
		logger:        logger,
	}
}

type CheckInInput struct {
	Mood     string
	Note     string
	Location *models.GeoPoint
	Weather  *models.WeatherSnapshot
	Tags     []string
	IsPublic bool
}

type CheckInUpdateInput struct {
	Mood     *string
	Note     *string
	Tags     *[]string
	IsPublic *bool
}

// CheckInCreated is the payload published on the owner's channel after a
// successful check-in.
type CheckInCreated struct {
	CheckIn models.CheckIn   `json:"checkIn"`
	Stats   models.UserStats `json:"stats"`
}

func (service *CheckInService) HasCheckedInToday(userID uint) (bool, error) {
	dayStart, dayEnd := DayRange(service.config.Clock(), service.config.Location)
	return service.checkIns.ExistsByUserAndDayRange(userID, dayStart, dayEnd)
}

// TodayStatus returns whether the user checked in today and, if so, the
// record itself.
func (service *CheckInService) TodayStatus(userID uint) (bool, *models.CheckIn, error) {
	dayStart, dayEnd := DayRange(service.config.Clock(), service.config.Location)
	entry, found, err := service.checkIns.FindByUserAndDayRange(userID, dayStart, dayEnd)
	if err != nil {
		return false, nil, err
	}
	if !found {
		return false, nil, nil
	}
	return true, &entry, nil
}

// CreateCheckIn records today's check-in. The existence pre-check is an
// optimization only; the storage unique index on (user, day) decides races,
// and its violation maps to the same ErrAlreadyCheckedIn the pre-check
// yields. On success the streak snapshot is recomputed over the full
// history, persisted, and a checkin_success event plus a companion
// notification are emitted.
func (service *CheckInService) CreateCheckIn(ctx context.Context, userID uint, input CheckInInput) (models.CheckIn, models.UserStats, error) {
	if err := service.validateCheckInInput(input); err != nil {
		return models.CheckIn{}, models.UserStats{}, err
	}

	now := service.config.Clock()
	dayStart, dayEnd := DayRange(now, service.config.Location)

	alreadyCheckedIn, err := service.checkIns.ExistsByUserAndDayRange(userID, dayStart, dayEnd)
	if err != nil {
		return models.CheckIn{}, models.UserStats{}, fmt.Errorf("check today's record: %w", err)
	}
	if alreadyCheckedIn {
		return models.CheckIn{}, models.UserStats{}, ErrAlreadyCheckedIn
	}

	entry := models.CheckIn{
		UserID:   userID,
		Date:     dayStart,
		Mood:     input.Mood,
		Note:     input.Note,
		Tags:     input.Tags,
		IsPublic: input.IsPublic,
	}
	if entry.Mood == "" {
		entry.Mood = models.MoodNormal
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	if input.Location != nil {
		entry.Location = *input.Location
	}
	if input.Weather != nil {
		entry.Weather = *input.Weather
	}

	if err := service.checkIns.Create(&entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.CheckIn{}, models.UserStats{}, ErrAlreadyCheckedIn
		}
		return models.CheckIn{}, models.UserStats{}, fmt.Errorf("create check-in: %w", err)
	}

	stats, err := service.refreshUserStats(userID)
	if err != nil {
		return models.CheckIn{}, models.UserStats{}, err
	}

	service.emitCheckInSuccess(ctx, userID, entry, stats)

	return entry, stats, nil
}

// UpdateCheckIn edits today's record. Past check-ins are immutable by
// policy, not by accident.
func (service *CheckInService) UpdateCheckIn(userID uint, checkInID uint, input CheckInUpdateInput) (models.CheckIn, error) {
	if err := service.validateUpdateInput(input); err != nil {
		return models.CheckIn{}, err
	}

	entry, found, err := service.checkIns.FindByIDForUser(userID, checkInID)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("load check-in: %w", err)
	}
	if !found {
		return models.CheckIn{}, ErrCheckInNotFound
	}

	today := DateAtLocation(service.config.Clock(), service.config.Location)
	if !SameDay(entry.Date, today, service.config.Location) {
		return models.CheckIn{}, ErrCheckInNotToday
	}

	if input.Mood != nil {
		entry.Mood = *input.Mood
	}
	if input.Note != nil {
		entry.Note = *input.Note
	}
	if input.Tags != nil {
		entry.Tags = *input.Tags
	}
	if input.IsPublic != nil {
		entry.IsPublic = *input.IsPublic
	}

	if err := service.checkIns.Save(&entry); err != nil {
		return models.CheckIn{}, fmt.Errorf("save check-in: %w", err)
	}
	return entry, nil
}

// DeleteCheckIn removes a record the user owns and recomputes the streak
// snapshot exactly as a create does.
func (service *CheckInService) DeleteCheckIn(userID uint, checkInID uint) (models.UserStats, error) {
	deleted, err := service.checkIns.DeleteByIDForUser(userID, checkInID)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("delete check-in: %w", err)
	}
	if !deleted {
		return models.UserStats{}, ErrCheckInNotFound
	}
	return service.refreshUserStats(userID)
}

func (service *CheckInService) GetCheckIn(userID uint, checkInID uint) (models.CheckIn, error) {
	entry, found, err := service.checkIns.FindByIDForUser(userID, checkInID)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("load check-in: %w", err)
	}
	if !found {
		return models.CheckIn{}, ErrCheckInNotFound
	}
	return entry, nil
}

func (service *CheckInService) ListCheckIns(userID uint, query models.CheckInListQuery) ([]models.CheckIn, int64, error) {
	entries, err := service.checkIns.ListByUser(userID, query)
	if err != nil {
		return nil, 0, err
	}
	total, err := service.checkIns.CountByUser(userID, models.CheckInListQuery{
		FromStart: query.FromStart,
		ToEnd:     query.ToEnd,
		Mood:      query.Mood,
		Tag:       query.Tag,
	})
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// GetUserStats is a pure read: it recomputes the snapshot from the current
// check-in set without persisting anything.
func (service *CheckInService) GetUserStats(userID uint) (models.UserStats, error) {
	days, err := service.checkIns.ListDaysByUser(userID)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("list check-in days: %w", err)
	}
	return ComputeCheckInStats(days, service.config.Clock(), service.config.Location), nil
}

// CountEarlyCheckIns counts check-ins created before the early-bird hour in
// the configured time zone. Feeds the early_bird achievement.
func (service *CheckInService) CountEarlyCheckIns(userID uint) (int, error) {
	createdAt, err := service.checkIns.ListCreatedAtByUser(userID)
	if err != nil {
		return 0, fmt.Errorf("list check-in creation times: %w", err)
	}

	early := 0
	for _, timestamp := range createdAt {
		if timestamp.In(service.config.Location).Hour() < service.config.EarlyCheckInHour {
			early++
		}
	}
	return early, nil
}

func (service *CheckInService) refreshUserStats(userID uint) (models.UserStats, error) {
	days, err := service.checkIns.ListDaysByUser(userID)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("list check-in days: %w", err)
	}

	stats := ComputeCheckInStats(days, service.config.Clock(), service.config.Location)
	if err := service.users.UpdateStats(userID, stats); err != nil {
		return models.UserStats{}, fmt.Errorf("persist user stats: %w", err)
	}
	return stats, nil
}

// emitCheckInSuccess is best-effort: the check-in has already committed, so
// notification or publish failures are logged and do not fail the request.
func (service *CheckInService) emitCheckInSuccess(ctx context.Context, userID uint, entry models.CheckIn, stats models.UserStats) {
	_, err := service.notifications.CreateSystemNotification(
		userID,
		"Check-in complete",
		fmt.Sprintf("Today's check-in is done. Mood: %s", entry.Mood),
		models.NotificationCategoryCheckIn,
		map[string]string{
			"checkInId": strconv.FormatUint(uint64(entry.ID), 10),
			"type":      "checkin_success",
		},
	)
	if err != nil {
		service.logger.Warn("check-in success notification failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}

	if err := service.sink.Publish(ctx, userID, "checkin_success", CheckInCreated{CheckIn: entry, Stats: stats}); err != nil {
		service.logger.Warn("check-in success publish failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
}

func (service *CheckInService) validateCheckInInput(input CheckInInput) error {
	collector := &violationCollector{}

	if input.Mood != "" && !models.IsValidMood(input.Mood) {
		collector.add("mood", "mood must be one of: very_good, happy, neutral, bad, normal")
	}
	if utf8.RuneCountInString(input.Note) > service.config.NoteMaxLength {
		collector.add("note", fmt.Sprintf("note must be at most %d characters", service.config.NoteMaxLength))
	}
	service.collectTagViolations(collector, input.Tags)

	if input.Location != nil {
		point := input.Location
		if (point.Longitude == nil) != (point.Latitude == nil) {
			collector.add("location", "longitude and latitude must be provided together")
		}
		if point.Longitude != nil && (*point.Longitude < -180 || *point.Longitude > 180) {
			collector.add("location.longitude", "longitude must be between -180 and 180")
		}
		if point.Latitude != nil && (*point.Latitude < -90 || *point.Latitude > 90) {
			collector.add("location.latitude", "latitude must be between -90 and 90")
		}
	}

	return collector.result()
}

func (service *CheckInService) validateUpdateInput(input CheckInUpdateInput) error {
	collector := &violationCollector{}

	if input.Mood != nil && !models.IsValidMood(*input.Mood) {
		collector.add("mood", "mood must be one of: very_good, happy, neutral, bad, normal")
	}
	if input.Note != nil && utf8.RuneCountInString(*input.Note) > service.config.NoteMaxLength {
		collector.add("note", fmt.Sprintf("note must be at most %d characters", service.config.NoteMaxLength))
	}
	if input.Tags != nil {
		service.collectTagViolations(collector, *input.Tags)
	}

	return collector.result()
}

func (service *CheckInService) collectTagViolations(collector *violationCollector, tags []string) {
	if len(tags) > service.config.TagMaxCount {
		collector.add("tags", fmt.Sprintf("at most %d tags are allowed", service.config.TagMaxCount))
	}
	for _, tag := range tags {
		if tag == "" {
			collector.add("tags", "tags must not be empty")
			break
		}
		if utf8.RuneCountInString(tag) > service.config.TagMaxLength {
			collector.add("tags", fmt.Sprintf("each tag must be at most %d characters", service.config.TagMaxLength))
			break
		}
	}
}
