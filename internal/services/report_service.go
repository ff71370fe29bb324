package services

import (
	"fmt"
	"math"
	"time"

	"github.com/sileme/sileme/internal/models"
)

const (
	DefaultTrendDays = 30
	MaxTrendDays     = 365
)

type ReportCheckInRepository interface {
	ListByUser(userID uint, query models.CheckInListQuery) ([]models.CheckIn, error)
	ListDaysByUser(userID uint) ([]time.Time, error)
	ListCreatedAtByUser(userID uint) ([]time.Time, error)
	CountByUserRange(userID uint, fromStart time.Time, toEnd time.Time) (int64, error)
}

type ReportUserReader interface {
	FindByID(userID uint) (models.User, error)
}

type ReportNotificationReader interface {
	Stats(userID uint) (NotificationStats, error)
}

type ReportServiceConfig struct {
	Location         *time.Location
	Clock            func() time.Time
	EarlyCheckInHour int
}

func (config *ReportServiceConfig) applyDefaults() {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.EarlyCheckInHour <= 0 {
		config.EarlyCheckInHour = DefaultEarlyCheckInHour
	}
}

// ReportService produces read-only aggregates over the user's check-in
// history: the dashboard overview, calendar-month reports, trend series and
// achievement progress. It never writes anything.
type ReportService struct {
	checkIns      ReportCheckInRepository
	users         ReportUserReader
	notifications ReportNotificationReader
	config        ReportServiceConfig
}

func NewReportService(
	checkIns ReportCheckInRepository,
	users ReportUserReader,
	notifications ReportNotificationReader,
	config ReportServiceConfig,
) *ReportService {
	config.applyDefaults()
	return &ReportService{
		checkIns:      checkIns,
		users:         users,
		notifications: notifications,
		config:        config,
	}
}

type Overview struct {
	Stats         models.UserStats  `json:"stats"`
	ThisWeek      int64             `json:"thisWeek"`
	ThisMonth     int64             `json:"thisMonth"`
	JoinedDays    int               `json:"joinedDays"`
	Notifications NotificationStats `json:"notifications"`
}

// Overview recomputes the stats snapshot from the full day set, then adds
// week-to-date and month-to-date counts. Weeks start on Monday.
func (service *ReportService) Overview(userID uint) (Overview, error) {
	now := service.config.Clock()
	location := service.config.Location

	days, err := service.checkIns.ListDaysByUser(userID)
	if err != nil {
		return Overview{}, fmt.Errorf("list check-in days: %w", err)
	}
	stats := ComputeCheckInStats(days, now, location)

	todayStart, todayEnd := DayRange(now, location)
	weekStart := todayStart.AddDate(0, 0, -mondayOffset(todayStart.Weekday()))
	thisWeek, err := service.checkIns.CountByUserRange(userID, weekStart, todayEnd)
	if err != nil {
		return Overview{}, fmt.Errorf("count this week: %w", err)
	}

	localNow := now.In(location)
	monthStart := time.Date(localNow.Year(), localNow.Month(), 1, 0, 0, 0, 0, location)
	thisMonth, err := service.checkIns.CountByUserRange(userID, monthStart, todayEnd)
	if err != nil {
		return Overview{}, fmt.Errorf("count this month: %w", err)
	}

	user, err := service.users.FindByID(userID)
	if err != nil {
		return Overview{}, fmt.Errorf("load user: %w", err)
	}

	notificationStats, err := service.notifications.Stats(userID)
	if err != nil {
		return Overview{}, fmt.Errorf("notification stats: %w", err)
	}

	return Overview{
		Stats:         stats,
		ThisWeek:      thisWeek,
		ThisMonth:     thisMonth,
		JoinedDays:    DaysBetween(user.CreatedAt, now, location) + 1,
		Notifications: notificationStats,
	}, nil
}

type MonthlyReport struct {
	Year           int            `json:"year"`
	Month          int            `json:"month"`
	DaysInMonth    int            `json:"daysInMonth"`
	CheckedDays    int            `json:"checkedDays"`
	CompletionRate float64        `json:"completionRate"`
	LongestRun     int            `json:"longestRun"`
	MoodCounts     map[string]int `json:"moodCounts"`
}

// MonthlyReport summarizes one calendar month. For the current month the
// completion rate is measured against the days elapsed so far, not the full
// month.
func (service *ReportService) MonthlyReport(userID uint, year int, month int) (MonthlyReport, error) {
	if month < 1 || month > 12 {
		return MonthlyReport{}, newValidationError(FieldViolation{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	location := service.config.Location
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, location)
	monthEnd := monthStart.AddDate(0, 1, 0)
	daysInMonth := monthEnd.AddDate(0, 0, -1).Day()

	entries, err := service.checkIns.ListByUser(userID, models.CheckInListQuery{
		FromStart: &monthStart,
		ToEnd:     &monthEnd,
	})
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("list month check-ins: %w", err)
	}

	days := make([]time.Time, 0, len(entries))
	moodCounts := make(map[string]int)
	for _, entry := range entries {
		days = append(days, entry.Date)
		moodCounts[entry.Mood]++
	}

	now := service.config.Clock().In(location)
	denominator := daysInMonth
	if now.Year() == year && int(now.Month()) == month {
		denominator = now.Day()
	}

	rate := 0.0
	if denominator > 0 {
		rate = roundToOneDecimal(float64(len(days)) / float64(denominator) * 100)
	}

	return MonthlyReport{
		Year:           year,
		Month:          month,
		DaysInMonth:    daysInMonth,
		CheckedDays:    len(days),
		CompletionRate: rate,
		LongestRun:     LongestRunWithin(days, location),
		MoodCounts:     moodCounts,
	}, nil
}

type MonthBreakdown struct {
	Month      int            `json:"month"`
	Count      int            `json:"count"`
	MoodCounts map[string]int `json:"moodCounts"`
}

type YearlyReport struct {
	Year          int              `json:"year"`
	TotalCheckIns int              `json:"totalCheckIns"`
	TotalDays     int              `json:"totalDays"`
	CheckInRate   float64          `json:"checkInRate"`
	ActiveMonths  int              `json:"activeMonths"`
	Monthly       []MonthBreakdown `json:"monthly"`
	MoodCounts    map[string]int   `json:"moodCounts"`
}

// YearlyReport rolls a whole calendar year up into one summary: the total
// against the year's day count, a per-month breakdown and the mood
// distribution. Leap years count 366 days.
func (service *ReportService) YearlyReport(userID uint, year int) (YearlyReport, error) {
	if year < 1 {
		return YearlyReport{}, newValidationError(FieldViolation{
			Field:   "year",
			Message: "year must be positive",
		})
	}

	location := service.config.Location
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, location)
	yearEnd := yearStart.AddDate(1, 0, 0)
	totalDays := int(yearEnd.Sub(yearStart).Hours() / 24)

	entries, err := service.checkIns.ListByUser(userID, models.CheckInListQuery{
		FromStart: &yearStart,
		ToEnd:     &yearEnd,
	})
	if err != nil {
		return YearlyReport{}, fmt.Errorf("list year check-ins: %w", err)
	}

	monthly := make([]MonthBreakdown, 12)
	for index := range monthly {
		monthly[index] = MonthBreakdown{Month: index + 1, MoodCounts: make(map[string]int)}
	}
	moodCounts := make(map[string]int)
	for _, entry := range entries {
		month := int(entry.Date.In(location).Month())
		monthly[month-1].Count++
		monthly[month-1].MoodCounts[entry.Mood]++
		moodCounts[entry.Mood]++
	}

	activeMonths := 0
	for _, breakdown := range monthly {
		if breakdown.Count > 0 {
			activeMonths++
		}
	}

	return YearlyReport{
		Year:          year,
		TotalCheckIns: len(entries),
		TotalDays:     totalDays,
		CheckInRate:   roundToOneDecimal(float64(len(entries)) / float64(totalDays) * 100),
		ActiveMonths:  activeMonths,
		Monthly:       monthly,
		MoodCounts:    moodCounts,
	}, nil
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Trends struct {
	Days          int            `json:"days"`
	Daily         []TrendPoint   `json:"daily"`
	MoodCounts    map[string]int `json:"moodCounts"`
	WeekdayCounts map[string]int `json:"weekdayCounts"`
}

// Trends covers the trailing window ending today, one point per calendar
// day including zero-count days.
func (service *ReportService) Trends(userID uint, windowDays int) (Trends, error) {
	if windowDays <= 0 {
		windowDays = DefaultTrendDays
	}
	if windowDays > MaxTrendDays {
		windowDays = MaxTrendDays
	}

	location := service.config.Location
	now := service.config.Clock()
	_, todayEnd := DayRange(now, location)
	windowStart := todayEnd.AddDate(0, 0, -windowDays)

	entries, err := service.checkIns.ListByUser(userID, models.CheckInListQuery{
		FromStart: &windowStart,
		ToEnd:     &todayEnd,
	})
	if err != nil {
		return Trends{}, fmt.Errorf("list window check-ins: %w", err)
	}

	countsByDay := make(map[string]int, len(entries))
	moodCounts := make(map[string]int)
	weekdayCounts := make(map[string]int)
	for _, entry := range entries {
		day := entry.Date.In(location)
		countsByDay[day.Format("2006-01-02")]++
		moodCounts[entry.Mood]++
		weekdayCounts[day.Weekday().String()]++
	}

	daily := make([]TrendPoint, 0, windowDays)
	for offset := 0; offset < windowDays; offset++ {
		day := windowStart.AddDate(0, 0, offset)
		key := day.Format("2006-01-02")
		daily = append(daily, TrendPoint{Date: key, Count: countsByDay[key]})
	}

	return Trends{
		Days:          windowDays,
		Daily:         daily,
		MoodCounts:    moodCounts,
		WeekdayCounts: weekdayCounts,
	}, nil
}

type AchievementReport struct {
	Achievements []Achievement      `json:"achievements"`
	Summary      AchievementSummary `json:"summary"`
}

func (service *ReportService) Achievements(userID uint) (AchievementReport, error) {
	now := service.config.Clock()
	location := service.config.Location

	days, err := service.checkIns.ListDaysByUser(userID)
	if err != nil {
		return AchievementReport{}, fmt.Errorf("list check-in days: %w", err)
	}
	stats := ComputeCheckInStats(days, now, location)

	createdAt, err := service.checkIns.ListCreatedAtByUser(userID)
	if err != nil {
		return AchievementReport{}, fmt.Errorf("list check-in timestamps: %w", err)
	}
	early := 0
	for _, stamp := range createdAt {
		if stamp.In(location).Hour() < service.config.EarlyCheckInHour {
			early++
		}
	}

	achievements := EvaluateAchievements(stats, early)
	return AchievementReport{
		Achievements: achievements,
		Summary:      SummarizeAchievements(achievements),
	}, nil
}

// mondayOffset maps a weekday to its distance from the preceding Monday.
func mondayOffset(weekday time.Weekday) int {
	if weekday == time.Sunday {
		return 6
	}
	return int(weekday) - 1
}

func roundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}
