package services

import (
	"math"

	"github.com/sileme/sileme/internal/models"
)

// Achievement is derived state, evaluated on demand and never persisted.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
}

type AchievementSummary struct {
	UnlockedCount     int     `json:"unlockedCount"`
	TotalAchievements int     `json:"totalAchievements"`
	CompletionRate    float64 `json:"completionRate"`
}

type achievementRule struct {
	id          string
	name        string
	description string
	icon        string
	target      int
	metric      func(stats models.UserStats, earlyCheckIns int) int
}

// achievementCatalog is static configuration: adding an achievement is a
// new rule here, not a schema change.
var achievementCatalog = []achievementRule{
	{
		id:          "first_checkin",
		name:        "First Steps",
		description: "Complete your first check-in",
		icon:        "🎉",
		target:      1,
		metric:      func(stats models.UserStats, _ int) int { return stats.TotalCheckIns },
	},
	{
		id:          "week_warrior",
		name:        "Week Warrior",
		description: "Check in 7 days in a row",
		icon:        "🔥",
		target:      7,
		metric:      func(stats models.UserStats, _ int) int { return stats.LongestStreak },
	},
	{
		id:          "month_master",
		name:        "Month Master",
		description: "Check in 30 days in a row",
		icon:        "👑",
		target:      30,
		metric:      func(stats models.UserStats, _ int) int { return stats.LongestStreak },
	},
	{
		id:          "hundred_club",
		name:        "Hundred Club",
		description: "Check in 100 days in total",
		icon:        "💯",
		target:      100,
		metric:      func(stats models.UserStats, _ int) int { return stats.TotalCheckIns },
	},
	{
		id:          "year_veteran",
		name:        "Year Veteran",
		description: "Check in 365 days in a row",
		icon:        "🏆",
		target:      365,
		metric:      func(stats models.UserStats, _ int) int { return stats.LongestStreak },
	},
	{
		id:          "early_bird",
		name:        "Early Bird",
		description: "Check in before 06:00 ten times",
		icon:        "🌅",
		target:      10,
		metric:      func(_ models.UserStats, earlyCheckIns int) int { return earlyCheckIns },
	},
}

// EvaluateAchievements maps the streak snapshot plus the early check-in
// count onto the catalog, in catalog order.
func EvaluateAchievements(stats models.UserStats, earlyCheckIns int) []Achievement {
	achievements := make([]Achievement, 0, len(achievementCatalog))
	for _, rule := range achievementCatalog {
		metric := rule.metric(stats, earlyCheckIns)
		progress := metric
		if progress > rule.target {
			progress = rule.target
		}
		achievements = append(achievements, Achievement{
			ID:          rule.id,
			Name:        rule.name,
			Description: rule.description,
			Icon:        rule.icon,
			Unlocked:    metric >= rule.target,
			Progress:    progress,
			Target:      rule.target,
		})
	}
	return achievements
}

func SummarizeAchievements(achievements []Achievement) AchievementSummary {
	unlocked := 0
	for _, achievement := range achievements {
		if achievement.Unlocked {
			unlocked++
		}
	}

	rate := 0.0
	if len(achievements) > 0 {
		rate = math.Round(float64(unlocked)/float64(len(achievements))*1000) / 10
	}
	return AchievementSummary{
		UnlockedCount:     unlocked,
		TotalAchievements: len(achievements),
		CompletionRate:    rate,
	}
}
