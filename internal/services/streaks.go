package services

import (
	"sort"
	"time"

	"github.com/sileme/sileme/internal/models"
)

// ComputeCheckInStats derives the full streak snapshot from a user's
// check-in days. The input does not need to be sorted or unique: days are
// defensively deduplicated by calendar day and sorted ascending before the
// scan, so the result is identical no matter how the caller assembled the
// list. There is no incremental variant; every recompute walks the full
// history, which stays cheap because per-user history is bounded.
func ComputeCheckInStats(days []time.Time, now time.Time, location *time.Location) models.UserStats {
	uniqueDays := dedupeSortedDays(days, location)
	if len(uniqueDays) == 0 {
		return models.UserStats{}
	}

	lastDay := uniqueDays[len(uniqueDays)-1]
	stats := models.UserStats{
		TotalCheckIns: len(uniqueDays),
		LastCheckIn:   &lastDay,
	}

	// Longest: close out a running streak at every gap, once more at the end.
	longest := 0
	running := 1
	for index := 1; index < len(uniqueDays); index++ {
		if IsConsecutiveDay(uniqueDays[index-1], uniqueDays[index], location) {
			running++
			continue
		}
		if running > longest {
			longest = running
		}
		running = 1
	}
	if running > longest {
		longest = running
	}
	stats.LongestStreak = longest

	// Current: only alive if the latest day is today or yesterday.
	gapFromToday := DaysBetween(lastDay, now, location)
	if gapFromToday == 0 || gapFromToday == 1 {
		current := 1
		for index := len(uniqueDays) - 2; index >= 0; index-- {
			if !IsConsecutiveDay(uniqueDays[index], uniqueDays[index+1], location) {
				break
			}
			current++
		}
		stats.CurrentStreak = current
	}

	return stats
}

func dedupeSortedDays(days []time.Time, location *time.Location) []time.Time {
	seen := make(map[time.Time]struct{}, len(days))
	unique := make([]time.Time, 0, len(days))
	for _, day := range days {
		truncated := DateAtLocation(day, location)
		if _, exists := seen[truncated]; exists {
			continue
		}
		seen[truncated] = struct{}{}
		unique = append(unique, truncated)
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Before(unique[j])
	})
	return unique
}

// LongestRunWithin returns the longest consecutive-day run among the given
// days, for report sections that score a single month or year.
func LongestRunWithin(days []time.Time, location *time.Location) int {
	uniqueDays := dedupeSortedDays(days, location)
	if len(uniqueDays) == 0 {
		return 0
	}

	longest := 1
	running := 1
	for index := 1; index < len(uniqueDays); index++ {
		if IsConsecutiveDay(uniqueDays[index-1], uniqueDays[index], location) {
			running++
		} else {
			running = 1
		}
		if running > longest {
			longest = running
		}
	}
	return longest
}
