package completion

import (
	"slices"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

// IsCompleted reports whether any completion records choreID done on date.
func IsCompleted(completions []model.ChoreCompletion, choreID string, date recurrence.Date) bool {
	for _, c := range completions {
		if c.ChoreID == choreID && c.InstanceDate.Equal(date) {
			return true
		}
	}
	return false
}

// Stats computes memberID's completion total and streaks as of today.
// Streaks are measured over distinct instance dates, so several completions
// on one day count once.
func Stats(completions []model.ChoreCompletion, memberID string, today recurrence.Date) model.MemberStats {
	var stats model.MemberStats
	var dates []recurrence.Date
	for _, c := range completions {
		if c.CompletedBy != memberID {
			continue
		}
		stats.TotalCompleted++
		dates = append(dates, c.InstanceDate)
	}

	slices.SortFunc(dates, recurrence.Date.Compare)
	dates = slices.CompactFunc(dates, recurrence.Date.Equal)

	stats.CurrentStreak, stats.LongestStreak = Streaks(dates, today)
	return stats
}

// Streaks returns the current and longest runs of consecutive days in dates,
// which must be sorted ascending without duplicates. The current streak is
// zero unless the latest date is no more than one day before today.
func Streaks(dates []recurrence.Date, today recurrence.Date) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].DaysUntil(dates[i]) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	last := dates[len(dates)-1]
	if last.DaysUntil(today) > 1 {
		return 0, longest
	}

	current = 1
	for i := len(dates) - 1; i > 0; i-- {
		if dates[i-1].DaysUntil(dates[i]) != 1 {
			break
		}
		current++
	}
	return current, longest
}
