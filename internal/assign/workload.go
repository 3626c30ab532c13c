package assign

import (
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

const (
	// DefaultEstimateMinutes is used for chores without an estimate.
	DefaultEstimateMinutes = 30
	// DefaultCapacityMinutes is the weekly capacity of members who set none.
	DefaultCapacityMinutes = 480
)

// WeeklyWorkload estimates minutes of assigned work per member for the
// Sunday-to-Saturday week containing today. One-off chores count when their
// date falls in the week; recurring chores add their per-week rate.
func WeeklyWorkload(chores []model.Chore, today recurrence.Date) map[string]float64 {
	start := today.StartOfWeek()
	end := start.AddDays(6)

	load := make(map[string]float64)
	for _, c := range chores {
		if c.AssigneeID == nil {
			continue
		}
		minutes := float64(c.Estimate(DefaultEstimateMinutes))
		if c.IsRecurring() {
			load[*c.AssigneeID] += minutes * c.Recurrence.PerWeek()
		} else if c.Date.Between(start, end) {
			load[*c.AssigneeID] += minutes
		}
	}
	return load
}

// Capacity returns a member's weekly capacity in minutes.
func Capacity(m model.TeamMember) int {
	if m.WeeklyCapacityMinutes == nil || *m.WeeklyCapacityMinutes <= 0 {
		return DefaultCapacityMinutes
	}
	return *m.WeeklyCapacityMinutes
}
