// Package dashboard summarizes household progress for the overview screen.
package dashboard

import (
	"math"
	"slices"

	"github.com/dukerupert/chorecal/internal/assign"
	"github.com/dukerupert/chorecal/internal/completion"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

// Look-back windows for the "this week" and "this month" counters.
const (
	WeekDays  = 7
	MonthDays = 30
)

type Summary struct {
	TotalChores        int `json:"total_chores"`
	CompletedToday     int `json:"completed_today"`
	CompletedThisWeek  int `json:"completed_this_week"`
	CompletedThisMonth int `json:"completed_this_month"`
	PendingToday       int `json:"pending_today"`
	Overdue            int `json:"overdue"`
}

type MemberSummary struct {
	MemberID           string   `json:"member_id"`
	MemberName         string   `json:"member_name"`
	MemberColor        string   `json:"member_color"`
	TotalCompleted     int      `json:"total_completed"`
	CompletedThisWeek  int      `json:"completed_this_week"`
	CompletedThisMonth int      `json:"completed_this_month"`
	CurrentStreak      int      `json:"current_streak"`
	LongestStreak      int      `json:"longest_streak"`
	TotalAssigned      int      `json:"total_assigned"`
	CompletionRate     int      `json:"completion_rate"`
	Points             int      `json:"points"`
	Badges             []string `json:"badges"`
	WorkloadMinutes    float64  `json:"workload_minutes"`
	CapacityMinutes    int      `json:"capacity_minutes"`
}

type Dashboard struct {
	Summary Summary         `json:"summary"`
	Members []MemberSummary `json:"members"`
}

// Build computes the dashboard as of today. Week and month counters include
// completions whose instance date is on or after today minus the window.
func Build(chores []model.Chore, members []model.TeamMember, completions []model.ChoreCompletion, today recurrence.Date) Dashboard {
	return Dashboard{
		Summary: Summarize(chores, completions, today),
		Members: Members(chores, members, completions, today),
	}
}

// Summarize counts completions and outstanding chores. Pending counts chores
// anchored today without a completion for today; overdue counts one-off
// chores dated before today that were never completed.
func Summarize(chores []model.Chore, completions []model.ChoreCompletion, today recurrence.Date) Summary {
	weekAgo := today.AddDays(-WeekDays)
	monthAgo := today.AddDays(-MonthDays)

	s := Summary{TotalChores: len(chores)}
	for _, c := range completions {
		if c.InstanceDate.Equal(today) {
			s.CompletedToday++
		}
		if !c.InstanceDate.Before(weekAgo) {
			s.CompletedThisWeek++
		}
		if !c.InstanceDate.Before(monthAgo) {
			s.CompletedThisMonth++
		}
	}

	for _, c := range chores {
		if c.Date.Equal(today) && !completion.IsCompleted(completions, c.ID, today) {
			s.PendingToday++
		}
		if !c.IsRecurring() && c.Date.Before(today) && !completion.IsCompleted(completions, c.ID, c.Date) {
			s.Overdue++
		}
	}
	return s
}

// Members returns one summary per member, most completions first.
func Members(chores []model.Chore, members []model.TeamMember, completions []model.ChoreCompletion, today recurrence.Date) []MemberSummary {
	weekAgo := today.AddDays(-WeekDays)
	monthAgo := today.AddDays(-MonthDays)
	workload := assign.WeeklyWorkload(chores, today)

	out := make([]MemberSummary, 0, len(members))
	for _, m := range members {
		stats := completion.Stats(completions, m.ID, today)
		ms := MemberSummary{
			MemberID:        m.ID,
			MemberName:      m.Name,
			MemberColor:     m.Color,
			TotalCompleted:  stats.TotalCompleted,
			CurrentStreak:   stats.CurrentStreak,
			LongestStreak:   stats.LongestStreak,
			Points:          m.Points,
			Badges:          m.Badges,
			WorkloadMinutes: workload[m.ID],
			CapacityMinutes: assign.Capacity(m),
		}
		if ms.Badges == nil {
			ms.Badges = []string{}
		}

		for _, c := range completions {
			if c.CompletedBy != m.ID {
				continue
			}
			if !c.InstanceDate.Before(weekAgo) {
				ms.CompletedThisWeek++
			}
			if !c.InstanceDate.Before(monthAgo) {
				ms.CompletedThisMonth++
			}
		}

		for _, c := range chores {
			if c.AssigneeID != nil && *c.AssigneeID == m.ID {
				ms.TotalAssigned++
			}
		}
		ms.CompletionRate = rate(ms.TotalCompleted, ms.TotalAssigned)

		out = append(out, ms)
	}

	slices.SortStableFunc(out, func(a, b MemberSummary) int {
		return b.TotalCompleted - a.TotalCompleted
	})
	return out
}

// rate is completed as a rounded percentage of assigned. It can exceed 100
// because recurring chores are completed many times.
func rate(completed, assigned int) int {
	if assigned == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(assigned) * 100))
}
