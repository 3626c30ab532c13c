// Package assign spreads chores across team members.
package assign

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

// RecentDays is how far back an anchor date counts as a recent assignment.
const RecentDays = 7

// Stats counts each member's assigned chores, overall and anchored within the
// last RecentDays days of today. Output follows member order.
func Stats(chores []model.Chore, members []model.TeamMember, today recurrence.Date) []model.AssignmentStats {
	cutoff := today.AddDays(-RecentDays)

	stats := make([]model.AssignmentStats, len(members))
	for i, m := range members {
		stats[i] = model.AssignmentStats{MemberID: m.ID, MemberName: m.Name}
		for _, c := range chores {
			if c.AssigneeID == nil || *c.AssigneeID != m.ID {
				continue
			}
			stats[i].TotalChores++
			if !c.Date.Before(cutoff) {
				stats[i].RecentChores++
			}
		}
	}
	return stats
}

// Suggest returns the member with the fewest recent assignments, then the
// fewest overall, then the earliest in member order. Nil when there are no
// members.
func Suggest(chores []model.Chore, members []model.TeamMember, today recurrence.Date) *model.TeamMember {
	if len(members) == 0 {
		return nil
	}

	stats := Stats(chores, members, today)
	best := 0
	for i := 1; i < len(stats); i++ {
		s, b := stats[i], stats[best]
		if s.RecentChores < b.RecentChores || (s.RecentChores == b.RecentChores && s.TotalChores < b.TotalChores) {
			best = i
		}
	}
	m := members[best]
	return &m
}

// AutoAssign proposes an assignee for every unassigned chore, keyed by chore
// id. Each proposal counts toward the next, so load stays even across the batch.
func AutoAssign(chores []model.Chore, members []model.TeamMember, today recurrence.Date) map[string]string {
	assignments := make(map[string]string)
	if len(members) == 0 {
		return assignments
	}

	stats := Stats(chores, members, today)
	for _, c := range chores {
		if c.AssigneeID != nil {
			continue
		}
		slices.SortStableFunc(stats, func(a, b model.AssignmentStats) int {
			return a.RecentChores - b.RecentChores
		})
		assignments[c.ID] = stats[0].MemberID
		stats[0].RecentChores++
		stats[0].TotalChores++
	}
	return assignments
}

// AnalyzeBalance reports whether recent load is spread evenly and suggests
// corrections. A spread of more than two recent chores between the busiest
// and idlest member is unbalanced.
func AnalyzeBalance(chores []model.Chore, members []model.TeamMember, today recurrence.Date) model.WorkloadBalance {
	stats := Stats(chores, members, today)
	result := model.WorkloadBalance{IsBalanced: true, Recommendations: []string{}, Stats: stats}
	if len(stats) == 0 {
		return result
	}

	lo, hi, sum := stats[0].RecentChores, stats[0].RecentChores, 0
	for _, s := range stats {
		lo = min(lo, s.RecentChores)
		hi = max(hi, s.RecentChores)
		sum += s.RecentChores
	}
	avg := float64(sum) / float64(len(stats))
	result.IsBalanced = hi-lo <= 2

	if !result.IsBalanced {
		var over, under []string
		for _, s := range stats {
			switch n := float64(s.RecentChores); {
			case n > avg+1:
				over = append(over, s.MemberName)
			case n < avg-1:
				under = append(under, s.MemberName)
			}
		}
		if len(over) > 0 {
			verb := "have"
			if len(over) == 1 {
				verb = "has"
			}
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("%s %s more chores than average", strings.Join(over, ", "), verb))
		}
		if len(under) > 0 {
			result.Recommendations = append(result.Recommendations,
				"Consider assigning more to "+strings.Join(under, ", "))
		}
	}

	unassigned := 0
	for _, c := range chores {
		if c.AssigneeID == nil {
			unassigned++
		}
	}
	if unassigned > 0 {
		noun := "chores"
		if unassigned == 1 {
			noun = "chore"
		}
		result.Recommendations = append(result.Recommendations, fmt.Sprintf("%d %s unassigned", unassigned, noun))
	}
	return result
}
