package chore

import (
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

// UnassignedColor is shown for instances without a known assignee.
const UnassignedColor = "#9CA3AF"

type completionKey struct {
	choreID string
	date    recurrence.Date
}

// Generate expands chores into concrete instances dated within [start, end],
// both inclusive. Instances are returned per chore in input order, dates
// ascending. Recurring chores are walked from their anchor date at most
// recurrence.MaxSteps times.
func Generate(chores []model.Chore, members []model.TeamMember, completions []model.ChoreCompletion, start, end recurrence.Date) []model.ChoreInstance {
	byID := make(map[string]model.TeamMember, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	done := make(map[completionKey]bool, len(completions))
	for _, c := range completions {
		done[completionKey{c.ChoreID, c.InstanceDate}] = true
	}

	var instances []model.ChoreInstance
	for _, c := range chores {
		for _, d := range recurrence.Expand(c.Recurrence, c.Date, start, end) {
			inst := newInstance(c, d, byID)
			inst.IsCompleted = done[completionKey{c.ID, d}]
			instances = append(instances, inst)
		}
	}
	return instances
}

// InstanceID returns the identifier of the occurrence of c on d.
func InstanceID(c model.Chore, d recurrence.Date) string {
	if !c.IsRecurring() {
		return c.ID
	}
	return c.ID + "-" + d.String()
}

func newInstance(c model.Chore, d recurrence.Date, members map[string]model.TeamMember) model.ChoreInstance {
	inst := model.ChoreInstance{
		ID:               InstanceID(c, d),
		ChoreID:          c.ID,
		Title:            c.Title,
		Description:      c.Description,
		Date:             d,
		StartTime:        c.StartTime,
		EndTime:          c.EndTime,
		AllDay:           c.AllDay,
		Priority:         c.Priority,
		CategoryID:       c.CategoryID,
		EstimatedMinutes: c.EstimatedMinutes,
		IsRecurring:      c.IsRecurring(),
		Color:            UnassignedColor,
	}

	if c.AssigneeID != nil {
		if m, ok := members[*c.AssigneeID]; ok {
			id := m.ID
			inst.AssigneeID = &id
			inst.AssigneeName = m.Name
			inst.Color = m.Color
		}
	}
	return inst
}
