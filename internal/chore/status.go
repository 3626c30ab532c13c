package chore

import (
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

type InstanceWithStatus struct {
	model.ChoreInstance
	Status Status `json:"status"`
}

// StatusOf reports whether an instance is done, due, or past due relative to today.
func StatusOf(inst model.ChoreInstance, today recurrence.Date) Status {
	if inst.IsCompleted {
		return StatusCompleted
	}
	if inst.Date.Before(today) {
		return StatusOverdue
	}
	return StatusPending
}

func WithStatus(instances []model.ChoreInstance, today recurrence.Date) []InstanceWithStatus {
	out := make([]InstanceWithStatus, len(instances))
	for i, inst := range instances {
		out[i] = InstanceWithStatus{ChoreInstance: inst, Status: StatusOf(inst, today)}
	}
	return out
}

// DueOn returns the instances dated d that are not yet completed.
func DueOn(instances []model.ChoreInstance, d recurrence.Date) []model.ChoreInstance {
	var due []model.ChoreInstance
	for _, inst := range instances {
		if inst.Date.Equal(d) && !inst.IsCompleted {
			due = append(due, inst)
		}
	}
	return due
}

// Upcoming returns chores anchored today or tomorrow.
func Upcoming(chores []model.Chore, today recurrence.Date) []model.Chore {
	tomorrow := today.AddDays(1)
	var out []model.Chore
	for _, c := range chores {
		if c.Date.Equal(today) || c.Date.Equal(tomorrow) {
			out = append(out, c)
		}
	}
	return out
}

// CalendarWindow returns the default range of dates a calendar view loads:
// from the first day of the month monthsBefore months back, through the last
// day of the month monthsAfter-1 months ahead.
func CalendarWindow(today recurrence.Date, monthsBefore, monthsAfter int) (start, end recurrence.Date) {
	first := today.StartOfMonth()
	start = first.AddMonths(-monthsBefore)
	end = first.AddMonths(monthsAfter).AddDays(-1)
	return start, end
}
