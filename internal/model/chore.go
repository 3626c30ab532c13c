package model

import (
	"time"

	"github.com/dukerupert/chorecal/internal/recurrence"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// Chore is a task template. Date anchors the recurrence; StartTime and
// EndTime are "HH:MM" strings.
type Chore struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Date             recurrence.Date `json:"date"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	AllDay           bool            `json:"all_day"`
	AssigneeID       *string         `json:"assignee_id"`
	Recurrence       recurrence.Freq `json:"recurrence"`
	Priority         Priority        `json:"priority"`
	CategoryID       *string         `json:"category_id"`
	EstimatedMinutes *int            `json:"estimated_minutes"`
	AutoAssign       *AssignOptions  `json:"auto_assign"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (c Chore) IsRecurring() bool {
	return c.Recurrence.Recurring()
}

// Estimate returns the estimated duration in minutes, or def when unset.
func (c Chore) Estimate(def int) int {
	if c.EstimatedMinutes == nil {
		return def
	}
	return *c.EstimatedMinutes
}

type ChoreCompletion struct {
	ID           string          `json:"id"`
	ChoreID      string          `json:"chore_id"`
	InstanceDate recurrence.Date `json:"instance_date"`
	CompletedBy  string          `json:"completed_by"`
	CompletedAt  time.Time       `json:"completed_at"`
	Notes        string          `json:"notes"`
}

// ChoreInstance is one concrete occurrence of a chore on a date.
type ChoreInstance struct {
	ID               string          `json:"id"`
	ChoreID          string          `json:"chore_id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Date             recurrence.Date `json:"date"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	AllDay           bool            `json:"all_day"`
	AssigneeID       *string         `json:"assignee_id"`
	AssigneeName     string          `json:"assignee_name"`
	Color            string          `json:"color"`
	Priority         Priority        `json:"priority"`
	CategoryID       *string         `json:"category_id"`
	EstimatedMinutes *int            `json:"estimated_minutes"`
	IsRecurring      bool            `json:"is_recurring"`
	IsCompleted      bool            `json:"is_completed"`
}
