package model

import (
	"time"

	"github.com/dukerupert/chorecal/internal/recurrence"
)

// WorkingHours limits when a member can take timed chores. Start and End are
// "HH:MM"; Days uses time.Weekday numbering (0 = Sunday).
type WorkingHours struct {
	Start string         `json:"start"`
	End   string         `json:"end"`
	Days  []time.Weekday `json:"days"`
}

type TeamMember struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	Color                 string        `json:"color"`
	AvatarURL             string        `json:"avatar_url"`
	Email                 string        `json:"email"`
	Skills                []string      `json:"skills"`
	WorkingHours          *WorkingHours `json:"working_hours"`
	WeeklyCapacityMinutes *int          `json:"weekly_capacity_minutes"`
	Points                int           `json:"points"`
	Badges                []string      `json:"badges"`
	HasPIN                bool          `json:"has_pin"`
	SortOrder             int           `json:"sort_order"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// HasBadge reports whether id is among the member's earned badges.
func (m TeamMember) HasBadge(id string) bool {
	for _, b := range m.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// MemberAvailability marks an inclusive date range during which a member is away.
type MemberAvailability struct {
	ID        string          `json:"id"`
	MemberID  string          `json:"member_id"`
	StartDate recurrence.Date `json:"start_date"`
	EndDate   recurrence.Date `json:"end_date"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
}

// Covers reports whether the unavailability range includes d.
func (a MemberAvailability) Covers(d recurrence.Date) bool {
	return d.Between(a.StartDate, a.EndDate)
}
