package model

type BadgeType string

const (
	BadgeCompletion BadgeType = "completion"
	BadgeStreak     BadgeType = "streak"
	BadgePoints     BadgeType = "points"
	BadgeSpecial    BadgeType = "special"
)

type Badge struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Icon        string    `json:"icon" yaml:"icon"`
	Threshold   int       `json:"threshold" yaml:"threshold"`
	Type        BadgeType `json:"type" yaml:"type"`
}

// MemberStats are derived from a member's completion history.
type MemberStats struct {
	TotalCompleted int `json:"total_completed"`
	CurrentStreak  int `json:"current_streak"`
	LongestStreak  int `json:"longest_streak"`
}
