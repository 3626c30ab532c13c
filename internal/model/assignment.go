package model

type RotationType string

const (
	RotationRoundRobin  RotationType = "round-robin"
	RotationLeastLoaded RotationType = "least-loaded"
	RotationRandom      RotationType = "random"
)

func (r RotationType) Valid() bool {
	return r == RotationRoundRobin || r == RotationLeastLoaded || r == RotationRandom
}

// AssignOptions controls automatic selection of the next assignee for a chore.
type AssignOptions struct {
	Enabled             bool         `json:"enabled"`
	RotationType        RotationType `json:"rotation_type"`
	RespectSkills       bool         `json:"respect_skills"`
	RespectAvailability bool         `json:"respect_availability"`
	RespectWorkingHours bool         `json:"respect_working_hours"`
	BalanceWorkload     bool         `json:"balance_workload"`
}

// AssignmentStats is the per-member load used for suggestions.
type AssignmentStats struct {
	MemberID     string `json:"member_id"`
	MemberName   string `json:"member_name"`
	TotalChores  int    `json:"total_chores"`
	RecentChores int    `json:"recent_chores"`
}

type WorkloadBalance struct {
	IsBalanced      bool              `json:"is_balanced"`
	Recommendations []string          `json:"recommendations"`
	Stats           []AssignmentStats `json:"stats"`
}

type AssignmentPreview struct {
	AssigneeID   *string `json:"assignee_id"`
	AssigneeName string  `json:"assignee_name"`
	Reason       string  `json:"reason"`
}
