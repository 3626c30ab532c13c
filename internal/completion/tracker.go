package completion

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dukerupert/chorecal/internal/chore"
	"github.com/dukerupert/chorecal/internal/gamification"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

var (
	ErrChoreNotFound  = errors.New("chore not found")
	ErrMemberNotFound = errors.New("member not found")
)

// Store is the persistence the tracker needs. Getters return nil, nil when
// the record does not exist.
type Store interface {
	GetChore(id string) (*model.Chore, error)
	ListChores() ([]model.Chore, error)
	GetMember(id string) (*model.TeamMember, error)
	ListCompletions() ([]model.ChoreCompletion, error)
	CreateCompletion(c model.ChoreCompletion) (*model.ChoreCompletion, error)
	DeleteCompletion(id string) error
	UpdateMemberScore(memberID string, points int, badges []string) error
}

// Result describes what a completion earned.
type Result struct {
	Completion    *model.ChoreCompletion `json:"completion"`
	PointsAwarded int                    `json:"points_awarded"`
	TotalPoints   int                    `json:"total_points"`
	NewBadges     []string               `json:"new_badges"`
	Stats         model.MemberStats      `json:"stats"`
}

// Tracker records completions and awards points and badges. Awards are
// never taken back.
type Tracker struct {
	store  Store
	scorer *gamification.Scorer
	now    func() time.Time

	// serializes the read-modify-write of member scores
	mu sync.Mutex
}

func NewTracker(store Store, scorer *gamification.Scorer, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{store: store, scorer: scorer, now: now}
}

// Complete records memberID finishing the occurrence of choreID on date.
// Points and badges are judged on the member's standing with this
// completion included. Points are the priority base plus the streak that
// this completion extends, so a first high-priority completion earns 21.
func (t *Tracker) Complete(choreID string, date recurrence.Date, memberID, notes string) (*Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := t.store.GetChore(choreID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrChoreNotFound
	}

	member, err := t.store.GetMember(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	completions, err := t.store.ListCompletions()
	if err != nil {
		return nil, err
	}

	now := t.now()
	today := recurrence.DateOf(now)
	pending := model.ChoreCompletion{
		ChoreID:      choreID,
		InstanceDate: date,
		CompletedBy:  memberID,
		CompletedAt:  now,
		Notes:        notes,
	}
	after := append(slices.Clone(completions), pending)

	stats := Stats(after, memberID, today)
	awarded := t.scorer.Points(c.Priority, stats.CurrentStreak)
	total := member.Points + awarded

	perfect, err := t.perfectWeek(memberID, after, today)
	if err != nil {
		return nil, err
	}

	progress := gamification.Progress{
		TotalCompleted: stats.TotalCompleted,
		CurrentStreak:  stats.CurrentStreak,
		LongestStreak:  stats.LongestStreak,
		Points:         total,
		Special: gamification.Special{
			EarlyBird:          t.scorer.IsEarlyBird(now),
			NightOwl:           t.scorer.IsNightOwl(now),
			TeamPlayer:         c.AssigneeID == nil,
			WeekendCompletions: weekendCompletions(after, memberID, now.Location()),
			PerfectWeek:        perfect,
		},
	}
	earned := t.scorer.Evaluate(progress, member.Badges)

	saved, err := t.store.CreateCompletion(pending)
	if err != nil {
		return nil, err
	}

	badges := append(slices.Clone(member.Badges), earned...)
	if err := t.store.UpdateMemberScore(memberID, total, badges); err != nil {
		return nil, fmt.Errorf("award completion: %w", err)
	}

	return &Result{
		Completion:    saved,
		PointsAwarded: awarded,
		TotalPoints:   total,
		NewBadges:     earned,
		Stats:         stats,
	}, nil
}

// Uncomplete removes a completion. Points and badges already awarded stay.
func (t *Tracker) Uncomplete(completionID string) error {
	return t.store.DeleteCompletion(completionID)
}

func (t *Tracker) IsCompleted(choreID string, date recurrence.Date) (bool, error) {
	completions, err := t.store.ListCompletions()
	if err != nil {
		return false, err
	}
	return IsCompleted(completions, choreID, date), nil
}

// MemberStats returns memberID's stats as of the tracker's current day.
func (t *Tracker) MemberStats(memberID string) (model.MemberStats, error) {
	completions, err := t.store.ListCompletions()
	if err != nil {
		return model.MemberStats{}, err
	}
	return Stats(completions, memberID, recurrence.DateOf(t.now())), nil
}

// perfectWeek reports whether memberID has finished every occurrence of
// their assigned chores in the Sunday-to-Saturday week containing today.
func (t *Tracker) perfectWeek(memberID string, completions []model.ChoreCompletion, today recurrence.Date) (bool, error) {
	all, err := t.store.ListChores()
	if err != nil {
		return false, err
	}

	var assigned []model.Chore
	for _, c := range all {
		if c.AssigneeID != nil && *c.AssigneeID == memberID {
			assigned = append(assigned, c)
		}
	}

	start := today.StartOfWeek()
	instances := chore.Generate(assigned, nil, completions, start, start.AddDays(6))
	if len(instances) == 0 {
		return false, nil
	}
	for _, inst := range instances {
		if !inst.IsCompleted {
			return false, nil
		}
	}
	return true, nil
}

func weekendCompletions(completions []model.ChoreCompletion, memberID string, loc *time.Location) int {
	n := 0
	for _, c := range completions {
		if c.CompletedBy != memberID {
			continue
		}
		switch c.CompletedAt.In(loc).Weekday() {
		case time.Saturday, time.Sunday:
			n++
		}
	}
	return n
}
