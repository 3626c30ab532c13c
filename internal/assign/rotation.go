package assign

import (
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

// Request carries everything needed to choose the next assignee of a chore.
type Request struct {
	Chore        model.Chore
	Members      []model.TeamMember
	Completions  []model.ChoreCompletion
	Availability []model.MemberAvailability
	Chores       []model.Chore
	Categories   []model.Category
	Options      model.AssignOptions
	Today        recurrence.Date
}

// Strategy picks one member from a non-empty eligible pool.
type Strategy interface {
	Pick(req Request, eligible []model.TeamMember) model.TeamMember
	Reason() string
}

// DefaultOptions are the options a chore starts with.
func DefaultOptions() model.AssignOptions {
	return model.AssignOptions{
		Enabled:             false,
		RotationType:        model.RotationRoundRobin,
		RespectSkills:       false,
		RespectAvailability: true,
		RespectWorkingHours: false,
		BalanceWorkload:     true,
	}
}

// PreviewOptions are DefaultOptions switched on.
func PreviewOptions() model.AssignOptions {
	opts := DefaultOptions()
	opts.Enabled = true
	return opts
}

type Assigner struct {
	strategies map[model.RotationType]Strategy
}

// NewAssigner builds an assigner. rng drives the random strategy; nil uses
// the global source.
func NewAssigner(rng *rand.Rand) *Assigner {
	return &Assigner{strategies: map[model.RotationType]Strategy{
		model.RotationRoundRobin:  roundRobin{},
		model.RotationLeastLoaded: leastLoaded{},
		model.RotationRandom:      &random{rng: rng},
	}}
}

func (a *Assigner) strategy(rt model.RotationType) Strategy {
	if s, ok := a.strategies[rt]; ok {
		return s
	}
	return a.strategies[model.RotationRoundRobin]
}

// Next returns the member who should take req.Chore next, or nil when
// auto-assignment is off or nobody is eligible.
func (a *Assigner) Next(req Request) *model.TeamMember {
	if !req.Options.Enabled || len(req.Members) == 0 {
		return nil
	}

	eligible := Eligible(req)
	if len(eligible) == 0 {
		return nil
	}

	m := a.strategy(req.Options.RotationType).Pick(req, eligible)
	return &m
}

// Preview explains who Next would choose.
func (a *Assigner) Preview(req Request) model.AssignmentPreview {
	m := a.Next(req)
	if m == nil {
		return model.AssignmentPreview{Reason: "No eligible members available"}
	}
	id := m.ID
	return model.AssignmentPreview{
		AssigneeID:   &id,
		AssigneeName: m.Name,
		Reason:       a.strategy(req.Options.RotationType).Reason(),
	}
}

// Eligible narrows req.Members by the filters req.Options enables.
func Eligible(req Request) []model.TeamMember {
	pool := req.Members

	if req.Options.RespectAvailability {
		away := make(map[string]bool)
		for _, a := range req.Availability {
			if a.Covers(req.Today) {
				away[a.MemberID] = true
			}
		}
		pool = filter(pool, func(m model.TeamMember) bool { return !away[m.ID] })
	}

	if req.Options.RespectWorkingHours && req.Chore.StartTime != "" {
		weekday := req.Chore.Date.Weekday()
		at := req.Chore.StartTime
		pool = filter(pool, func(m model.TeamMember) bool {
			wh := m.WorkingHours
			if wh == nil {
				return true
			}
			if !slices.Contains(wh.Days, weekday) {
				return false
			}
			return at >= wh.Start && at <= wh.End
		})
	}

	if req.Options.RespectSkills && req.Chore.CategoryID != nil {
		if name := categoryName(req.Categories, *req.Chore.CategoryID); name != "" {
			skilled := filter(pool, func(m model.TeamMember) bool { return hasSkill(m, name) })
			if len(skilled) > 0 {
				pool = skilled
			}
		}
	}

	return pool
}

type roundRobin struct{}

func (roundRobin) Reason() string { return "Next in rotation" }

// Pick follows whoever most recently completed this chore.
func (roundRobin) Pick(req Request, eligible []model.TeamMember) model.TeamMember {
	var last *model.ChoreCompletion
	for i := range req.Completions {
		c := &req.Completions[i]
		if c.ChoreID != req.Chore.ID {
			continue
		}
		if last == nil || c.CompletedAt.After(last.CompletedAt) {
			last = c
		}
	}
	if last == nil {
		return eligible[0]
	}

	for i, m := range eligible {
		if m.ID == last.CompletedBy {
			return eligible[(i+1)%len(eligible)]
		}
	}
	return eligible[0]
}

type leastLoaded struct{}

func (leastLoaded) Reason() string { return "Lowest workload" }

// Pick chooses the lowest weekly workload, or the lowest share of capacity
// when balancing is on. Ties go to the earlier member.
func (leastLoaded) Pick(req Request, eligible []model.TeamMember) model.TeamMember {
	load := WeeklyWorkload(req.Chores, req.Today)

	best, bestScore := 0, math.Inf(1)
	for i, m := range eligible {
		score := load[m.ID]
		if req.Options.BalanceWorkload {
			score /= float64(Capacity(m))
		}
		if score < bestScore {
			best, bestScore = i, score
		}
	}
	return eligible[best]
}

type random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (*random) Reason() string { return "Randomly selected" }

func (r *random) Pick(_ Request, eligible []model.TeamMember) model.TeamMember {
	if r.rng == nil {
		return eligible[rand.IntN(len(eligible))]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return eligible[r.rng.IntN(len(eligible))]
}

func filter(members []model.TeamMember, keep func(model.TeamMember) bool) []model.TeamMember {
	var out []model.TeamMember
	for _, m := range members {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func categoryName(categories []model.Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func hasSkill(m model.TeamMember, skill string) bool {
	for _, s := range m.Skills {
		if strings.EqualFold(strings.TrimSpace(s), skill) {
			return true
		}
	}
	return false
}
