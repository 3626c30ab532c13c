package gamification

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/chorecal/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Special badge ids with conditions beyond a simple threshold.
const (
	BadgeEarlyBird      = "early-bird"
	BadgeNightOwl       = "night-owl"
	BadgeTeamPlayer     = "team-player"
	BadgeWeekendWarrior = "weekend-warrior"
	BadgePerfectionist  = "perfectionist"
)

type catalogFile struct {
	PriorityPoints map[model.Priority]int `yaml:"priority_points"`
	StreakBonus    struct {
		PerDay  int `yaml:"per_day"`
		MaxDays int `yaml:"max_days"`
	} `yaml:"streak_bonus"`
	Special struct {
		EarlyBirdBeforeHour int `yaml:"early_bird_before_hour"`
		NightOwlFromHour    int `yaml:"night_owl_from_hour"`
	} `yaml:"special"`
	Badges []model.Badge `yaml:"badges"`
}

// Scorer holds the point table and badge catalog. It is immutable once built.
type Scorer struct {
	priorityPoints map[model.Priority]int
	streakPerDay   int
	streakMaxDays  int
	earlyBirdHour  int
	nightOwlHour   int
	badges         []model.Badge
}

var defaultScorer = sync.OnceValues(func() (*Scorer, error) {
	return Parse(defaultCatalog)
})

// Default returns the scorer built from the embedded catalog.
func Default() *Scorer {
	s, err := defaultScorer()
	if err != nil {
		panic(fmt.Sprintf("embedded badge catalog: %v", err))
	}
	return s
}

// Load reads a catalog override from path, or returns Default when path is empty.
func Load(path string) (*Scorer, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read badge catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a scorer from catalog YAML.
func Parse(data []byte) (*Scorer, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse badge catalog: %w", err)
	}

	for _, p := range []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh} {
		if _, ok := f.PriorityPoints[p]; !ok {
			return nil, fmt.Errorf("badge catalog: missing points for priority %q", p)
		}
	}

	seen := make(map[string]bool, len(f.Badges))
	for _, b := range f.Badges {
		if b.ID == "" {
			return nil, fmt.Errorf("badge catalog: badge with empty id")
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("badge catalog: duplicate badge %q", b.ID)
		}
		seen[b.ID] = true

		switch b.Type {
		case model.BadgeCompletion, model.BadgeStreak, model.BadgePoints, model.BadgeSpecial:
		default:
			return nil, fmt.Errorf("badge catalog: badge %q has unknown type %q", b.ID, b.Type)
		}
	}

	points := make(map[model.Priority]int, len(f.PriorityPoints))
	for k, v := range f.PriorityPoints {
		points[k] = v
	}

	return &Scorer{
		priorityPoints: points,
		streakPerDay:   f.StreakBonus.PerDay,
		streakMaxDays:  f.StreakBonus.MaxDays,
		earlyBirdHour:  f.Special.EarlyBirdBeforeHour,
		nightOwlHour:   f.Special.NightOwlFromHour,
		badges:         slices.Clone(f.Badges),
	}, nil
}

// Points returns the award for completing a chore of the given priority while
// holding currentStreak consecutive days.
func (s *Scorer) Points(p model.Priority, currentStreak int) int {
	days := min(max(currentStreak, 0), s.streakMaxDays)
	return s.priorityPoints[p] + days*s.streakPerDay
}

// Badges returns a copy of the catalog.
func (s *Scorer) Badges() []model.Badge {
	return slices.Clone(s.badges)
}

func (s *Scorer) Badge(id string) (model.Badge, bool) {
	for _, b := range s.badges {
		if b.ID == id {
			return b, true
		}
	}
	return model.Badge{}, false
}

func (s *Scorer) IsEarlyBird(t time.Time) bool { return t.Hour() < s.earlyBirdHour }
func (s *Scorer) IsNightOwl(t time.Time) bool  { return t.Hour() >= s.nightOwlHour }

// Special holds the facts that special badges are judged on.
type Special struct {
	EarlyBird          bool
	NightOwl           bool
	TeamPlayer         bool
	WeekendCompletions int
	PerfectWeek        bool
}

// Progress is a member's standing after a completion.
type Progress struct {
	TotalCompleted int
	CurrentStreak  int
	LongestStreak  int
	Points         int
	Special        Special
}

// Evaluate returns the catalog badges earned by p that are not already in
// current, in catalog order. It never returns a badge from current.
func (s *Scorer) Evaluate(p Progress, current []string) []string {
	var earned []string
	for _, b := range s.badges {
		if slices.Contains(current, b.ID) {
			continue
		}
		if s.earned(b, p) {
			earned = append(earned, b.ID)
		}
	}
	return earned
}

func (s *Scorer) earned(b model.Badge, p Progress) bool {
	switch b.Type {
	case model.BadgeCompletion:
		return p.TotalCompleted >= b.Threshold
	case model.BadgeStreak:
		return p.LongestStreak >= b.Threshold || p.CurrentStreak >= b.Threshold
	case model.BadgePoints:
		return p.Points >= b.Threshold
	case model.BadgeSpecial:
		switch b.ID {
		case BadgeEarlyBird:
			return p.Special.EarlyBird
		case BadgeNightOwl:
			return p.Special.NightOwl
		case BadgeTeamPlayer:
			return p.Special.TeamPlayer
		case BadgeWeekendWarrior:
			return p.Special.WeekendCompletions >= b.Threshold
		case BadgePerfectionist:
			return p.Special.PerfectWeek
		}
	}
	return false
}
