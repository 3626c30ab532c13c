// Package reminder announces chore instances that fall due today.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/chorecal/internal/chore"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

type Store interface {
	ListChores() ([]model.Chore, error)
	ListMembers() ([]model.TeamMember, error)
	ListCompletionsBetween(start, end recurrence.Date) ([]model.ChoreCompletion, error)
}

// Notifier receives each due instance once per day.
type Notifier interface {
	InstanceDue(inst model.ChoreInstance)
}

// Scheduler periodically checks for instances due today that nobody has
// completed yet.
type Scheduler struct {
	mu       sync.RWMutex
	store    Store
	notifier Notifier
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger

	day  recurrence.Date
	sent map[string]bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(store Store, notifier Notifier, interval time.Duration, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		interval: interval,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
		sent:     make(map[string]bool),
	}
}

// Start begins the scheduler loop. The first check runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.tick()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// tick notifies about every open instance due today that has not been
// announced since the day began.
func (s *Scheduler) tick() {
	today := recurrence.DateOf(s.now().In(s.loc))

	chores, err := s.store.ListChores()
	if err != nil {
		s.logger.Error("list chores", "error", err)
		return
	}
	members, err := s.store.ListMembers()
	if err != nil {
		s.logger.Error("list members", "error", err)
		return
	}
	completions, err := s.store.ListCompletionsBetween(today, today)
	if err != nil {
		s.logger.Error("list completions", "error", err)
		return
	}

	instances := chore.Generate(chores, members, completions, today, today)
	due := chore.DueOn(instances, today)

	s.mu.Lock()
	if !s.day.Equal(today) {
		s.day = today
		clear(s.sent)
	}
	var fresh []model.ChoreInstance
	for _, inst := range due {
		if s.sent[inst.ID] {
			continue
		}
		s.sent[inst.ID] = true
		fresh = append(fresh, inst)
	}
	s.mu.Unlock()

	for _, inst := range fresh {
		s.notifier.InstanceDue(inst)
	}
	if len(fresh) > 0 {
		s.logger.Info("announced due chores", "date", today.String(), "count", len(fresh))
	}
}
