package store

import (
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

// Core joins the chore and member stores into the shape the completion
// tracker and the reminder scheduler read and write through.
type Core struct {
	Chores  *ChoreStore
	Members *MemberStore
}

func (s Core) GetChore(id string) (*model.Chore, error)          { return s.Chores.GetByID(id) }
func (s Core) ListChores() ([]model.Chore, error)                { return s.Chores.List() }
func (s Core) GetMember(id string) (*model.TeamMember, error)    { return s.Members.GetByID(id) }
func (s Core) ListMembers() ([]model.TeamMember, error)          { return s.Members.List() }
func (s Core) ListCompletions() ([]model.ChoreCompletion, error) { return s.Chores.ListCompletions() }

func (s Core) ListCompletionsBetween(start, end recurrence.Date) ([]model.ChoreCompletion, error) {
	return s.Chores.ListCompletionsBetween(start, end)
}

func (s Core) CreateCompletion(c model.ChoreCompletion) (*model.ChoreCompletion, error) {
	return s.Chores.CreateCompletion(c)
}

func (s Core) DeleteCompletion(id string) error { return s.Chores.DeleteCompletion(id) }

func (s Core) UpdateMemberScore(memberID string, points int, badges []string) error {
	return s.Members.UpdateScore(memberID, points, badges)
}
