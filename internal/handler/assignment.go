package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/chorecal/internal/assign"
	"github.com/dukerupert/chorecal/internal/metrics"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
	"github.com/dukerupert/chorecal/internal/store"
	"github.com/dukerupert/chorecal/internal/websocket"
)

type AssignmentHandler struct {
	chores       *store.ChoreStore
	members      *store.MemberStore
	availability *store.AvailabilityStore
	assigner     *assign.Assigner
	hub          *websocket.Hub
	metrics      *metrics.Metrics
	now          func() time.Time
	logger       *slog.Logger
}

func NewAssignmentHandler(cs *store.ChoreStore, ms *store.MemberStore, as *store.AvailabilityStore, assigner *assign.Assigner, hub *websocket.Hub, m *metrics.Metrics, now func() time.Time, logger *slog.Logger) *AssignmentHandler {
	if now == nil {
		now = time.Now
	}
	return &AssignmentHandler{
		chores:       cs,
		members:      ms,
		availability: as,
		assigner:     assigner,
		hub:          hub,
		metrics:      m,
		now:          now,
		logger:       logger,
	}
}

func (h *AssignmentHandler) load() ([]model.Chore, []model.TeamMember, error) {
	chores, err := h.chores.List()
	if err != nil {
		return nil, nil, err
	}
	members, err := h.members.List()
	if err != nil {
		return nil, nil, err
	}
	return chores, members, nil
}

func (h *AssignmentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	chores, members, err := h.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chores")
		return
	}
	writeJSON(w, http.StatusOK, assign.Stats(chores, members, recurrence.DateOf(h.now())))
}

func (h *AssignmentHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	chores, members, err := h.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chores")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member": assign.Suggest(chores, members, recurrence.DateOf(h.now())),
	})
}

func (h *AssignmentHandler) Balance(w http.ResponseWriter, r *http.Request) {
	chores, members, err := h.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chores")
		return
	}
	writeJSON(w, http.StatusOK, assign.AnalyzeBalance(chores, members, recurrence.DateOf(h.now())))
}

// Auto proposes assignees for every unassigned chore and, with ?apply=true,
// saves them.
func (h *AssignmentHandler) Auto(w http.ResponseWriter, r *http.Request) {
	chores, members, err := h.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chores")
		return
	}

	assignments := assign.AutoAssign(chores, members, recurrence.DateOf(h.now()))
	apply := r.URL.Query().Get("apply") == "true"

	if apply && len(assignments) > 0 {
		if err := h.chores.Assign(assignments); err != nil {
			h.logger.Error("apply assignments", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to apply assignments")
			return
		}
		h.metrics.Assigned("auto", len(assignments))
		broadcast(h.hub, websocket.NewMessage(websocket.EntityAssignment, websocket.ActionApplied, "", map[string]any{
			"count": len(assignments),
		}))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"assignments": assignments,
		"applied":     apply && len(assignments) > 0,
	})
}

// optionOverrides holds the assignment options a caller may override; nil
// fields keep the chore's own setting.
type optionOverrides struct {
	RotationType        *model.RotationType `json:"rotation_type"`
	RespectSkills       *bool               `json:"respect_skills"`
	RespectAvailability *bool               `json:"respect_availability"`
	RespectWorkingHours *bool               `json:"respect_working_hours"`
	BalanceWorkload     *bool               `json:"balance_workload"`
}

func (o optionOverrides) merge(base model.AssignOptions) model.AssignOptions {
	if o.RotationType != nil {
		base.RotationType = *o.RotationType
	}
	if o.RespectSkills != nil {
		base.RespectSkills = *o.RespectSkills
	}
	if o.RespectAvailability != nil {
		base.RespectAvailability = *o.RespectAvailability
	}
	if o.RespectWorkingHours != nil {
		base.RespectWorkingHours = *o.RespectWorkingHours
	}
	if o.BalanceWorkload != nil {
		base.BalanceWorkload = *o.BalanceWorkload
	}
	return base
}

// NextAssignee previews who the chore's rotation would pick next. The body
// may override any option; rotation is always switched on for the preview.
// With ?apply=true the pick is saved as the chore's assignee.
func (h *AssignmentHandler) NextAssignee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	var overrides optionOverrides
	if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if overrides.RotationType != nil && !overrides.RotationType.Valid() {
		writeError(w, http.StatusBadRequest, "rotation_type must be one of: round-robin least-loaded random")
		return
	}

	base := assign.PreviewOptions()
	if c.AutoAssign != nil {
		base = *c.AutoAssign
	}
	opts := overrides.merge(base)
	opts.Enabled = true

	req, err := assignRequest(h.chores, h.members, h.availability, *c, opts, recurrence.DateOf(h.now()))
	if err != nil {
		h.logger.Error("load assignment inputs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load assignment inputs")
		return
	}
	preview := h.assigner.Preview(req)

	if r.URL.Query().Get("apply") == "true" && preview.AssigneeID != nil {
		if err := h.chores.Assign(map[string]string{c.ID: *preview.AssigneeID}); err != nil {
			h.logger.Error("apply next assignee", "chore_id", c.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to assign chore")
			return
		}
		h.metrics.Assigned(string(opts.RotationType), 1)
		broadcast(h.hub, websocket.NewMessage(websocket.EntityChore, websocket.ActionUpdated, c.ID, nil))
	}

	writeJSON(w, http.StatusOK, preview)
}

// assignRequest gathers the inputs the assigner needs for chore c.
func assignRequest(cs *store.ChoreStore, ms *store.MemberStore, as *store.AvailabilityStore, c model.Chore, opts model.AssignOptions, today recurrence.Date) (assign.Request, error) {
	members, err := ms.List()
	if err != nil {
		return assign.Request{}, err
	}
	chores, err := cs.List()
	if err != nil {
		return assign.Request{}, err
	}
	completions, err := cs.ListCompletions()
	if err != nil {
		return assign.Request{}, err
	}
	away, err := as.List()
	if err != nil {
		return assign.Request{}, err
	}
	categories, err := cs.ListCategories()
	if err != nil {
		return assign.Request{}, err
	}
	return assign.Request{
		Chore:        c,
		Members:      members,
		Completions:  completions,
		Availability: away,
		Chores:       chores,
		Categories:   categories,
		Options:      opts,
		Today:        today,
	}, nil
}
