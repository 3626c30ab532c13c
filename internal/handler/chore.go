package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/chorecal/internal/assign"
	"github.com/dukerupert/chorecal/internal/chore"
	"github.com/dukerupert/chorecal/internal/metrics"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
	"github.com/dukerupert/chorecal/internal/store"
	"github.com/dukerupert/chorecal/internal/websocket"
)

// CalendarWindow is how many whole months around the current one the
// instances endpoint covers when no range is given.
type CalendarWindow struct {
	MonthsBefore int
	MonthsAfter  int
}

type ChoreHandler struct {
	chores       *store.ChoreStore
	members      *store.MemberStore
	availability *store.AvailabilityStore
	assigner     *assign.Assigner
	hub          *websocket.Hub
	metrics      *metrics.Metrics
	window       CalendarWindow
	now          func() time.Time
	logger       *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, ms *store.MemberStore, as *store.AvailabilityStore, assigner *assign.Assigner, hub *websocket.Hub, m *metrics.Metrics, window CalendarWindow, now func() time.Time, logger *slog.Logger) *ChoreHandler {
	if now == nil {
		now = time.Now
	}
	return &ChoreHandler{
		chores:       cs,
		members:      ms,
		availability: as,
		assigner:     assigner,
		hub:          hub,
		metrics:      m,
		window:       window,
		now:          now,
		logger:       logger,
	}
}

func (h *ChoreHandler) today() recurrence.Date {
	return recurrence.DateOf(h.now())
}

type choreRequest struct {
	Title            string               `json:"title" validate:"required,max=200"`
	Description      string               `json:"description" validate:"max=2000"`
	Date             string               `json:"date" validate:"required,ymd"`
	StartTime        string               `json:"start_time" validate:"omitempty,hhmm"`
	EndTime          string               `json:"end_time" validate:"omitempty,hhmm"`
	AllDay           bool                 `json:"all_day"`
	AssigneeID       *string              `json:"assignee_id"`
	Recurrence       string               `json:"recurrence"`
	Priority         string               `json:"priority" validate:"omitempty,oneof=low medium high"`
	CategoryID       *string              `json:"category_id"`
	EstimatedMinutes *int                 `json:"estimated_minutes" validate:"omitempty,min=1,max=1440"`
	AutoAssign       *model.AssignOptions `json:"auto_assign"`
}

// toChore validates the cross-field rules and references, returning a
// client-facing message on failure.
func (h *ChoreHandler) toChore(req choreRequest) (model.Chore, string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Chore{}, "title is required", nil
	}

	freq, err := recurrence.ParseFreq(req.Recurrence)
	if err != nil {
		return model.Chore{}, "recurrence must be one of: none daily weekly monthly", nil
	}

	priority := model.Priority(req.Priority)
	if priority == "" {
		priority = model.PriorityMedium
	}

	if req.StartTime != "" && req.EndTime != "" && req.EndTime < req.StartTime {
		return model.Chore{}, "end_time must not be before start_time", nil
	}

	if req.AutoAssign != nil {
		if req.AutoAssign.RotationType == "" {
			req.AutoAssign.RotationType = model.RotationRoundRobin
		}
		if !req.AutoAssign.RotationType.Valid() {
			return model.Chore{}, "auto_assign.rotation_type must be one of: round-robin least-loaded random", nil
		}
	}

	if req.AssigneeID != nil {
		member, err := h.members.GetByID(*req.AssigneeID)
		if err != nil {
			return model.Chore{}, "", err
		}
		if member == nil {
			return model.Chore{}, "assignee not found", nil
		}
	}

	if req.CategoryID != nil {
		category, err := h.chores.GetCategoryByID(*req.CategoryID)
		if err != nil {
			return model.Chore{}, "", err
		}
		if category == nil {
			return model.Chore{}, "category not found", nil
		}
	}

	return model.Chore{
		Title:            title,
		Description:      req.Description,
		Date:             recurrence.MustParseDate(req.Date),
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		AllDay:           req.AllDay,
		AssigneeID:       req.AssigneeID,
		Recurrence:       freq,
		Priority:         priority,
		CategoryID:       req.CategoryID,
		EstimatedMinutes: req.EstimatedMinutes,
		AutoAssign:       req.AutoAssign,
	}, "", nil
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.chores.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.chores.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create stores a new chore. A chore with auto-assignment switched on and no
// assignee gets one picked by its rotation.
func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, msg, err := h.toChore(req)
	if err != nil {
		h.logger.Error("check chore references", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check chore")
		return
	}
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if c.AssigneeID == nil && c.AutoAssign != nil && c.AutoAssign.Enabled {
		picked, err := h.pickAssignee(c)
		if err != nil {
			h.logger.Error("auto-assign new chore", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to auto-assign chore")
			return
		}
		if picked != nil {
			c.AssigneeID = &picked.ID
			h.metrics.Assigned(string(c.AutoAssign.RotationType), 1)
		}
	}

	created, err := h.chores.Create(c)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create chore")
		return
	}

	broadcast(h.hub, websocket.NewMessage(websocket.EntityChore, websocket.ActionCreated, created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

func (h *ChoreHandler) pickAssignee(c model.Chore) (*model.TeamMember, error) {
	req, err := assignRequest(h.chores, h.members, h.availability, c, *c.AutoAssign, h.today())
	if err != nil {
		return nil, err
	}
	return h.assigner.Next(req), nil
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	var req choreRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, msg, err := h.toChore(req)
	if err != nil {
		h.logger.Error("check chore references", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check chore")
		return
	}
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	c.ID = id

	updated, err := h.chores.Update(c)
	if err != nil {
		h.logger.Error("update chore", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update chore")
		return
	}

	broadcast(h.hub, websocket.NewMessage(websocket.EntityChore, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a chore together with its completion history.
func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	if err := h.chores.Delete(id); err != nil {
		h.logger.Error("delete chore", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete chore")
		return
	}

	broadcast(h.hub, websocket.NewMessage(websocket.EntityChore, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Upcoming lists chores anchored today or tomorrow.
func (h *ChoreHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	chores, err := h.chores.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	upcoming := chore.Upcoming(chores, h.today())
	if upcoming == nil {
		upcoming = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, upcoming)
}

// Instances expands every chore over ?start=&end=, defaulting to the
// calendar window around today.
func (h *ChoreHandler) Instances(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	defStart, defEnd := chore.CalendarWindow(today, h.window.MonthsBefore, h.window.MonthsAfter)
	start, end, err := dateRange(r, defStart, defEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chores, err := h.chores.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	members, err := h.members.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	completions, err := h.chores.ListCompletionsBetween(start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}

	instances := chore.Generate(chores, members, completions, start, end)
	h.metrics.InstancesGenerated(len(instances))

	writeJSON(w, http.StatusOK, chore.WithStatus(instances, today))
}
