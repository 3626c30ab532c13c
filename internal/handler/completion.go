package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorecal/internal/completion"
	"github.com/dukerupert/chorecal/internal/metrics"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
	"github.com/dukerupert/chorecal/internal/store"
	"github.com/dukerupert/chorecal/internal/websocket"
)

type CompletionHandler struct {
	chores  *store.ChoreStore
	members *store.MemberStore
	tracker *completion.Tracker
	hub     *websocket.Hub
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewCompletionHandler(cs *store.ChoreStore, ms *store.MemberStore, tracker *completion.Tracker, hub *websocket.Hub, m *metrics.Metrics, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{chores: cs, members: ms, tracker: tracker, hub: hub, metrics: m, logger: logger}
}

// List returns completions, newest first, optionally narrowed by
// ?member_id= and ?start=&end= on the instance date.
func (h *CompletionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		list []model.ChoreCompletion
		err  error
	)
	if q.Get("start") != "" || q.Get("end") != "" {
		start, end, rerr := dateRange(r, recurrence.Date{}, recurrence.Date{})
		if rerr != nil {
			writeError(w, http.StatusBadRequest, rerr.Error())
			return
		}
		list, err = h.chores.ListCompletionsBetween(start, end)
	} else {
		list, err = h.chores.ListCompletions()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}

	if memberID := q.Get("member_id"); memberID != "" {
		filtered := list[:0]
		for _, c := range list {
			if c.CompletedBy == memberID {
				filtered = append(filtered, c)
			}
		}
		list = filtered
	}
	if list == nil {
		list = []model.ChoreCompletion{}
	}
	writeJSON(w, http.StatusOK, list)
}

type completeRequest struct {
	Date     string `json:"date" validate:"required,ymd"`
	MemberID string `json:"member_id" validate:"required"`
	Notes    string `json:"notes" validate:"max=500"`
	PIN      string `json:"pin"`
}

// Complete records a member finishing one occurrence of a chore and awards
// points and badges. Members with a PIN must supply it.
func (h *CompletionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	choreID := r.PathValue("id")

	var req completeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	member, err := h.members.GetByID(req.MemberID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		writeError(w, http.StatusBadRequest, "member not found")
		return
	}
	if member.HasPIN {
		hash, err := h.members.GetPINHash(member.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to get PIN")
			return
		}
		if !pinMatches(hash, req.PIN) {
			writeError(w, http.StatusUnauthorized, "incorrect PIN")
			return
		}
	}

	res, err := h.tracker.Complete(choreID, recurrence.MustParseDate(req.Date), member.ID, req.Notes)
	switch {
	case errors.Is(err, completion.ErrChoreNotFound):
		writeError(w, http.StatusNotFound, "chore not found")
		return
	case errors.Is(err, completion.ErrMemberNotFound):
		writeError(w, http.StatusBadRequest, "member not found")
		return
	case err != nil:
		h.logger.Error("complete chore", "chore_id", choreID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete chore")
		return
	}
	if res.NewBadges == nil {
		res.NewBadges = []string{}
	}

	h.metrics.Completed(res.PointsAwarded, res.NewBadges)
	h.logger.Info("chore completed",
		"chore_id", choreID,
		"member_id", member.ID,
		"date", req.Date,
		"points", res.PointsAwarded,
		"badges", len(res.NewBadges),
	)

	broadcast(h.hub, websocket.NewMessage(websocket.EntityCompletion, websocket.ActionCreated, res.Completion.ID, map[string]any{
		"chore_id":       choreID,
		"instance_date":  req.Date,
		"member_id":      member.ID,
		"points_awarded": res.PointsAwarded,
	}))
	for _, b := range res.NewBadges {
		broadcast(h.hub, websocket.NewMessage(websocket.EntityBadge, websocket.ActionEarned, b, map[string]any{
			"member_id": member.ID,
		}))
	}

	writeJSON(w, http.StatusCreated, res)
}

// Uncomplete deletes a completion. Points and badges it earned are kept.
func (h *CompletionHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.tracker.Uncomplete(id); err != nil {
		h.logger.Error("uncomplete", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove completion")
		return
	}
	h.metrics.Uncompleted()

	broadcast(h.hub, websocket.NewMessage(websocket.EntityCompletion, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
