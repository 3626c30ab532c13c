package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
	"github.com/dukerupert/chorecal/internal/store"
)

type AvailabilityHandler struct {
	store   *store.AvailabilityStore
	members *store.MemberStore
	logger  *slog.Logger
}

func NewAvailabilityHandler(s *store.AvailabilityStore, members *store.MemberStore, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{store: s, members: members, logger: logger}
}

// List returns every away period, or one member's with ?member_id=.
func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []model.MemberAvailability
		err  error
	)
	if memberID := r.URL.Query().Get("member_id"); memberID != "" {
		list, err = h.store.ListByMember(memberID)
	} else {
		list, err = h.store.List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list availability")
		return
	}
	if list == nil {
		list = []model.MemberAvailability{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID  string `json:"member_id" validate:"required"`
		StartDate string `json:"start_date" validate:"required,ymd"`
		EndDate   string `json:"end_date" validate:"required,ymd"`
		Reason    string `json:"reason" validate:"max=200"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := recurrence.MustParseDate(req.StartDate)
	end := recurrence.MustParseDate(req.EndDate)
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date")
		return
	}

	member, err := h.members.GetByID(req.MemberID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check member")
		return
	}
	if member == nil {
		writeError(w, http.StatusBadRequest, "member not found")
		return
	}

	a, err := h.store.Create(req.MemberID, start, end, req.Reason)
	if err != nil {
		h.logger.Error("create availability", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create availability")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get availability")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "availability not found")
		return
	}

	if err := h.store.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete availability")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
