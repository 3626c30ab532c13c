package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/chorecal/internal/dashboard"
	"github.com/dukerupert/chorecal/internal/gamification"
	"github.com/dukerupert/chorecal/internal/recurrence"
	"github.com/dukerupert/chorecal/internal/store"
)

type GamificationHandler struct {
	chores  *store.ChoreStore
	members *store.MemberStore
	scorer  *gamification.Scorer
	now     func() time.Time
	logger  *slog.Logger
}

func NewGamificationHandler(cs *store.ChoreStore, ms *store.MemberStore, scorer *gamification.Scorer, now func() time.Time, logger *slog.Logger) *GamificationHandler {
	if now == nil {
		now = time.Now
	}
	return &GamificationHandler{chores: cs, members: ms, scorer: scorer, now: now, logger: logger}
}

func (h *GamificationHandler) Badges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scorer.Badges())
}

func (h *GamificationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
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
	completions, err := h.chores.ListCompletions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}

	writeJSON(w, http.StatusOK, dashboard.Build(chores, members, completions, recurrence.DateOf(h.now())))
}
