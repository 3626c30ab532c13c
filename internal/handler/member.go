package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/chorecal/internal/completion"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/palette"
	"github.com/dukerupert/chorecal/internal/store"
	"github.com/dukerupert/chorecal/internal/websocket"
)

type MemberHandler struct {
	store   *store.MemberStore
	tracker *completion.Tracker
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMemberHandler(s *store.MemberStore, tracker *completion.Tracker, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{store: s, tracker: tracker, hub: hub, logger: logger}
}

type workingHoursRequest struct {
	Start string         `json:"start" validate:"required,hhmm"`
	End   string         `json:"end" validate:"required,hhmm"`
	Days  []time.Weekday `json:"days" validate:"dive,min=0,max=6"`
}

type memberRequest struct {
	Name                  string               `json:"name" validate:"required,max=100"`
	Color                 string               `json:"color" validate:"omitempty,hex6"`
	AvatarURL             string               `json:"avatar_url" validate:"omitempty,url"`
	Email                 string               `json:"email" validate:"omitempty,email"`
	Skills                []string             `json:"skills" validate:"dive,required"`
	WorkingHours          *workingHoursRequest `json:"working_hours"`
	WeeklyCapacityMinutes *int                 `json:"weekly_capacity_minutes" validate:"omitempty,min=0"`
}

func (req memberRequest) apply(m *model.TeamMember) {
	m.Name = req.Name
	m.Color = req.Color
	m.AvatarURL = req.AvatarURL
	m.Email = req.Email
	m.Skills = req.Skills
	m.WeeklyCapacityMinutes = req.WeeklyCapacityMinutes
	m.WorkingHours = nil
	if req.WorkingHours != nil {
		m.WorkingHours = &model.WorkingHours{
			Start: req.WorkingHours.Start,
			End:   req.WorkingHours.End,
			Days:  req.WorkingHours.Days,
		}
	}
}

func decodeMember(r *http.Request) (memberRequest, error) {
	var req memberRequest
	if err := decode(r, &req); err != nil {
		return req, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return req, errNameRequired
	}
	return req, nil
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.List()
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.TeamMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMember(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Color == "" {
		used, err := h.store.Colors()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to pick a color")
			return
		}
		req.Color = palette.Next(used)
	}

	exists, err := h.store.NameExists(req.Name, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check name")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "a member with that name already exists")
		return
	}

	var m model.TeamMember
	req.apply(&m)
	member, err := h.store.Create(m)
	if err != nil {
		h.logger.Error("create member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create member")
		return
	}

	broadcast(h.hub, websocket.NewMessage(websocket.EntityMember, websocket.ActionCreated, member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	req, err := decodeMember(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Color == "" {
		req.Color = existing.Color
	}

	exists, err := h.store.NameExists(req.Name, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check name")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "a member with that name already exists")
		return
	}

	req.apply(existing)
	member, err := h.store.Update(*existing)
	if err != nil {
		h.logger.Error("update member", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update member")
		return
	}

	broadcast(h.hub, websocket.NewMessage(websocket.EntityMember, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, member)
}

// Delete removes a member. Their chores become unassigned; their completions
// are kept.
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.logger.Error("delete member", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete member")
		return
	}

	broadcast(h.hub, websocket.NewMessage(websocket.EntityMember, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type memberStatsResponse struct {
	MemberID string `json:"member_id"`
	model.MemberStats
	Points int      `json:"points"`
	Badges []string `json:"badges"`
}

func (h *MemberHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	member, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	stats, err := h.tracker.MemberStats(id)
	if err != nil {
		h.logger.Error("member stats", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	badges := member.Badges
	if badges == nil {
		badges = []string{}
	}
	writeJSON(w, http.StatusOK, memberStatsResponse{
		MemberID:    id,
		MemberStats: stats,
		Points:      member.Points,
		Badges:      badges,
	})
}

type pinRequest struct {
	PIN string `json:"pin" validate:"required"`
}

func (h *MemberHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	var req pinRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.PIN) != 4 || !isDigits(req.PIN) {
		writeError(w, http.StatusBadRequest, "PIN must be exactly 4 digits")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash PIN")
		return
	}

	if err := h.store.SetPIN(id, string(hash)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "pin set"})
}

func (h *MemberHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearPIN(r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin cleared"})
}

func (h *MemberHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req pinRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := h.store.GetPINHash(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	if hash == "" {
		writeError(w, http.StatusBadRequest, "no PIN set for this member")
		return
	}

	if !pinMatches(hash, req.PIN) {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func pinMatches(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
