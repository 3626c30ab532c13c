package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/store"
	"github.com/dukerupert/chorecal/internal/websocket"
)

type CategoryHandler struct {
	store  *store.ChoreStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewCategoryHandler(s *store.ChoreStore, hub *websocket.Hub, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{store: s, hub: hub, logger: logger}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name" validate:"required,max=50"`
		Color string `json:"color" validate:"omitempty,hex6"`
		Icon  string `json:"icon" validate:"max=16"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errNameRequired.Error())
		return
	}
	if req.Color == "" {
		req.Color = "#6B7280"
	}

	existing, err := h.store.ListCategories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check name")
		return
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, req.Name) {
			writeError(w, http.StatusConflict, "a category with that name already exists")
			return
		}
	}

	category, err := h.store.CreateCategory(req.Name, req.Color, req.Icon)
	if err != nil {
		h.logger.Error("create category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	broadcast(h.hub, websocket.NewMessage(websocket.EntityCategory, websocket.ActionCreated, category.ID, nil))
	writeJSON(w, http.StatusCreated, category)
}

// Delete removes a category; chores in it become uncategorized.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.GetCategoryByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get category")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := h.store.DeleteCategory(id); err != nil {
		h.logger.Error("delete category", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	broadcast(h.hub, websocket.NewMessage(websocket.EntityCategory, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
