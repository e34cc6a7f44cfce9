package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gloworganic/site/internal/menu"
	"github.com/gloworganic/site/internal/recordstore"
	"github.com/gloworganic/site/internal/websocket"
)

type MenuHandler struct {
	repo   *menu.Repository
	edit   *menu.EditSession
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewMenuHandler(repo *menu.Repository, edit *menu.EditSession, hub *websocket.Hub, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{repo: repo, edit: edit, hub: hub, logger: logger}
}

func (h *MenuHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// PublicMenu serves the current menu snapshot for the landing page.
func (h *MenuHandler) PublicMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.Snapshot())
}

// AdminState serves the editor's working copy and save status.
func (h *MenuHandler) AdminState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.edit.State())
}

// Reload pulls a fresh dataset from the record store and resets the working
// copy to it, discarding unsaved edits.
func (h *MenuHandler) Reload(w http.ResponseWriter, r *http.Request) {
	snap := h.repo.Reload(r.Context())
	h.edit.Apply(snap)

	h.broadcast(websocket.NewMessage("menu", "reloaded", "", nil))

	writeJSON(w, http.StatusOK, snap)
}

// categoryRequest carries the full editable field set for a category; the
// portal always submits the complete row it is editing.
type categoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sort_order"`
}

type itemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Duration    string `json:"duration"`
	SortOrder   *int   `json:"sort_order"`
}

// UpdateCategory applies the submitted fields to the working copy and
// persists the row.
func (h *MenuHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if !h.edit.SetCategoryTitle(id, req.Title) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}
	h.edit.SetCategoryDescription(id, req.Description)
	h.edit.SetCategorySortOrder(id, req.SortOrder)

	if err := h.edit.SaveCategory(r.Context(), id); err != nil {
		h.writeSaveError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("category", "updated", id, nil))

	writeJSON(w, http.StatusOK, h.edit.State())
}

// UpdateItem applies the submitted fields to the working copy and persists
// the row.
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("id")
	itemID := r.PathValue("item_id")

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if !h.edit.SetItemTitle(categoryID, itemID, req.Title) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "service not found"})
		return
	}
	h.edit.SetItemDescription(categoryID, itemID, req.Description)
	h.edit.SetItemPrice(categoryID, itemID, req.Price)
	h.edit.SetItemDuration(categoryID, itemID, req.Duration)
	h.edit.SetItemSortOrder(categoryID, itemID, req.SortOrder)

	if err := h.edit.SaveItem(r.Context(), categoryID, itemID); err != nil {
		h.writeSaveError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("item", "updated", itemID, map[string]any{"category_id": categoryID}))

	writeJSON(w, http.StatusOK, h.edit.State())
}

// CreateCategory inserts a placeholder category at the end of the menu and
// selects it for editing.
func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.edit.AddCategory(r.Context())
	if err != nil {
		h.writeSaveError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("category", "created", id, nil))

	writeJSON(w, http.StatusCreated, h.edit.State())
}

// CreateItem inserts a placeholder service at the end of a category.
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("id")

	id, err := h.edit.AddItem(r.Context(), categoryID)
	if err != nil {
		h.writeSaveError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("item", "created", id, map[string]any{"category_id": categoryID}))

	writeJSON(w, http.StatusCreated, h.edit.State())
}

// SelectCategory marks which category tab the editor is working in.
func (h *MenuHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if !h.edit.SelectCategory(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}

	writeJSON(w, http.StatusOK, h.edit.State())
}

// writeSaveError maps edit-session failures onto HTTP statuses. Zero rows
// updated means row-level security silently filtered the write, so the
// caller's account is not authorized.
func (h *MenuHandler) writeSaveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, menu.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, menu.ErrNotConnected):
		writeJSON(w, http.StatusConflict, map[string]string{"error": menu.MsgNotConnected})
	case errors.Is(err, menu.ErrNoRowsUpdated):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": menu.MsgNoRowsUpdated})
	default:
		var storeErr *recordstore.Error
		if errors.As(err, &storeErr) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": storeErr.Message})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}
