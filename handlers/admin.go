package handlers

import (
	"net/http"

	"botwerk-server/middleware"
	"botwerk-server/models"
	"botwerk-server/store"

	"github.com/sirupsen/logrus"
)

// AdminHandler serves the moderation endpoints. Routes must be wrapped with middleware.RequireAdmin.
type AdminHandler struct {
	store *store.Store
	hub   *Hub
}

func NewAdminHandler(s *store.Store, hub *Hub) *AdminHandler {
	return &AdminHandler{store: s, hub: hub}
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.GetAllUsers()
	if err != nil {
		writeStoreError(w, err, "User not found", "Failed to fetch users")
		return
	}

	resp := make([]models.UserResponse, 0, len(users))
	for i := range users {
		u, err := userResponse(h.store, &users[i])
		if err != nil {
			writeStoreError(w, err, "User not found", "Failed to fetch users")
			return
		}
		resp = append(resp, u)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) Bots(w http.ResponseWriter, r *http.Request) {
	bots, err := h.store.GetAllBots()
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to fetch bots")
		return
	}
	writeJSON(w, http.StatusOK, bots)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == middleware.GetUserID(r) {
		writeError(w, "Cannot delete your own account", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteUser(id); err != nil {
		writeStoreError(w, err, "User not found", "Failed to delete user")
		return
	}

	logrus.Infof("[ADMIN] User %s deleted by %s", id, middleware.GetUserID(r))
	if h.hub != nil {
		h.hub.DisconnectUser(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeleteBot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteBotAsAdmin(id); err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to delete bot")
		return
	}

	logrus.Infof("[ADMIN] Bot %s deleted by %s", id, middleware.GetUserID(r))
	w.WriteHeader(http.StatusNoContent)
}
