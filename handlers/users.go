package handlers

import (
	"errors"
	"net/http"

	"botwerk-server/middleware"
	"botwerk-server/models"
	"botwerk-server/store"
	"botwerk-server/validations"

	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	store *store.Store
	hub   *Hub
}

func NewUserHandler(s *store.Store, hub *Hub) *UserHandler {
	return &UserHandler{store: s, hub: hub}
}

func (h *UserHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.DashboardStats(middleware.GetUserID(r))
	if err != nil {
		writeStoreError(w, err, "User not found", "Failed to fetch dashboard stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validations.ValidateUpdateProfile(r.Context(), req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.store.UpdateUserProfile(middleware.GetUserID(r), req)
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, "Email already registered", http.StatusConflict)
		return
	}
	if err != nil {
		writeStoreError(w, err, "Benutzer nicht gefunden", "Fehler beim Aktualisieren des Profils")
		return
	}

	resp, err := userResponse(h.store, user)
	if err != nil {
		writeStoreError(w, err, "Benutzer nicht gefunden", "Fehler beim Aktualisieren des Profils")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteAccount removes the caller together with all of their bots and conversations.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if err := h.store.DeleteUser(userID); err != nil {
		writeStoreError(w, err, "Benutzer nicht gefunden", "Fehler beim Löschen des Accounts")
		return
	}

	logrus.Infof("[USER] Deleted account %s", userID)
	if h.hub != nil {
		h.hub.DisconnectUser(userID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account erfolgreich gelöscht"})
}
