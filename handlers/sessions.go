package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"botwerk-server/middleware"
	"botwerk-server/models"
	"botwerk-server/store"
)

type SessionHandler struct {
	store *store.Store
}

func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// List returns the caller's sessions with one of their bots.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	bot, err := h.store.GetUserBot(r.PathValue("id"), userID)
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to fetch chat sessions")
		return
	}

	sessions, err := h.store.GetChatSessionsByBotID(bot.ID, userID)
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to fetch chat sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	// The body is optional.
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "Invalid session data", http.StatusBadRequest)
		return
	}

	userID := middleware.GetUserID(r)
	bot, err := h.store.GetUserBot(r.PathValue("id"), userID)
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to create chat session")
		return
	}

	title := req.Title
	if title == "" {
		title = bot.Name
	}

	session, err := h.store.CreateChatSession(userID, bot.ID, title)
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to create chat session")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}
