package handlers

import (
	"net/http"

	"botwerk-server/middleware"
	"botwerk-server/models"
	"botwerk-server/store"
	"botwerk-server/validations"

	"github.com/sirupsen/logrus"
)

type BotHandler struct {
	store *store.Store
}

func NewBotHandler(s *store.Store) *BotHandler {
	return &BotHandler{store: s}
}

func (h *BotHandler) List(w http.ResponseWriter, r *http.Request) {
	bots, err := h.store.GetBotsByUserID(middleware.GetUserID(r))
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to fetch bots")
		return
	}
	writeJSON(w, http.StatusOK, bots)
}

func (h *BotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validations.ValidateCreateBot(r.Context(), req); err != nil {
		writeValidationError(w, err)
		return
	}

	bot, err := h.store.CreateBot(middleware.GetUserID(r), req)
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to create bot")
		return
	}

	logrus.Infof("[BOT] Created bot %s (%s) for user %s", bot.ID, bot.Name, bot.UserID)
	writeJSON(w, http.StatusCreated, bot)
}

func (h *BotHandler) Get(w http.ResponseWriter, r *http.Request) {
	bot, err := h.store.GetUserBot(r.PathValue("id"), middleware.GetUserID(r))
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to fetch bot")
		return
	}
	writeJSON(w, http.StatusOK, bot)
}

func (h *BotHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateBotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validations.ValidateUpdateBot(r.Context(), req); err != nil {
		writeValidationError(w, err)
		return
	}

	bot, err := h.store.UpdateBot(r.PathValue("id"), middleware.GetUserID(r), req)
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to update bot")
		return
	}
	writeJSON(w, http.StatusOK, bot)
}

func (h *BotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteBot(r.PathValue("id"), middleware.GetUserID(r)); err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to delete bot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
