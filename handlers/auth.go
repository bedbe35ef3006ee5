package handlers

import (
	"errors"
	"net/http"
	"strings"

	"botwerk-server/middleware"
	"botwerk-server/models"
	"botwerk-server/store"
	"botwerk-server/validations"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	store *store.Store
}

func NewAuthHandler(s *store.Store) *AuthHandler {
	return &AuthHandler{store: s}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := validations.ValidateRegister(r.Context(), req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.store.CreateUser(req.Email, req.Password, req.FirstName, req.LastName)
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, "Email already registered", http.StatusConflict)
		return
	}
	if err != nil {
		logrus.WithError(err).Error("[AUTH] Failed to create user")
		writeError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	logrus.Infof("[AUTH] Registered user %s", user.ID)
	h.respondWithToken(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validations.ValidateLogin(r.Context(), req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil || !h.store.ValidatePassword(user, req.Password) {
		writeError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(middleware.GetUserID(r))
	if err != nil {
		writeStoreError(w, err, "User not found", "Failed to fetch user")
		return
	}

	resp, err := userResponse(h.store, user)
	if err != nil {
		writeStoreError(w, err, "User not found", "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := middleware.GenerateToken(user.ID)
	if err != nil {
		writeError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	resp, err := userResponse(h.store, user)
	if err != nil {
		writeStoreError(w, err, "User not found", "Failed to fetch user")
		return
	}
	writeJSON(w, status, models.AuthResponse{Token: token, User: resp})
}

// userResponse renders a user with the admin flag resolved.
func userResponse(s *store.Store, user *models.User) (models.UserResponse, error) {
	resp := user.ToResponse()
	isAdmin, err := s.IsAdmin(user)
	if err != nil {
		return resp, err
	}
	resp.IsAdmin = isAdmin
	return resp, nil
}
