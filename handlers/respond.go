package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"botwerk-server/store"
	"botwerk-server/validations"

	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps JSON request bodies; knowledge bases are the largest legitimate payload.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("[HTTP] Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, errorResponse{Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeValidationError answers 400 with the validation message.
func writeValidationError(w http.ResponseWriter, err error) {
	var verr validations.ValidationError
	if errors.As(err, &verr) {
		writeError(w, verr.Error(), verr.StatusCode())
		return
	}
	writeError(w, err.Error(), http.StatusBadRequest)
}

// writeStoreError maps store.ErrNotFound to 404 and logs everything else as a 500.
func writeStoreError(w http.ResponseWriter, err error, notFoundMessage, failMessage string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, notFoundMessage, http.StatusNotFound)
		return
	}
	logrus.WithError(err).Errorf("[HTTP] %s", failMessage)
	writeError(w, failMessage, http.StatusInternalServerError)
}
