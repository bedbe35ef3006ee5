package handlers

import (
	"net/http"

	"botwerk-server/models"
	"botwerk-server/validations"

	"github.com/sirupsen/logrus"
)

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Contact accepts a contact form submission. Submissions are only logged.
func Contact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validations.ValidateContact(r.Context(), req); err != nil {
		writeValidationError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"name":    req.Name,
		"email":   req.Email,
		"subject": req.Subject,
		"message": req.Message,
	}).Info("[CONTACT] Contact form submission")

	writeJSON(w, http.StatusOK, contactResponse{
		Success: true,
		Message: "Nachricht erhalten. Wir werden uns bald bei Ihnen melden.",
	})
}
