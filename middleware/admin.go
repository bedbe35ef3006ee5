package middleware

import (
	"net/http"

	"botwerk-server/models"

	"github.com/sirupsen/logrus"
)

// AdminChecker resolves users and decides whether they hold admin rights.
type AdminChecker interface {
	GetUserByID(id string) (*models.User, error)
	IsAdmin(user *models.User) (bool, error)
}

// RequireAdmin wraps RequireAuth and additionally demands admin rights.
func RequireAdmin(checker AdminChecker) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			user, err := checker.GetUserByID(GetUserID(r))
			if err != nil {
				jsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			isAdmin, err := checker.IsAdmin(user)
			if err != nil {
				logrus.WithError(err).Error("[AUTH] Admin check failed")
				jsonError(w, "Server error", http.StatusInternalServerError)
				return
			}
			if !isAdmin {
				jsonError(w, "Admin access required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
