package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"botwerk-server/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetUserID(r)))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(JWTSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	token, err := GenerateToken("user-1")
	require.NoError(t, err)
	h := RequireAuth(echoUser)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		target string
		status int
	}{
		{"missing", func(*http.Request) {}, "/", http.StatusUnauthorized},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, "/", http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "/", http.StatusUnauthorized},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "/", http.StatusOK},
		{"query", func(*http.Request) {}, "/?token=" + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", rec.Body.String())
			} else {
				assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}

type fakeChecker struct {
	users  map[string]*models.User
	admins map[string]bool
	err    error
}

func (f fakeChecker) GetUserByID(id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func (f fakeChecker) IsAdmin(u *models.User) (bool, error) {
	return f.admins[u.ID], f.err
}

func TestRequireAdmin(t *testing.T) {
	checker := fakeChecker{
		users:  map[string]*models.User{"admin": {ID: "admin"}, "user": {ID: "user"}},
		admins: map[string]bool{"admin": true},
	}

	call := func(c AdminChecker, userID string) *httptest.ResponseRecorder {
		token, err := GenerateToken(userID)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		RequireAdmin(c)(echoUser)(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call(checker, "admin").Code)

	rec := call(checker, "user")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Admin access required"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(checker, "ghost").Code)

	broken := checker
	broken.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, call(broken, "admin").Code)
}

func TestLoggerKeepsStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
