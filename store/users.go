package store

import (
	"strings"

	"botwerk-server/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, email, password_hash, COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(profile_image_url, ''), COALESCE(preferences, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.ProfileImageURL, &u.Preferences, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	ts := now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	_, err = s.db.Exec(`
		INSERT INTO users (id, email, password_hash, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt)

	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.TrimSpace(email)))
}

func (s *Store) GetUserByID(id string) (*models.User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetAllUsers lists every account, newest first.
func (s *Store) GetAllUsers() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) ValidatePassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user may use the admin endpoints: an address containing
// "admin", or the first account ever registered.
func (s *Store) IsAdmin(user *models.User) (bool, error) {
	if user.HasAdminEmail() {
		return true, nil
	}
	var firstID string
	err := s.db.QueryRow(`SELECT id FROM users ORDER BY created_at, rowid LIMIT 1`).Scan(&firstID)
	if err != nil {
		return false, notFound(err)
	}
	return firstID == user.ID, nil
}

// UpdateUserProfile applies the non-nil name and email fields and replaces the preferences.
func (s *Store) UpdateUserProfile(id string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	user.Preferences = req.Preferences().Encode()
	user.UpdatedAt = now()

	_, err = s.db.Exec(`
		UPDATE users SET first_name = ?, last_name = ?, email = ?, preferences = ?, updated_at = ?
		WHERE id = ?
	`, user.FirstName, user.LastName, user.Email, user.Preferences, user.UpdatedAt, user.ID)

	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account together with its bots, sessions and messages.
func (s *Store) DeleteUser(id string) error {
	return affectedOrNotFound(s.db.Exec(`DELETE FROM users WHERE id = ?`, id))
}
