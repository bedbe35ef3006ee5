package models

import "encoding/json"

type UserPreferences struct {
	Language           string `json:"language,omitempty"`
	Theme              string `json:"theme,omitempty"`
	EmailNotifications *bool  `json:"emailNotifications,omitempty"`
}

// ParsePreferences decodes the stored preferences column. Unreadable values are dropped.
func ParsePreferences(raw string) *UserPreferences {
	if raw == "" {
		return nil
	}
	var p UserPreferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	return &p
}

func (p UserPreferences) Encode() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

type UpdateProfileRequest struct {
	FirstName          *string `json:"firstName,omitempty"`
	LastName           *string `json:"lastName,omitempty"`
	Email              *string `json:"email,omitempty"`
	Language           string  `json:"language,omitempty"`
	Theme              string  `json:"theme,omitempty"`
	EmailNotifications *bool   `json:"emailNotifications,omitempty"`
}

// Preferences extracts the preference part of a profile update.
func (r UpdateProfileRequest) Preferences() UserPreferences {
	return UserPreferences{
		Language:           r.Language,
		Theme:              r.Theme,
		EmailNotifications: r.EmailNotifications,
	}
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
