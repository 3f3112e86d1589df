package models

import "strings"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ValidThemes = map[Theme]bool{
	ThemeLight: true,
	ThemeDark:  true,
}

// Settings is replaced wholesale on update. Callers preserving sibling
// keys must send the complete object (spread semantics, no deep merge).
type Settings struct {
	Theme Theme `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{Theme: ThemeLight}
}

// UserRecord is the unit of persistence: the user plus both of their
// nested collections. AttemptHistory and CreatedQuizzes keep insertion
// order, which is chronological order.
type UserRecord struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Password       string         `json:"password"`
	Settings       Settings       `json:"settings"`
	AttemptHistory []ResultRecord `json:"attempt_history"`
	CreatedQuizzes []QuizRecord   `json:"created_quizzes"`
}

// PublicUser is the user shape returned over the API. The password stays
// server-side even though it is stored as an opaque string.
type PublicUser struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Settings Settings `json:"settings"`
}

func (u UserRecord) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Settings: u.Settings}
}

// NormalizeEmail lowercases and trims an email for lookup and uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserUpdate is a shallow partial update: nil means "leave unchanged".
// A non-nil Settings replaces the stored settings object entirely.
type UserUpdate struct {
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Password *string   `json:"password,omitempty"`
	Settings *Settings `json:"settings,omitempty"`
}

// ── Request/Response Types ─────────────────────────────

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User PublicUser `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
