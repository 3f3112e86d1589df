// Package identity manages user records and the device's current-session
// pointer on top of the store.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studyquiz/backend/internal/idgen"
	"github.com/studyquiz/backend/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Store is the persistence contract the repository needs. *store.Store
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	Load() (map[int64]models.UserRecord, error)
	SaveAll(users map[int64]models.UserRecord) error
	CurrentUserID() (int64, bool)
	SetCurrentUserID(id int64) error
	ClearCurrentUserID() error
}

type Repository struct {
	store Store
	ids   *idgen.Generator
}

func NewRepository(st Store, ids *idgen.Generator) *Repository {
	return &Repository{store: st, ids: ids}
}

func (r *Repository) FindByEmail(email string) (*models.UserRecord, error) {
	users, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	norm := models.NormalizeEmail(email)
	for _, u := range users {
		if models.NormalizeEmail(u.Email) == norm {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *Repository) FindByID(id int64) (*models.UserRecord, error) {
	users, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	user, ok := users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// Add creates a user record. The email must be unique across all records;
// on conflict the existing record is left untouched.
func (r *Repository) Add(name, email, password string) (*models.UserRecord, error) {
	users, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	norm := models.NormalizeEmail(email)
	for _, u := range users {
		if models.NormalizeEmail(u.Email) == norm {
			return nil, ErrDuplicateEmail
		}
	}

	user := models.UserRecord{
		ID:             r.ids.Next(),
		Name:           strings.TrimSpace(name),
		Email:          norm,
		Password:       password,
		Settings:       models.DefaultSettings(),
		AttemptHistory: []models.ResultRecord{},
		CreatedQuizzes: []models.QuizRecord{},
	}

	users[user.ID] = user
	if err := r.store.SaveAll(users); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update shallow-merges the supplied fields into the existing record. A
// supplied Settings object replaces the stored one wholesale. The id never
// changes.
func (r *Repository) Update(id int64, partial models.UserUpdate) (*models.UserRecord, error) {
	users, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	user, ok := users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	if partial.Name != nil {
		user.Name = strings.TrimSpace(*partial.Name)
	}
	if partial.Email != nil {
		norm := models.NormalizeEmail(*partial.Email)
		for otherID, u := range users {
			if otherID != id && models.NormalizeEmail(u.Email) == norm {
				return nil, ErrDuplicateEmail
			}
		}
		user.Email = norm
	}
	if partial.Password != nil {
		user.Password = *partial.Password
	}
	if partial.Settings != nil {
		if !models.ValidThemes[partial.Settings.Theme] {
			return nil, fmt.Errorf("unknown theme %q", partial.Settings.Theme)
		}
		user.Settings = *partial.Settings
	}

	users[id] = user
	if err := r.store.SaveAll(users); err != nil {
		return nil, err
	}
	return &user, nil
}

// Save replaces an existing record in full. Used by the quiz repository,
// which mutates the nested collections of a loaded record.
func (r *Repository) Save(user models.UserRecord) error {
	users, err := r.store.Load()
	if err != nil {
		return err
	}
	if _, ok := users[user.ID]; !ok {
		return ErrUserNotFound
	}
	users[user.ID] = user
	return r.store.SaveAll(users)
}

// Authenticate checks credentials. The stored password is an opaque
// string compared as-is; hashing is an explicit non-goal here.
func (r *Repository) Authenticate(email, password string) (*models.UserRecord, error) {
	user, err := r.FindByEmail(email)
	if err == ErrUserNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.Password != password {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ── Device Session Pointer ─────────────────────────────

func (r *Repository) CurrentUser() (*models.UserRecord, error) {
	id, ok := r.store.CurrentUserID()
	if !ok {
		return nil, ErrUserNotFound
	}
	return r.FindByID(id)
}

func (r *Repository) SetCurrentUser(id int64) error {
	return r.store.SetCurrentUserID(id)
}

func (r *Repository) ClearCurrentUser() error {
	return r.store.ClearCurrentUserID()
}
