// Package store is the device-local persistence layer: a single SQLite
// file holding the full user collection as one serialized value plus the
// current-session user pointer. Every write replaces the whole collection,
// which keeps read-modify-write callers free of partial-update states.
// One active process per device is assumed; concurrent writers are out of
// scope.
package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/studyquiz/backend/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	usersKey       = "users"
	currentUserKey = "current_user_id"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "studyquiz.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// The store is read-modify-write over a single row; one connection
	// keeps SQLite's locking out of the picture.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := migratesqlite3.WithInstance(db, &migratesqlite3.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the persisted user collection. Nothing persisted, or a
// payload that fails to deserialize, yields an empty collection. Corrupt
// state is treated as absence, not a fatal error.
func (s *Store) Load() (map[int64]models.UserRecord, error) {
	raw, err := s.get(usersKey)
	if err == sql.ErrNoRows {
		return map[int64]models.UserRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	users := map[int64]models.UserRecord{}
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		log.Printf("Store: discarding corrupt user collection: %v", err)
		return map[int64]models.UserRecord{}, nil
	}
	return users, nil
}

// SaveAll persists the full collection, replacing prior state.
func (s *Store) SaveAll(users map[int64]models.UserRecord) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := s.put(usersKey, string(data)); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// CurrentUserID reports which user, if any, is logged in on this device.
func (s *Store) CurrentUserID() (int64, bool) {
	raw, err := s.get(currentUserKey)
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Store: discarding corrupt session pointer %q: %v", raw, err)
		return 0, false
	}
	return id, true
}

func (s *Store) SetCurrentUserID(id int64) error {
	if err := s.put(currentUserKey, strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("set session pointer: %w", err)
	}
	return nil
}

func (s *Store) ClearCurrentUserID() error {
	if _, err := s.db.Exec(`DELETE FROM app_state WHERE key = ?`, currentUserKey); err != nil {
		return fmt.Errorf("clear session pointer: %w", err)
	}
	return nil
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	return value, err
}

func (s *Store) put(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}
