package session

import (
	"sync"

	"github.com/studyquiz/backend/internal/models"
)

// QuizLoader fetches a quiz definition for a user. Satisfied by
// *quizzes.Repository.
type QuizLoader interface {
	GetQuiz(userID, quizID int64) (*models.QuizRecord, error)
}

// Manager holds at most one active session per user. The engine itself is
// single-caller; the mutex only guards the registry, which concurrent
// HTTP handlers touch.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	quizzes  QuizLoader
	results  ResultSaver
}

func NewManager(quizzes QuizLoader, results ResultSaver) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		quizzes:  quizzes,
		results:  results,
	}
}

// Start constructs a fresh session from the quiz definition, replacing
// any previous session for the user. Restart-after-submit is the same
// operation.
func (m *Manager) Start(userID, quizID int64) (*Session, error) {
	quiz, err := m.quizzes.GetQuiz(userID, quizID)
	if err != nil {
		return nil, err
	}

	sess, err := New(userID, *quiz, m.results)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[userID] = sess
	m.mu.Unlock()
	return sess, nil
}

// Get returns the user's active session, if any.
func (m *Manager) Get(userID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	return sess, ok
}

// End drops the user's active session.
func (m *Manager) End(userID int64) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}
