// Package session drives one quiz attempt from first question to
// submission: an answer vector of unanswered sentinels, free navigation,
// a submission gate, scoring, and an atomic commit of the result.
package session

import (
	"errors"
	"fmt"

	"github.com/studyquiz/backend/internal/models"
)

var (
	ErrIncompleteAnswers = errors.New("all questions must be answered before submitting")
	ErrAlreadySubmitted  = errors.New("session already submitted")
	ErrInvalidOption     = errors.New("option index out of range")
	ErrInvalidIndex      = errors.New("question index out of range")
)

type State string

const (
	StateAnswering State = "answering"
	StateSubmitted State = "submitted"
)

// ResultSaver persists a finished attempt. Satisfied by
// *quizzes.Repository.
type ResultSaver interface {
	SaveResult(userID int64, sub models.ResultSubmission) (*models.ResultRecord, error)
}

// Session is the in-memory state machine for one attempt. It is built for
// a single caller; restarting an attempt means constructing a new one.
type Session struct {
	userID  int64
	quiz    models.QuizRecord
	answers []int
	index   int
	state   State
	results ResultSaver
	result  *models.ResultRecord
}

func New(userID int64, quiz models.QuizRecord, results ResultSaver) (*Session, error) {
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz %d has no questions", quiz.ID)
	}

	answers := make([]int, len(quiz.Questions))
	for i := range answers {
		answers[i] = models.UnansweredIndex
	}

	return &Session{
		userID:  userID,
		quiz:    quiz,
		answers: answers,
		state:   StateAnswering,
		results: results,
	}, nil
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Quiz() models.QuizRecord {
	return s.quiz
}

func (s *Session) CurrentIndex() int {
	return s.index
}

func (s *Session) CurrentQuestion() models.QuestionRecord {
	return s.quiz.Questions[s.index]
}

// Answers returns a copy of the answer vector.
func (s *Session) Answers() []int {
	return append([]int(nil), s.answers...)
}

func (s *Session) AnsweredCount() int {
	count := 0
	for _, a := range s.answers {
		if a != models.UnansweredIndex {
			count++
		}
	}
	return count
}

// Result returns the persisted result after a successful submit.
func (s *Session) Result() *models.ResultRecord {
	return s.result
}

// SelectOption records an answer for the current question, overwriting
// any prior selection. It never advances. An out-of-range option index is
// a caller contract violation: rejected, no state change.
func (s *Session) SelectOption(optionIndex int) error {
	if s.state != StateAnswering {
		return ErrAlreadySubmitted
	}
	if optionIndex < 0 || optionIndex >= len(s.quiz.Questions[s.index].Options) {
		return ErrInvalidOption
	}
	s.answers[s.index] = optionIndex
	return nil
}

// GoTo moves to an arbitrary valid question index. Navigating back to
// answered questions is allowed; learners revisit.
func (s *Session) GoTo(index int) error {
	if s.state != StateAnswering {
		return ErrAlreadySubmitted
	}
	if index < 0 || index >= len(s.quiz.Questions) {
		return ErrInvalidIndex
	}
	s.index = index
	return nil
}

// Next moves forward one question, clamped at the last. Gating on the
// current question being answered is presentation-layer policy, not the
// engine's.
func (s *Session) Next() {
	if s.state != StateAnswering {
		return
	}
	if s.index < len(s.quiz.Questions)-1 {
		s.index++
	}
}

// Previous moves back one question, clamped at the first.
func (s *Session) Previous() {
	if s.state != StateAnswering {
		return
	}
	if s.index > 0 {
		s.index--
	}
}

// Submit scores the attempt and persists the result. It is rejected
// while any slot is unanswered. Persistence and the transition to
// Submitted are atomic from the caller's view: if saving fails the
// session stays in Answering.
func (s *Session) Submit() (*models.ResultRecord, error) {
	if s.state != StateAnswering {
		return nil, ErrAlreadySubmitted
	}
	for _, a := range s.answers {
		if a == models.UnansweredIndex {
			return nil, ErrIncompleteAnswers
		}
	}

	total := len(s.quiz.Questions)
	answers := make([]models.AnswerRecord, total)
	score := 0
	for i, q := range s.quiz.Questions {
		selected := s.answers[i]
		correct := selected == q.CorrectOptionIndex
		if correct {
			score++
		}
		answers[i] = models.AnswerRecord{
			QuestionID:          q.ID,
			QuestionText:        q.Text,
			SelectedOptionIndex: selected,
			CorrectOptionIndex:  q.CorrectOptionIndex,
			IsCorrect:           correct,
		}
	}

	result, err := s.results.SaveResult(s.userID, models.ResultSubmission{
		QuizID:         s.quiz.ID,
		QuizTitle:      s.quiz.Title,
		Score:          score,
		TotalQuestions: total,
		Percentage:     100 * float64(score) / float64(total),
		Answers:        answers,
	})
	if err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	s.state = StateSubmitted
	s.result = result
	return result, nil
}
