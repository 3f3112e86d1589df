// Package quizzes manages the two per-user collections: created quizzes
// and attempt history. Every mutation loads the owning user record,
// validates, mutates a copy, and writes the whole record back, so a failed
// validation leaves all collections untouched, and sibling records are
// never corrupted.
package quizzes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studyquiz/backend/internal/identity"
	"github.com/studyquiz/backend/internal/idgen"
	"github.com/studyquiz/backend/internal/models"
)

var ErrQuizNotFound = errors.New("quiz not found")

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

type Repository struct {
	users *identity.Repository
	ids   *idgen.Generator
}

func NewRepository(users *identity.Repository, ids *idgen.Generator) *Repository {
	return &Repository{users: users, ids: ids}
}

// CreateQuiz validates a draft, assigns fresh ids to the quiz and every
// question, and appends it to the user's created quizzes.
func (r *Repository) CreateQuiz(userID int64, draft models.QuizDraft) (*models.QuizRecord, error) {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if verr := validateDraft(draft); verr != nil {
		return nil, verr
	}

	source := draft.Source
	if source == "" {
		source = models.SourceManual
	}
	if !models.ValidQuizSources[source] {
		return nil, &ValidationError{Errors: []string{fmt.Sprintf("unknown quiz source %q", source)}}
	}

	quiz := models.QuizRecord{
		ID:          r.ids.Next(),
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		OwnerID:     userID,
		CreatedDate: time.Now(),
		Source:      source,
		Questions:   r.buildQuestions(draft.Questions),
	}

	user.CreatedQuizzes = append(user.CreatedQuizzes, quiz)
	if err := r.users.Save(*user); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// UpdateQuiz shallow-merges the supplied fields. Replacement questions
// are revalidated and assigned fresh ids; an edited quiz never reuses an
// id from a removed question.
func (r *Repository) UpdateQuiz(userID, quizID int64, partial models.QuizUpdate) (*models.QuizRecord, error) {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	idx := quizIndex(user.CreatedQuizzes, quizID)
	if idx < 0 {
		return nil, ErrQuizNotFound
	}

	var errs []string
	quiz := user.CreatedQuizzes[idx]

	if partial.Title != nil {
		if strings.TrimSpace(*partial.Title) == "" {
			errs = append(errs, "title must not be empty")
		} else {
			quiz.Title = strings.TrimSpace(*partial.Title)
		}
	}
	if partial.Description != nil {
		if strings.TrimSpace(*partial.Description) == "" {
			errs = append(errs, "description must not be empty")
		} else {
			quiz.Description = strings.TrimSpace(*partial.Description)
		}
	}
	if partial.Questions != nil {
		errs = append(errs, validateQuestions(*partial.Questions)...)
		if len(errs) == 0 {
			quiz.Questions = r.buildQuestions(*partial.Questions)
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	user.CreatedQuizzes[idx] = quiz
	if err := r.users.Save(*user); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// DeleteQuiz removes a quiz from the user's created quizzes. Deleting an
// id that is already absent is a successful no-op. Attempt history is not
// touched: results carry their own snapshots.
func (r *Repository) DeleteQuiz(userID, quizID int64) error {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return err
	}

	kept := user.CreatedQuizzes[:0:0]
	for _, q := range user.CreatedQuizzes {
		if q.ID != quizID {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(user.CreatedQuizzes) {
		return nil
	}

	user.CreatedQuizzes = kept
	return r.users.Save(*user)
}

func (r *Repository) GetQuiz(userID, quizID int64) (*models.QuizRecord, error) {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	idx := quizIndex(user.CreatedQuizzes, quizID)
	if idx < 0 {
		return nil, ErrQuizNotFound
	}
	quiz := user.CreatedQuizzes[idx]
	return &quiz, nil
}

func (r *Repository) ListQuizzes(userID int64) ([]models.QuizRecord, error) {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return user.CreatedQuizzes, nil
}

// SaveResult assigns an id and completion time and appends the result to
// the user's attempt history. The referenced quiz may already be deleted;
// the submission snapshots everything the history needs, so this never
// checks quiz existence.
func (r *Repository) SaveResult(userID int64, sub models.ResultSubmission) (*models.ResultRecord, error) {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	var errs []string
	if sub.Score < 0 {
		errs = append(errs, "score must not be negative")
	}
	if sub.TotalQuestions <= 0 {
		errs = append(errs, "total questions must be positive")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	result := models.ResultRecord{
		ID:             r.ids.Next(),
		QuizID:         sub.QuizID,
		QuizTitle:      sub.QuizTitle,
		Score:          sub.Score,
		TotalQuestions: sub.TotalQuestions,
		Percentage:     sub.Percentage,
		CompletedAt:    time.Now(),
		Answers:        sub.Answers,
	}

	user.AttemptHistory = append(user.AttemptHistory, result)
	if err := r.users.Save(*user); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteResult removes a result from the attempt history. Absent ids are
// a successful no-op, mirroring DeleteQuiz.
func (r *Repository) DeleteResult(userID, resultID int64) error {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return err
	}

	kept := user.AttemptHistory[:0:0]
	for _, res := range user.AttemptHistory {
		if res.ID != resultID {
			kept = append(kept, res)
		}
	}
	if len(kept) == len(user.AttemptHistory) {
		return nil
	}

	user.AttemptHistory = kept
	return r.users.Save(*user)
}

func (r *Repository) ListResults(userID int64) ([]models.ResultRecord, error) {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return user.AttemptHistory, nil
}

func (r *Repository) buildQuestions(drafts []models.DraftQuestion) []models.QuestionRecord {
	questions := make([]models.QuestionRecord, len(drafts))
	for i, d := range drafts {
		questions[i] = models.QuestionRecord{
			ID:                 r.ids.Next(),
			Text:               strings.TrimSpace(d.Text),
			Options:            append([]string(nil), d.Options...),
			CorrectOptionIndex: d.CorrectOptionIndex,
		}
	}
	return questions
}

func quizIndex(quizzes []models.QuizRecord, quizID int64) int {
	for i, q := range quizzes {
		if q.ID == quizID {
			return i
		}
	}
	return -1
}

func validateDraft(draft models.QuizDraft) *ValidationError {
	var errs []string

	if strings.TrimSpace(draft.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if strings.TrimSpace(draft.Description) == "" {
		errs = append(errs, "description must not be empty")
	}
	errs = append(errs, validateQuestions(draft.Questions)...)

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validateQuestions(questions []models.DraftQuestion) []string {
	var errs []string

	if len(questions) == 0 {
		errs = append(errs, "quiz needs at least one question")
	}

	for i, q := range questions {
		qNum := i + 1

		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty text", qNum))
		}
		if len(q.Options) != models.OptionCount {
			errs = append(errs, fmt.Sprintf("question %d: expected %d options, got %d", qNum, models.OptionCount, len(q.Options)))
			continue
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				errs = append(errs, fmt.Sprintf("question %d: option %d is empty", qNum, j+1))
			}
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			errs = append(errs, fmt.Sprintf("question %d: correct option index %d out of range", qNum, q.CorrectOptionIndex))
		}
	}
	return errs
}
