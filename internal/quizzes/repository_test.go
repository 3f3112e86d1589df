package quizzes

import (
	"errors"
	"strings"
	"testing"

	"github.com/studyquiz/backend/internal/identity"
	"github.com/studyquiz/backend/internal/idgen"
	"github.com/studyquiz/backend/internal/models"
)

type fakeStore struct {
	users map[int64]models.UserRecord
}

func (f *fakeStore) Load() (map[int64]models.UserRecord, error) {
	out := make(map[int64]models.UserRecord, len(f.users))
	for k, v := range f.users {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) SaveAll(users map[int64]models.UserRecord) error {
	f.users = users
	return nil
}

func (f *fakeStore) CurrentUserID() (int64, bool)    { return 0, false }
func (f *fakeStore) SetCurrentUserID(id int64) error { return nil }
func (f *fakeStore) ClearCurrentUserID() error       { return nil }

func newTestRepo(t *testing.T) (*Repository, *fakeStore, int64) {
	t.Helper()
	st := &fakeStore{users: map[int64]models.UserRecord{}}
	ids := idgen.New()
	userRepo := identity.NewRepository(st, ids)
	user, err := userRepo.Add("Ada", "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewRepository(userRepo, ids), st, user.ID
}

func validDraft() models.QuizDraft {
	return models.QuizDraft{
		Title:       "T",
		Description: "A small quiz",
		Questions: []models.DraftQuestion{
			{Text: "First?", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 1},
			{Text: "Second?", Options: []string{"e", "f", "g", "h"}, CorrectOptionIndex: 3},
		},
	}
}

func TestCreateQuiz_AssignsIDsAndAppends(t *testing.T) {
	repo, _, userID := newTestRepo(t)

	quiz, err := repo.CreateQuiz(userID, validDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID == 0 || quiz.OwnerID != userID {
		t.Errorf("quiz identity wrong: %+v", quiz)
	}
	if quiz.Source != models.SourceManual {
		t.Errorf("expected default manual source, got %q", quiz.Source)
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(quiz.Questions))
	}

	seen := map[int64]bool{quiz.ID: true}
	for _, q := range quiz.Questions {
		if q.ID == 0 || seen[q.ID] {
			t.Errorf("question id %d not unique within the quiz", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestCreateQuiz_RoundTripThroughStore(t *testing.T) {
	repo, st, userID := newTestRepo(t)

	created, err := repo.CreateQuiz(userID, validDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Rebuild the whole stack on the same persisted state: a simulated
	// process restart.
	ids := idgen.New()
	reloaded := NewRepository(identity.NewRepository(st, ids), ids)

	quiz, err := reloaded.GetQuiz(userID, created.ID)
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if quiz.Title != "T" || quiz.Description != "A small quiz" {
		t.Errorf("quiz fields lost: %+v", quiz)
	}
	for i, q := range quiz.Questions {
		if q.Text != created.Questions[i].Text || q.CorrectOptionIndex != created.Questions[i].CorrectOptionIndex {
			t.Errorf("question %d changed in round trip: %+v", i, q)
		}
	}
}

func TestCreateQuiz_ValidationCollectsAllProblems(t *testing.T) {
	repo, _, userID := newTestRepo(t)

	_, err := repo.CreateQuiz(userID, models.QuizDraft{
		Title:       " ",
		Description: "",
		Questions: []models.DraftQuestion{
			{Text: "", Options: []string{"a", "b", "c", ""}, CorrectOptionIndex: 7},
			{Text: "Short options", Options: []string{"a", "b"}, CorrectOptionIndex: 0},
		},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	for _, want := range []string{"title", "description", "empty text", "option 4 is empty", "out of range", "expected 4 options"} {
		found := false
		for _, msg := range verr.Errors {
			if strings.Contains(msg, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("expected a message containing %q, got: %v", want, verr.Errors)
		}
	}
}

func TestCreateQuiz_FailedValidationTouchesNothing(t *testing.T) {
	repo, st, userID := newTestRepo(t)

	if _, err := repo.CreateQuiz(userID, models.QuizDraft{Title: "T", Description: "D"}); err == nil {
		t.Fatal("expected zero-question draft to fail")
	}

	user := st.users[userID]
	if len(user.CreatedQuizzes) != 0 || len(user.AttemptHistory) != 0 {
		t.Errorf("failed validation must leave collections untouched: %+v", user)
	}
}

func TestCreateQuiz_UnknownUser(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	if _, err := repo.CreateQuiz(999, validDraft()); !errors.Is(err, identity.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestUpdateQuiz_PartialMerge(t *testing.T) {
	repo, _, userID := newTestRepo(t)
	quiz, _ := repo.CreateQuiz(userID, validDraft())

	title := "Renamed"
	updated, err := repo.UpdateQuiz(userID, quiz.ID, models.QuizUpdate{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title not updated: %q", updated.Title)
	}
	if updated.Description != quiz.Description || len(updated.Questions) != 2 {
		t.Errorf("unrelated fields changed: %+v", updated)
	}
	if updated.Questions[0].ID != quiz.Questions[0].ID {
		t.Error("questions must keep their ids when not replaced")
	}
}

func TestUpdateQuiz_ReplacementQuestionsGetFreshIDs(t *testing.T) {
	repo, _, userID := newTestRepo(t)
	quiz, _ := repo.CreateQuiz(userID, validDraft())

	oldIDs := map[int64]bool{}
	for _, q := range quiz.Questions {
		oldIDs[q.ID] = true
	}

	replacement := []models.DraftQuestion{
		{Text: "New?", Options: []string{"1", "2", "3", "4"}, CorrectOptionIndex: 0},
	}
	updated, err := repo.UpdateQuiz(userID, quiz.ID, models.QuizUpdate{Questions: &replacement})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(updated.Questions))
	}
	if oldIDs[updated.Questions[0].ID] {
		t.Error("a replaced question reused a retired id")
	}
}

func TestUpdateQuiz_NotFound(t *testing.T) {
	repo, _, userID := newTestRepo(t)

	title := "X"
	if _, err := repo.UpdateQuiz(userID, 12345, models.QuizUpdate{Title: &title}); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("expected ErrQuizNotFound, got: %v", err)
	}
}

func TestUpdateQuiz_InvalidReplacementRejected(t *testing.T) {
	repo, _, userID := newTestRepo(t)
	quiz, _ := repo.CreateQuiz(userID, validDraft())

	bad := []models.DraftQuestion{{Text: "", Options: []string{"a"}, CorrectOptionIndex: 9}}
	if _, err := repo.UpdateQuiz(userID, quiz.ID, models.QuizUpdate{Questions: &bad}); err == nil {
		t.Fatal("expected validation error")
	}

	// Original questions must survive the rejected update.
	got, err := repo.GetQuiz(userID, quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Questions) != 2 {
		t.Errorf("rejected update corrupted the quiz: %+v", got.Questions)
	}
}

func TestDeleteQuiz_RemovesOnlyTarget(t *testing.T) {
	repo, _, userID := newTestRepo(t)
	first, _ := repo.CreateQuiz(userID, validDraft())
	second, _ := repo.CreateQuiz(userID, validDraft())

	if err := repo.DeleteQuiz(userID, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	quizzes, _ := repo.ListQuizzes(userID)
	if len(quizzes) != 1 || quizzes[0].ID != second.ID {
		t.Errorf("sibling quiz corrupted by delete: %+v", quizzes)
	}
}

func TestDeleteQuiz_AbsentIDIsNoOp(t *testing.T) {
	repo, _, userID := newTestRepo(t)

	if err := repo.DeleteQuiz(userID, 98765); err != nil {
		t.Errorf("deleting an absent quiz must succeed, got: %v", err)
	}
}

func TestSaveResult_AppendsInChronologicalOrder(t *testing.T) {
	repo, _, userID := newTestRepo(t)

	first, err := repo.SaveResult(userID, models.ResultSubmission{QuizID: 1, QuizTitle: "T", Score: 1, TotalQuestions: 2, Percentage: 50})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := repo.SaveResult(userID, models.ResultSubmission{QuizID: 1, QuizTitle: "T", Score: 2, TotalQuestions: 2, Percentage: 100})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == second.ID {
		t.Error("results must get distinct ids")
	}
	if first.CompletedAt.IsZero() {
		t.Error("expected a completion timestamp")
	}

	results, _ := repo.ListResults(userID)
	if len(results) != 2 || results[0].ID != first.ID || results[1].ID != second.ID {
		t.Errorf("insertion order lost: %+v", results)
	}
}

func TestSaveResult_SurvivesQuizDeletion(t *testing.T) {
	repo, _, userID := newTestRepo(t)
	quiz, _ := repo.CreateQuiz(userID, validDraft())

	if err := repo.DeleteQuiz(userID, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	result, err := repo.SaveResult(userID, models.ResultSubmission{
		QuizID: quiz.ID, QuizTitle: quiz.Title, Score: 2, TotalQuestions: 2, Percentage: 100,
	})
	if err != nil {
		t.Fatalf("saving a result for a deleted quiz must work: %v", err)
	}
	if result.QuizTitle != quiz.Title {
		t.Errorf("snapshot title lost: %q", result.QuizTitle)
	}
}

func TestSaveResult_RejectsImpossibleTotals(t *testing.T) {
	repo, _, userID := newTestRepo(t)

	_, err := repo.SaveResult(userID, models.ResultSubmission{Score: -1, TotalQuestions: 0})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got: %v", err)
	}
}

func TestDeleteResult_RemovesOnlyMatch(t *testing.T) {
	repo, _, userID := newTestRepo(t)
	first, _ := repo.SaveResult(userID, models.ResultSubmission{QuizID: 1, QuizTitle: "T", Score: 1, TotalQuestions: 2, Percentage: 50})
	second, _ := repo.SaveResult(userID, models.ResultSubmission{QuizID: 1, QuizTitle: "T", Score: 2, TotalQuestions: 2, Percentage: 100})

	if err := repo.DeleteResult(userID, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	results, _ := repo.ListResults(userID)
	if len(results) != 1 || results[0].ID != second.ID {
		t.Errorf("sibling result corrupted: %+v", results)
	}

	if err := repo.DeleteResult(userID, first.ID); err != nil {
		t.Errorf("deleting an absent result must succeed, got: %v", err)
	}
}
