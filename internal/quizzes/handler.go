package quizzes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/studyquiz/backend/internal/generator"
	"github.com/studyquiz/backend/internal/identity"
	"github.com/studyquiz/backend/internal/models"
)

// QuizGenerator produces draft questions from study notes. Satisfied by
// *generator.Generator; tests substitute a canned implementation.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, notes string, count int) (generator.ParseResult, *generator.LLMResponse, error)
}

type Handler struct {
	repo *Repository
	gen  QuizGenerator
}

func NewHandler(repo *Repository, gen QuizGenerator) *Handler {
	return &Handler{repo: repo, gen: gen}
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	quizzes, err := h.repo.ListQuizzes(userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []models.QuizRecord{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	var draft models.QuizDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	quiz, err := h.repo.CreateQuiz(userID, draft)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)
	quizID, ok := pathID(w, r)
	if !ok {
		return
	}

	quiz, err := h.repo.GetQuiz(userID, quizID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)
	quizID, ok := pathID(w, r)
	if !ok {
		return
	}

	var partial models.QuizUpdate
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	quiz, err := h.repo.UpdateQuiz(userID, quizID, partial)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)
	quizID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteQuiz(userID, quizID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	results, err := h.repo.ListResults(userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if results == nil {
		results = []models.ResultRecord{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)
	resultID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteResult(userID, resultID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateQuiz turns study notes into draft questions. Zero parsed
// questions is a normal outcome the frontend handles by prompting a
// retry, so the response stays 200 with an empty sequence.
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Notes == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Notes are required"})
		return
	}
	if req.Count <= 0 {
		req.Count = 5
	}

	parsed, _, err := h.gen.GenerateQuiz(r.Context(), req.Notes, req.Count)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Quiz generation failed"})
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateQuizResponse{
		Questions: parsed.DraftQuestions(),
		Complete:  parsed.Complete(),
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid id"})
		return 0, false
	}
	return id, true
}

func respondError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: verr.Error()})
	case errors.Is(err, ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
	case errors.Is(err, identity.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
