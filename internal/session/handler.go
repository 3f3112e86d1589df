package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/studyquiz/backend/internal/models"
	"github.com/studyquiz/backend/internal/quizzes"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

type startRequest struct {
	QuizID int64 `json:"quiz_id"`
}

type answerRequest struct {
	OptionIndex int `json:"option_index"`
}

type gotoRequest struct {
	Index int `json:"index"`
}

// sessionView is the session state the presentation layer renders. The
// full quiz rides along: this is a single-learner device app, the learner
// owns the answer key.
type sessionView struct {
	State          State                `json:"state"`
	Quiz           models.QuizRecord    `json:"quiz"`
	CurrentIndex   int                  `json:"current_index"`
	Answers        []int                `json:"answers"`
	AnsweredCount  int                  `json:"answered_count"`
	TotalQuestions int                  `json:"total_questions"`
	Result         *models.ResultRecord `json:"result,omitempty"`
}

func view(s *Session) sessionView {
	return sessionView{
		State:          s.State(),
		Quiz:           s.Quiz(),
		CurrentIndex:   s.CurrentIndex(),
		Answers:        s.Answers(),
		AnsweredCount:  s.AnsweredCount(),
		TotalQuestions: len(s.Quiz().Questions),
		Result:         s.Result(),
	}
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	sess, err := h.manager.Start(userID, req.QuizID)
	if errors.Is(err, quizzes.ErrQuizNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, view(sess))
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

func (h *Handler) SelectOption(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.current(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := sess.SelectOption(req.OptionIndex); err != nil {
		respondStateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

func (h *Handler) GoTo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.current(w, r)
	if !ok {
		return
	}

	var req gotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := sess.GoTo(req.Index); err != nil {
		respondStateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.current(w, r)
	if !ok {
		return
	}
	sess.Next()
	writeJSON(w, http.StatusOK, view(sess))
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.current(w, r)
	if !ok {
		return
	}
	sess.Previous()
	writeJSON(w, http.StatusOK, view(sess))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.current(w, r)
	if !ok {
		return
	}

	if _, err := sess.Submit(); err != nil {
		respondStateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

// End discards the active session without scoring it. Abandoning an
// attempt leaves no trace in the history.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)
	h.manager.End(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	userID := r.Context().Value("user_id").(int64)
	sess, ok := h.manager.Get(userID)
	if !ok {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "No active session"})
		return nil, false
	}
	return sess, true
}

func respondStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrIncompleteAnswers):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrAlreadySubmitted):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInvalidOption), errors.Is(err, ErrInvalidIndex):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
