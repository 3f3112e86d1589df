package models

import "time"

type QuizSource string

const (
	SourceManual      QuizSource = "manual"
	SourceAIGenerated QuizSource = "ai-generated"
)

var ValidQuizSources = map[QuizSource]bool{
	SourceManual:      true,
	SourceAIGenerated: true,
}

// OptionCount is the fixed number of options a persisted question carries.
const OptionCount = 4

// UnansweredIndex marks an answer slot with no selection yet.
const UnansweredIndex = -1

// QuizRecord is a quiz the user created, manually or from generated text.
// Question order is presentation order and is fixed after creation.
type QuizRecord struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	OwnerID     int64            `json:"owner_id"`
	CreatedDate time.Time        `json:"created_date"`
	Source      QuizSource       `json:"source"`
	Questions   []QuestionRecord `json:"questions"`
}

type QuestionRecord struct {
	ID                 int64    `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

// ResultRecord is a historical fact: never mutated after creation, and it
// snapshots the quiz title and question text so history survives quiz
// edits and deletes.
type ResultRecord struct {
	ID             int64          `json:"id"`
	QuizID         int64          `json:"quiz_id"`
	QuizTitle      string         `json:"quiz_title"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Percentage     float64        `json:"percentage"`
	CompletedAt    time.Time      `json:"completed_at"`
	Answers        []AnswerRecord `json:"answers"`
}

type AnswerRecord struct {
	QuestionID          int64  `json:"question_id"`
	QuestionText        string `json:"question_text"`
	SelectedOptionIndex int    `json:"selected_option_index"`
	CorrectOptionIndex  int    `json:"correct_option_index"`
	IsCorrect           bool   `json:"is_correct"`
}

// ── Draft/Update Types ─────────────────────────────────

// QuizDraft is caller-supplied quiz data awaiting validation and id
// assignment.
type QuizDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Source      QuizSource      `json:"source,omitempty"`
	Questions   []DraftQuestion `json:"questions"`
}

type DraftQuestion struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

// QuizUpdate is a shallow partial update. Replacement questions are
// revalidated and assigned fresh ids. Edited quizzes never reuse ids.
type QuizUpdate struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Questions   *[]DraftQuestion `json:"questions,omitempty"`
}

// ResultSubmission is a ResultRecord before the repository assigns its id
// and completion time.
type ResultSubmission struct {
	QuizID         int64          `json:"quiz_id"`
	QuizTitle      string         `json:"quiz_title"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Percentage     float64        `json:"percentage"`
	Answers        []AnswerRecord `json:"answers"`
}

// ── Generation Types ───────────────────────────────────

type GenerateQuizRequest struct {
	Notes string `json:"notes"`
	Count int    `json:"count"`
}

type GenerateQuizResponse struct {
	Questions []DraftQuestion `json:"questions"`
	Complete  bool            `json:"complete"`
}
