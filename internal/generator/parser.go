package generator

import (
	"regexp"
	"strings"

	"github.com/studyquiz/backend/internal/models"
)

// ParsedQuestion is raw parser output. It may be incomplete (fewer than
// four options, or an unresolved correct index) because the parser keeps
// malformed questions and leaves completeness checks to the create-quiz
// gate.
type ParsedQuestion struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

// ParseResult wraps the parsed sequence so callers have to confront the
// empty case explicitly instead of proceeding with zero questions.
type ParseResult struct {
	Questions []ParsedQuestion `json:"questions"`
}

func (r ParseResult) Empty() bool {
	return len(r.Questions) == 0
}

// Complete reports whether every parsed question would pass the
// create-quiz validation gate: four options and an in-range correct index.
func (r ParseResult) Complete() bool {
	if r.Empty() {
		return false
	}
	for _, q := range r.Questions {
		if strings.TrimSpace(q.Text) == "" || len(q.Options) != models.OptionCount {
			return false
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return false
		}
	}
	return true
}

// DraftQuestions converts the parse output into draft questions for the
// quiz repository.
func (r ParseResult) DraftQuestions() []models.DraftQuestion {
	drafts := make([]models.DraftQuestion, len(r.Questions))
	for i, q := range r.Questions {
		drafts[i] = models.DraftQuestion{
			Text:               q.Text,
			Options:            append([]string(nil), q.Options...),
			CorrectOptionIndex: q.CorrectOptionIndex,
		}
	}
	return drafts
}

var (
	markerRe  = regexp.MustCompile(`(?m)^[ \t]*Q\d+:[ \t]*`)
	optionRe  = regexp.MustCompile(`^[ \t]*([A-D])\)[ \t]*(.*)$`)
	correctRe = regexp.MustCompile(`^[ \t]*Correct:[ \t]*([A-Za-z])`)
)

// ParseQuizText converts a raw text completion into an ordered question
// sequence. It is pure and deterministic: same input, same output, no
// side effects.
//
// The text is segmented on `Q<integer>:` markers; anything before the
// first marker is ignored. Within a block, the first non-blank line is
// the question text, later lines matching `<Letter>) text` become options
// in order of appearance, and a `Correct: <Letter>` line resolves the
// correct index by alphabet offset. An absent correct line leaves the
// index at -1; a letter outside A-D keeps its raw offset, out of range.
// Duplicate marker numerals produce separate questions. Position, not
// the numeral, is identity.
func ParseQuizText(raw string) ParseResult {
	markers := markerRe.FindAllStringIndex(raw, -1)

	var questions []ParsedQuestion
	for i, loc := range markers {
		end := len(raw)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		questions = append(questions, parseBlock(raw[loc[1]:end]))
	}
	return ParseResult{Questions: questions}
}

func parseBlock(block string) ParsedQuestion {
	q := ParsedQuestion{CorrectOptionIndex: models.UnansweredIndex}

	textFound := false
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if !textFound {
			q.Text = trimmed
			textFound = true
			continue
		}

		if m := optionRe.FindStringSubmatch(line); m != nil {
			if len(q.Options) < models.OptionCount {
				q.Options = append(q.Options, strings.TrimSpace(m[2]))
			}
			continue
		}

		if m := correctRe.FindStringSubmatch(line); m != nil {
			letter := strings.ToUpper(m[1])[0]
			q.CorrectOptionIndex = int(letter - 'A')
		}
	}
	return q
}
