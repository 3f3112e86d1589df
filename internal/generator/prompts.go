package generator

import (
	"fmt"
	"strings"
)

// QuizSystemPrompt pins the model to the marker format ParseQuizText
// understands. The parser tolerates surrounding prose, but a tight format
// contract keeps the yield high.
func QuizSystemPrompt() string {
	return strings.TrimSpace(`
You are a quiz author. You turn a learner's study notes into multiple-choice
questions that test understanding of the material in the notes, not trivia
about their wording.

Output format — follow it exactly, with no introduction and no commentary:

Q1: <question text on one line>
A) <option text>
B) <option text>
C) <option text>
D) <option text>
Correct: <A, B, C, or D>

Number questions sequentially (Q1:, Q2:, ...). Every question has exactly
four options and exactly one Correct line. Wrong options must be plausible.
`)
}

func BuildQuizPrompt(notes string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d multiple-choice questions from these study notes.\n\n", count)
	b.WriteString("STUDY NOTES:\n")
	b.WriteString(strings.TrimSpace(notes))
	b.WriteString("\n\nRemember: marker format only, four options per question, one Correct line each.")
	return b.String()
}
