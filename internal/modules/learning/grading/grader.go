// Package grading decides answer correctness. Grade is pure and deterministic.
package grading

import (
	"fmt"
	"strings"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
)

const op = "grading.grade"

// Gradable is the slice of a stored question the grader needs.
type Gradable struct {
	Type          types.QuestionType
	Options       []string
	CorrectAnswer string
}

// FromQuestion decodes a stored question. Undecodable options are a data integrity fault.
func FromQuestion(q *types.Question) (Gradable, error) {
	if q == nil {
		return Gradable{}, aggregates.DataIntegrity(op, "question is nil")
	}
	opts, err := q.OptionList()
	if err != nil {
		return Gradable{}, aggregates.NewError(aggregates.CodeDataIntegrity, op, "options are not a string list", err)
	}
	return Gradable{Type: q.QuestionType, Options: opts, CorrectAnswer: q.CorrectAnswer}, nil
}

// Grade returns whether submitted is correct. Errors only signal corrupt question data.
func Grade(q Gradable, submitted string) (bool, error) {
	switch q.Type {
	case types.QuestionMultipleChoice:
		return gradeMultipleChoice(q, submitted)
	case types.QuestionTrueFalse:
		return gradeTrueFalse(q, submitted)
	case types.QuestionShortAnswer:
		return strings.EqualFold(submitted, q.CorrectAnswer), nil
	default:
		return false, aggregates.DataIntegrity(op, fmt.Sprintf("unknown question type %q", q.Type))
	}
}

// A submission matches on either the letter or the verbatim option text.
func gradeMultipleChoice(q Gradable, submitted string) (bool, error) {
	letter := q.CorrectAnswer
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'D' {
		return false, aggregates.DataIntegrity(op, fmt.Sprintf("correct answer %q is not a letter A-D", letter))
	}
	idx := int(letter[0] - 'A')
	if idx >= len(q.Options) {
		return false, aggregates.DataIntegrity(op, fmt.Sprintf("correct answer %q outside %d options", letter, len(q.Options)))
	}
	return submitted == letter || submitted == q.Options[idx], nil
}

func gradeTrueFalse(q Gradable, submitted string) (bool, error) {
	correct := strings.ToLower(q.CorrectAnswer)
	if correct != "true" && correct != "false" {
		return false, aggregates.DataIntegrity(op, fmt.Sprintf("true/false answer %q is neither true nor false", q.CorrectAnswer))
	}
	answer := strings.ToLower(submitted)
	switch answer {
	case "a":
		answer = "true"
	case "b":
		answer = "false"
	}
	return answer == correct, nil
}
