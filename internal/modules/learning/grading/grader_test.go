package grading

import (
	"testing"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
)

func TestGradeMultipleChoice(t *testing.T) {
	q := Gradable{
		Type:          types.QuestionMultipleChoice,
		Options:       []string{"Paris", "London", "Rome", "Berlin"},
		CorrectAnswer: "A",
	}
	cases := []struct {
		submitted string
		want      bool
	}{
		{"A", true},
		{"Paris", true},
		{"London", false},
		{"B", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.submitted, func(t *testing.T) {
			got, err := Grade(q, tc.submitted)
			if err != nil {
				t.Fatalf("Grade: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Grade(%q) = %v, want %v", tc.submitted, got, tc.want)
			}
		})
	}
}

func TestGradeTrueFalse(t *testing.T) {
	cases := []struct {
		correct   string
		submitted string
		want      bool
	}{
		{"true", "a", true},
		{"true", "b", false},
		{"True", "TRUE", true},
		{"False", "b", true},
		{"False", "true", false},
		{"false", "False", true},
	}
	for _, tc := range cases {
		t.Run(tc.correct+"/"+tc.submitted, func(t *testing.T) {
			got, err := Grade(Gradable{Type: types.QuestionTrueFalse, Options: []string{"True", "False"}, CorrectAnswer: tc.correct}, tc.submitted)
			if err != nil {
				t.Fatalf("Grade: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGradeShortAnswer(t *testing.T) {
	q := Gradable{Type: types.QuestionShortAnswer, CorrectAnswer: "Photosynthesis"}
	if ok, _ := Grade(q, "photosynthesis"); !ok {
		t.Fatalf("case-insensitive match expected")
	}
	if ok, _ := Grade(q, " photosynthesis"); ok {
		t.Fatalf("no trimming is applied")
	}
}

func TestGradeDataIntegrity(t *testing.T) {
	cases := []struct {
		name string
		q    Gradable
	}{
		{"letter beyond options", Gradable{Type: types.QuestionMultipleChoice, Options: []string{"x", "y"}, CorrectAnswer: "C"}},
		{"not a letter", Gradable{Type: types.QuestionMultipleChoice, Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "E"}},
		{"bad true/false", Gradable{Type: types.QuestionTrueFalse, CorrectAnswer: "maybe"}},
		{"unknown type", Gradable{Type: "essay", CorrectAnswer: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Grade(tc.q, "A")
			if !aggregates.IsCode(err, aggregates.CodeDataIntegrity) {
				t.Fatalf("expected data_integrity, got %v", err)
			}
		})
	}
}

func TestFromQuestion(t *testing.T) {
	q := &types.Question{QuestionType: types.QuestionMultipleChoice, CorrectAnswer: "B"}
	if err := q.SetOptions([]string{"w", "x", "y", "z"}); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}
	g, err := FromQuestion(q)
	if err != nil {
		t.Fatalf("FromQuestion: %v", err)
	}
	if ok, _ := Grade(g, "x"); !ok {
		t.Fatalf("option text for B should be correct")
	}

	q.Options = []byte(`{"not":"a list"}`)
	if _, err := FromQuestion(q); !aggregates.IsCode(err, aggregates.CodeDataIntegrity) {
		t.Fatalf("expected data_integrity for malformed options, got %v", err)
	}
}
