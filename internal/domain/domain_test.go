package domain

import (
	"testing"
	"time"
)

func TestQuestionOptionsRoundTrip(t *testing.T) {
	q := &Question{}
	if opts, err := q.OptionList(); err != nil || opts != nil {
		t.Fatalf("empty options should decode to nil, got %v %v", opts, err)
	}
	if err := q.SetOptions([]string{"Paris", "London"}); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}
	opts, err := q.OptionList()
	if err != nil || len(opts) != 2 || opts[1] != "London" {
		t.Fatalf("OptionList = %v, %v", opts, err)
	}
	if err := q.SetOptions(nil); err != nil {
		t.Fatalf("SetOptions(nil): %v", err)
	}
	if string(q.Options) != "[]" {
		t.Fatalf("nil options should persist as [], got %s", q.Options)
	}
}

func TestExamSessionPerformance(t *testing.T) {
	s := &ExamSession{Score: 3, TotalQuestions: 4}
	if got := s.PerformancePercentage(); got != 75 {
		t.Fatalf("PerformancePercentage = %v", got)
	}
	if !s.Active() {
		t.Fatalf("session without completion should be active")
	}
	now := time.Now()
	s.CompletedAt = &now
	if s.Active() {
		t.Fatalf("completed session reported active")
	}
	if (&ExamSession{}).PerformancePercentage() != 0 {
		t.Fatalf("empty session should report 0")
	}
}

func TestChapterKeywords(t *testing.T) {
	c := &Chapter{}
	if c.KeywordList() != nil {
		t.Fatalf("expected nil keywords")
	}
	if err := c.SetKeywords([]string{"stack", "queue"}); err != nil {
		t.Fatalf("SetKeywords: %v", err)
	}
	if got := c.KeywordList(); len(got) != 2 || got[0] != "stack" {
		t.Fatalf("KeywordList = %v", got)
	}
}
