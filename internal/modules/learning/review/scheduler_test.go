package review

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func TestMissCreatesStageOne(t *testing.T) {
	s := NewDefaultScheduler()
	st := s.Miss(t0)
	if st.Stage != 1 || st.LastReviewedAt == nil || !st.LastReviewedAt.Equal(t0) {
		t.Fatalf("unexpected state %+v", st)
	}
	if !st.NextReviewAt.Equal(t0.Add(24 * time.Hour)) {
		t.Fatalf("next review = %v", st.NextReviewAt)
	}
}

func TestCompleteTransitions(t *testing.T) {
	s := NewDefaultScheduler()
	cases := []struct {
		stage     int
		wantStage int
		wantDelay time.Duration
		remove    bool
	}{
		{1, 2, 1 * day, false},
		{2, 3, 3 * day, false},
		{3, 4, 7 * day, false},
		{4, 5, 14 * day, false},
		{5, 0, 0, true},
	}
	for _, tc := range cases {
		next, out := s.Complete(State{Stage: tc.stage}, t0)
		if tc.remove {
			if out != OutcomeRemove {
				t.Fatalf("stage %d: expected removal", tc.stage)
			}
			continue
		}
		if out != OutcomeKeep || next.Stage != tc.wantStage {
			t.Fatalf("stage %d: got stage %d outcome %v", tc.stage, next.Stage, out)
		}
		if next.LastReviewedAt == nil || !next.LastReviewedAt.Equal(t0) {
			t.Fatalf("stage %d: last reviewed not set to now", tc.stage)
		}
		if got := next.NextReviewAt.Sub(*next.LastReviewedAt); got != tc.wantDelay {
			t.Fatalf("stage %d: next - last = %v, want %v", tc.stage, got, tc.wantDelay)
		}
	}
}

func TestSkipAlwaysRemoves(t *testing.T) {
	s := NewDefaultScheduler()
	for stage := 1; stage <= 5; stage++ {
		_, out, err := s.Apply(State{Stage: stage}, ActionSkip, t0)
		if err != nil || out != OutcomeRemove {
			t.Fatalf("stage %d: skip gave %v, %v", stage, out, err)
		}
	}
	if _, _, err := s.Apply(State{Stage: 1}, Action("snooze"), t0); err == nil {
		t.Fatalf("unknown action should fail")
	}
}

func TestNewSchedulerValidation(t *testing.T) {
	if _, err := NewScheduler(Intervals{}); err == nil {
		t.Fatalf("empty table should fail")
	}
	if _, err := NewScheduler(Intervals{1: day, 3: day}); err == nil {
		t.Fatalf("gap in table should fail")
	}
	s, err := NewScheduler(Intervals{1: day, 2: 7 * day, 3: 16 * day, 4: 35 * day})
	if err != nil || s.MaxStage() != 4 {
		t.Fatalf("four-stage table: %v max=%d", err, s.MaxStage())
	}
}

func TestDueAndDaysUntil(t *testing.T) {
	if !IsDue(State{NextReviewAt: t0}, t0) {
		t.Fatalf("next == now is due")
	}
	if IsDue(State{NextReviewAt: t0.Add(time.Minute)}, t0) {
		t.Fatalf("future review is not due")
	}
	cases := []struct {
		next time.Time
		want int
	}{
		{t0.Add(36 * time.Hour), 1},
		{t0.Add(3 * day), 3},
		{t0.Add(-time.Hour), -1},
		{t0, 0},
	}
	for _, tc := range cases {
		if got := DaysUntil(tc.next, t0); got != tc.want {
			t.Fatalf("DaysUntil(%v) = %d, want %d", tc.next.Sub(t0), got, tc.want)
		}
	}
}

func TestParseAction(t *testing.T) {
	if a, err := ParseAction("complete"); err != nil || a != ActionComplete {
		t.Fatalf("ParseAction(complete) = %v, %v", a, err)
	}
	if _, err := ParseAction("later"); err == nil {
		t.Fatalf("expected error")
	}
}
