package review

import (
	"fmt"
	"math"
	"time"
)

type Action string

const (
	ActionComplete Action = "complete"
	ActionSkip     Action = "skip"
)

func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionComplete, ActionSkip:
		return Action(raw), nil
	default:
		return "", fmt.Errorf("unknown review action %q", raw)
	}
}

const day = 24 * time.Hour

// Intervals maps a stage to the wait after a review at that stage is completed.
// Stage 1 also sets the wait after the initial miss.
type Intervals map[int]time.Duration

// DefaultIntervals is the five-stage table: 1, 3, 7, 14 and 30 days.
var DefaultIntervals = Intervals{
	1: 1 * day,
	2: 3 * day,
	3: 7 * day,
	4: 14 * day,
	5: 30 * day,
}

// State is the scheduling view of one (user, question) recommendation.
type State struct {
	Stage          int
	LastReviewedAt *time.Time
	NextReviewAt   time.Time
}

type Outcome int

const (
	// OutcomeKeep means the returned State should be stored.
	OutcomeKeep Outcome = iota
	// OutcomeRemove means the recommendation is retired and should be deleted.
	OutcomeRemove
)

type Scheduler struct {
	intervals Intervals
	maxStage  int
}

// NewScheduler validates that intervals cover stages 1..max without gaps.
func NewScheduler(intervals Intervals) (*Scheduler, error) {
	if len(intervals) == 0 {
		return nil, fmt.Errorf("review intervals are empty")
	}
	for stage := 1; stage <= len(intervals); stage++ {
		d, ok := intervals[stage]
		if !ok {
			return nil, fmt.Errorf("review intervals missing stage %d", stage)
		}
		if d <= 0 {
			return nil, fmt.Errorf("review interval for stage %d must be positive", stage)
		}
	}
	cp := make(Intervals, len(intervals))
	for k, v := range intervals {
		cp[k] = v
	}
	return &Scheduler{intervals: cp, maxStage: len(cp)}, nil
}

func NewDefaultScheduler() *Scheduler {
	s, err := NewScheduler(DefaultIntervals)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Scheduler) MaxStage() int { return s.maxStage }

// Miss returns the state for a question answered incorrectly. It is used both for a first
// miss and to reset an existing recommendation.
func (s *Scheduler) Miss(now time.Time) State {
	last := now
	return State{Stage: 1, LastReviewedAt: &last, NextReviewAt: now.Add(s.intervals[1])}
}

// Complete advances one stage. Past the last stage the recommendation is retired.
func (s *Scheduler) Complete(cur State, now time.Time) (State, Outcome) {
	stage := cur.Stage
	if stage < 1 {
		stage = 1
	}
	if stage+1 > s.maxStage {
		return State{}, OutcomeRemove
	}
	last := now
	return State{
		Stage:          stage + 1,
		LastReviewedAt: &last,
		NextReviewAt:   now.Add(s.intervals[stage]),
	}, OutcomeKeep
}

// Skip always retires the recommendation.
func (s *Scheduler) Skip(State) Outcome { return OutcomeRemove }

func (s *Scheduler) Apply(cur State, action Action, now time.Time) (State, Outcome, error) {
	switch action {
	case ActionComplete:
		next, out := s.Complete(cur, now)
		return next, out, nil
	case ActionSkip:
		return State{}, s.Skip(cur), nil
	default:
		return State{}, OutcomeKeep, fmt.Errorf("unknown review action %q", action)
	}
}

func IsDue(st State, now time.Time) bool {
	return !st.NextReviewAt.After(now)
}

// DaysUntil is the floor of whole days from now to next. Display only.
func DaysUntil(next, now time.Time) int {
	return int(math.Floor(next.Sub(now).Hours() / 24))
}
