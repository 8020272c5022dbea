package services

import (
	"testing"
	"time"

	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
)

func TestGradeAndRecordOutsideSession(t *testing.T) {
	h := newHarness(t)
	_, qs := h.chapterWithQuestions(t, 1, 1)
	q := qs[0]
	svc := h.attemptService()

	res, err := svc.GradeAndRecord(h.ctx, q.ID, 1, "Paris", nil)
	if err != nil {
		t.Fatalf("GradeAndRecord: %v", err)
	}
	if !res.IsCorrect || res.AttemptID == 0 || res.NextReviewAt != nil {
		t.Fatalf("correct answer result: %+v", res)
	}

	res, err = svc.GradeAndRecord(h.ctx, q.ID, 1, "London", nil)
	if err != nil {
		t.Fatalf("GradeAndRecord miss: %v", err)
	}
	if res.IsCorrect || res.CorrectAnswer != "A" {
		t.Fatalf("miss result: %+v", res)
	}
	wantNext := h.now.Add(24 * time.Hour)
	if res.NextReviewAt == nil || !res.NextReviewAt.Equal(wantNext) {
		t.Fatalf("next review %v, want %v", res.NextReviewAt, wantNext)
	}

	dbc := dbctx.Context{Ctx: h.ctx}
	rec, err := h.repos.ReviewRecommendation.GetByUserQuestion(dbc, 1, q.ID)
	if err != nil || rec == nil {
		t.Fatalf("recommendation missing: %v", err)
	}
	if rec.ReviewStage != 1 || !rec.NextReviewAt.Equal(wantNext) {
		t.Fatalf("recommendation = %+v", rec)
	}

	// A second miss resets the same row rather than adding one.
	h.now = h.now.Add(72 * time.Hour)
	if _, err := svc.GradeAndRecord(h.ctx, q.ID, 1, "B", nil); err != nil {
		t.Fatalf("second miss: %v", err)
	}
	due, err := h.repos.ReviewRecommendation.ListDue(dbc, 1, h.now.Add(48*time.Hour))
	if err != nil || len(due) != 1 {
		t.Fatalf("expected one recommendation, got %d (%v)", len(due), err)
	}
	if !due[0].NextReviewAt.Equal(h.now.Add(24 * time.Hour)) {
		t.Fatalf("reset next review %v", due[0].NextReviewAt)
	}

	attempts, err := svc.ListAttempts(h.ctx, 1, 0, 0)
	if err != nil || len(attempts) != 3 {
		t.Fatalf("ListAttempts = %d, %v", len(attempts), err)
	}
}

func TestGradeAndRecordInSessionDefersReview(t *testing.T) {
	h := newHarness(t)
	ch, qs := h.chapterWithQuestions(t, 1, 2)
	sess := testutil.SeedSession(t, h.ctx, h.db, 1, ch.ID, 2, nil)

	res, err := h.attemptService().GradeAndRecord(h.ctx, qs[0].ID, 1, "Rome", &sess.ID)
	if err != nil {
		t.Fatalf("GradeAndRecord: %v", err)
	}
	if res.IsCorrect || res.NextReviewAt != nil {
		t.Fatalf("in-session miss should not schedule yet: %+v", res)
	}
	rec, err := h.repos.ReviewRecommendation.GetByUserQuestion(dbctx.Context{Ctx: h.ctx}, 1, qs[0].ID)
	if err != nil || rec != nil {
		t.Fatalf("unexpected recommendation %+v (%v)", rec, err)
	}
}

func TestGradeAndRecordRejects(t *testing.T) {
	h := newHarness(t)
	ch, qs := h.chapterWithQuestions(t, 1, 1)
	other, _ := h.chapterWithQuestions(t, 1, 1)
	done := testutil.SeedSession(t, h.ctx, h.db, 1, ch.ID, 1, testutil.PtrTime(h.now))
	foreign := testutil.SeedSession(t, h.ctx, h.db, 2, ch.ID, 1, nil)
	wrongChapter := testutil.SeedSession(t, h.ctx, h.db, 1, other.ID, 1, nil)

	broken := &types.Question{
		ChapterID:     ch.ID,
		QuestionText:  "Broken?",
		QuestionType:  types.QuestionMultipleChoice,
		CorrectAnswer: "D",
		Difficulty:    types.DifficultyMedium,
	}
	_ = broken.SetOptions([]string{"a", "b"})
	if err := h.db.Create(broken).Error; err != nil {
		t.Fatalf("seed broken question: %v", err)
	}

	svc := h.attemptService()
	cases := []struct {
		name       string
		questionID uint
		userID     uint
		sessionID  *uint
		code       aggregates.ErrorCode
	}{
		{"missing question", 9999, 1, nil, aggregates.CodeNotFound},
		{"someone else's question", qs[0].ID, 2, nil, aggregates.CodeNotFound},
		{"completed session", qs[0].ID, 1, &done.ID, aggregates.CodePreconditionFailed},
		{"someone else's session", qs[0].ID, 1, &foreign.ID, aggregates.CodeNotFound},
		{"session for another chapter", qs[0].ID, 1, &wrongChapter.ID, aggregates.CodeValidation},
		{"corrupt answer letter", broken.ID, 1, nil, aggregates.CodeDataIntegrity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GradeAndRecord(h.ctx, tc.questionID, tc.userID, "A", tc.sessionID)
			wantCode(t, err, tc.code)
		})
	}

	attempts, _ := svc.ListAttempts(h.ctx, 1, 0, 10)
	if len(attempts) != 0 {
		t.Fatalf("rejected submissions left %d attempts", len(attempts))
	}
}
