package services

import (
	"context"
	"testing"

	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/questiongen"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
)

func TestGenerateQuestionsPersists(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUpload(t, h.ctx, h.db, 1, types.UploadStatusProcessing)
	ch := testutil.SeedChapter(t, h.ctx, h.db, u.ID, 1, richChapter)

	ids, err := h.questionService().GenerateQuestions(h.ctx, ch.ID, 6, "hard")
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(ids) == 0 || len(ids) > 6 {
		t.Fatalf("expected 1..6 questions, got %d", len(ids))
	}

	dbc := dbctx.Context{Ctx: h.ctx}
	stored, err := h.repos.Question.ListByChapter(dbc, ch.ID)
	if err != nil {
		t.Fatalf("ListByChapter: %v", err)
	}
	if len(stored) != len(ids) {
		t.Fatalf("stored %d questions, returned %d ids", len(stored), len(ids))
	}
	for _, q := range stored {
		if q.QuestionType != types.QuestionMultipleChoice {
			t.Fatalf("default request stored %s", q.QuestionType)
		}
		if q.Difficulty != types.DifficultyHard {
			t.Fatalf("difficulty %q, want hard", q.Difficulty)
		}
		opts, err := q.OptionList()
		if err != nil || len(opts) != 4 {
			t.Fatalf("question %d options %v (%v)", q.ID, opts, err)
		}
		idx, ok := questiongen.LetterIndex(q.CorrectAnswer)
		if !ok || idx >= len(opts) {
			t.Fatalf("question %d has letter %q", q.ID, q.CorrectAnswer)
		}
	}

	got, err := h.repos.Chapter.GetByID(dbc, ch.ID)
	if err != nil || got == nil {
		t.Fatalf("reload chapter: %v", err)
	}
	if !got.HasQuestions {
		t.Fatalf("has_questions not set")
	}
	kw := got.KeywordList()
	if len(kw) == 0 || len(kw) > 8 {
		t.Fatalf("keyword backfill produced %v", kw)
	}
}

func TestGenerateQuestionsThinChapter(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUpload(t, h.ctx, h.db, 1, types.UploadStatusProcessing)
	ch := testutil.SeedChapter(t, h.ctx, h.db, u.ID, 1, "   ")

	ids, err := h.questionService().GenerateQuestions(h.ctx, ch.ID, 5, "")
	if err != nil {
		t.Fatalf("under-generation must not fail: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no questions, got %d", len(ids))
	}
	got, _ := h.repos.Chapter.GetByID(dbctx.Context{Ctx: h.ctx}, ch.ID)
	if got.HasQuestions {
		t.Fatalf("has_questions set without questions")
	}
}

func TestGenerateQuestionsValidation(t *testing.T) {
	h := newHarness(t)
	svc := h.questionService()
	u := testutil.SeedUpload(t, h.ctx, h.db, 1, types.UploadStatusProcessing)
	ch := testutil.SeedChapter(t, h.ctx, h.db, u.ID, 1, richChapter)

	cases := []struct {
		name       string
		chapterID  uint
		count      int
		difficulty string
		kinds      []types.QuestionType
		code       aggregates.ErrorCode
	}{
		{"zero count", ch.ID, 0, "", nil, aggregates.CodeValidation},
		{"too many", ch.ID, 51, "", nil, aggregates.CodeValidation},
		{"bad difficulty", ch.ID, 3, "impossible", nil, aggregates.CodeValidation},
		{"bad kind", ch.ID, 3, "", []types.QuestionType{"essay"}, aggregates.CodeValidation},
		{"missing chapter", 9999, 3, "", nil, aggregates.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GenerateQuestions(h.ctx, tc.chapterID, tc.count, tc.difficulty, tc.kinds...)
			wantCode(t, err, tc.code)
		})
	}
}

func TestGenerateQuestionsCancelled(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUpload(t, h.ctx, h.db, 1, types.UploadStatusProcessing)
	ch := testutil.SeedChapter(t, h.ctx, h.db, u.ID, 1, richChapter)

	ctx, cancel := context.WithCancel(h.ctx)
	cancel()
	if _, err := h.questionService().GenerateQuestions(ctx, ch.ID, 3, ""); err == nil {
		t.Fatalf("expected cancellation error")
	}
	n, err := h.repos.Question.CountByChapter(dbctx.Context{Ctx: h.ctx}, ch.ID)
	if err != nil || n != 0 {
		t.Fatalf("cancelled run stored %d questions (%v)", n, err)
	}
}

func TestGenerateForUserOwnership(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUpload(t, h.ctx, h.db, 1, types.UploadStatusCompleted)
	ch := testutil.SeedChapter(t, h.ctx, h.db, u.ID, 1, richChapter)
	svc := h.questionService()

	_, err := svc.GenerateForUser(h.ctx, 2, ch.ID, 3, "")
	wantCode(t, err, aggregates.CodeNotFound)
	_, err = svc.ListQuestions(h.ctx, 2, ch.ID)
	wantCode(t, err, aggregates.CodeNotFound)

	if _, err := svc.GenerateForUser(h.ctx, 1, ch.ID, 3, ""); err != nil {
		t.Fatalf("owner generate: %v", err)
	}
	qs, err := svc.ListQuestions(h.ctx, 1, ch.ID)
	if err != nil || len(qs) == 0 {
		t.Fatalf("ListQuestions = %d, %v", len(qs), err)
	}
}
