package services

import (
	"sync"
	"testing"
	"time"

	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
)

func TestStartSessionReusesActive(t *testing.T) {
	h := newHarness(t)
	ch, _ := h.chapterWithQuestions(t, 1, 3)
	svc := h.examService()

	first, err := svc.StartSession(h.ctx, 1, ch.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if first.TotalQuestions != 3 || !first.Active() {
		t.Fatalf("new session = %+v", first)
	}
	second, err := svc.StartSession(h.ctx, 1, ch.ID)
	if err != nil {
		t.Fatalf("StartSession again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the active session %d, got %d", first.ID, second.ID)
	}
}

func TestStartSessionConcurrentSingleActive(t *testing.T) {
	h := newHarness(t)
	ch, _ := h.chapterWithQuestions(t, 1, 2)
	svc := h.examService()

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := svc.StartSession(h.ctx, 1, ch.ID)
			errs[i] = err
			if s != nil {
				ids[i] = s.ID
			}
		}(i)
	}
	wg.Wait()
	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("start %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("concurrent starts produced sessions %v", ids)
		}
	}
}

func TestStartSessionRejects(t *testing.T) {
	h := newHarness(t)
	svc := h.examService()
	empty, _ := h.chapterWithQuestions(t, 1, 0)
	_, err := svc.StartSession(h.ctx, 1, empty.ID)
	wantCode(t, err, aggregates.CodePreconditionFailed)

	ch, _ := h.chapterWithQuestions(t, 1, 1)
	_, err = svc.StartSession(h.ctx, 2, ch.ID)
	wantCode(t, err, aggregates.CodeNotFound)
}

func TestCompleteSessionScoresAndSchedules(t *testing.T) {
	h := newHarness(t)
	ch, qs := h.chapterWithQuestions(t, 1, 3)
	exams := h.examService()
	attempts := h.attemptService()

	sess, err := exams.StartSession(h.ctx, 1, ch.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	submit := func(q *types.Question, answer string) {
		t.Helper()
		if _, err := attempts.GradeAndRecord(h.ctx, q.ID, 1, answer, &sess.ID); err != nil {
			t.Fatalf("submit %q: %v", answer, err)
		}
	}
	submit(qs[0], "A")
	submit(qs[0], "Paris") // a repeat correct answer still counts once
	submit(qs[1], "B")
	submit(qs[1], "A") // wrong then right is not a miss
	submit(qs[2], "C")

	h.now = h.now.Add(time.Hour)
	done, err := exams.CompleteSession(h.ctx, 1, sess.ID)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if done.Score != 2 || done.CompletedAt == nil || !done.CompletedAt.Equal(h.now) {
		t.Fatalf("completed session = %+v", done)
	}

	dbc := dbctx.Context{Ctx: h.ctx}
	due, err := h.repos.ReviewRecommendation.ListDue(dbc, 1, h.now.Add(25*time.Hour))
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(due) != 1 || due[0].QuestionID != qs[2].ID || due[0].ReviewStage != 1 {
		t.Fatalf("expected a single review for the missed question, got %+v", due)
	}

	_, err = exams.CompleteSession(h.ctx, 1, sess.ID)
	wantCode(t, err, aggregates.CodeConflict)
	_, err = exams.CompleteSession(h.ctx, 2, sess.ID)
	wantCode(t, err, aggregates.CodeNotFound)

	next, err := exams.StartSession(h.ctx, 1, ch.ID)
	if err != nil || next.ID == sess.ID {
		t.Fatalf("a completed session must not be reused: %+v %v", next, err)
	}
}

func TestScoreAttempts(t *testing.T) {
	at := func(q uint, ok bool) *types.Attempt { return &types.Attempt{QuestionID: q, IsCorrect: ok} }
	score, missed := scoreAttempts([]*types.Attempt{
		at(1, false), at(2, true), at(1, false), at(3, false), at(3, true), at(4, false),
	})
	if score != 2 {
		t.Fatalf("score = %d, want 2", score)
	}
	if len(missed) != 2 || missed[0] != 1 || missed[1] != 4 {
		t.Fatalf("missed = %v, want [1 4]", missed)
	}
	if score, missed := scoreAttempts(nil); score != 0 || missed != nil {
		t.Fatalf("empty attempts scored %d %v", score, missed)
	}
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	ch, qs := h.chapterWithQuestions(t, 1, 2)
	exams := h.examService()
	attempts := h.attemptService()

	sess, _ := exams.StartSession(h.ctx, 1, ch.ID)
	if _, err := attempts.GradeAndRecord(h.ctx, qs[0].ID, 1, "A", &sess.ID); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if _, err := attempts.GradeAndRecord(h.ctx, qs[1].ID, 1, "D", &sess.ID); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if _, err := exams.CompleteSession(h.ctx, 1, sess.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// An active session is not history.
	testutil.SeedSession(t, h.ctx, h.db, 1, ch.ID, 2, nil)

	items, err := exams.History(h.ctx, 1, 0, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 history item, got %d", len(items))
	}
	it := items[0]
	if it.PerformancePercentage != 50 || it.ChapterTitle != "Chapter" || it.UploadFilename != "book.pdf" {
		t.Fatalf("history item = %+v", it)
	}
	if len(it.Attempts) != 2 || it.Attempts[1].UserAnswer != "D" || it.Attempts[1].CorrectAnswer != "A" || it.Attempts[1].IsCorrect {
		t.Fatalf("history attempts = %+v", it.Attempts)
	}

	// Deleting the chapter keeps history readable.
	if err := h.repos.Chapter.SoftDeleteByIDs(dbctx.Context{Ctx: h.ctx}, []uint{ch.ID}); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	items, err = exams.History(h.ctx, 1, 0, 10)
	if err != nil || len(items) != 1 || items[0].ChapterTitle != "Chapter" {
		t.Fatalf("history after delete = %+v, %v", items, err)
	}

	other, err := exams.History(h.ctx, 2, 0, 10)
	if err != nil || len(other) != 0 {
		t.Fatalf("history leaked across users: %+v %v", other, err)
	}
}
