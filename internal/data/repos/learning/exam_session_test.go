package learning

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
)

func TestExamSessionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewExamSessionRepo(db, testutil.Logger(t))

	up := testutil.SeedUpload(t, ctx, tx, 4, types.UploadStatusCompleted)
	ch := testutil.SeedChapter(t, ctx, tx, up.ID, 1, "content")

	if active, err := repo.GetActive(dbc, 4, ch.ID); err != nil || active != nil {
		t.Fatalf("GetActive empty: err=%v active=%+v", err, active)
	}

	s := &types.ExamSession{UserID: 4, ChapterID: ch.ID, TotalQuestions: 5}
	if err := repo.Create(dbc, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.StartedAt.IsZero() {
		t.Fatalf("Create: expected StartedAt to be set")
	}
	active, err := repo.GetActive(dbc, 4, ch.ID)
	if err != nil || active == nil || active.ID != s.ID {
		t.Fatalf("GetActive: err=%v active=%+v", err, active)
	}
	if other, _ := repo.GetActive(dbc, 5, ch.ID); other != nil {
		t.Fatalf("GetActive: sessions are per user")
	}

	done := time.Now().UTC()
	ok, err := repo.Complete(dbc, s.ID, 3, done)
	if err != nil || !ok {
		t.Fatalf("Complete: err=%v ok=%v", err, ok)
	}
	if ok, err := repo.Complete(dbc, s.ID, 4, done); err != nil || ok {
		t.Fatalf("Complete twice: err=%v ok=%v", err, ok)
	}
	got, err := repo.GetByID(dbc, s.ID)
	if err != nil || got == nil || got.Score != 3 || got.Active() {
		t.Fatalf("GetByID after complete: err=%v got=%+v", err, got)
	}
	if active, _ := repo.GetActive(dbc, 4, ch.ID); active != nil {
		t.Fatalf("GetActive after complete: expected none")
	}

	older := testutil.SeedSession(t, ctx, tx, 4, ch.ID, 2, testutil.PtrTime(done.Add(-24*time.Hour)))
	testutil.SeedSession(t, ctx, tx, 4, ch.ID, 2, nil)

	history, err := repo.ListCompletedByUser(dbc, 4, 0, 10)
	if err != nil || len(history) != 2 {
		t.Fatalf("ListCompletedByUser: err=%v len=%d", err, len(history))
	}
	if history[0].ID != s.ID || history[1].ID != older.ID {
		t.Fatalf("ListCompletedByUser: expected newest first")
	}
	if page, _ := repo.ListCompletedByUser(dbc, 4, 1, 1); len(page) != 1 || page[0].ID != older.ID {
		t.Fatalf("ListCompletedByUser paging: %+v", page)
	}
}
