package learning

import (
	"context"
	"testing"

	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
)

func TestChapterRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewChapterRepo(db, testutil.Logger(t))

	up := testutil.SeedUpload(t, ctx, tx, 1, types.UploadStatusProcessing)

	// Inserted out of order; listing is by chapter number.
	for _, no := range []int{2, 1} {
		ch := &types.Chapter{UploadID: up.ID, ChapterNo: no, Title: "T", Content: "body"}
		if err := repo.Create(dbc, ch); err != nil {
			t.Fatalf("Create %d: %v", no, err)
		}
	}
	dup := &types.Chapter{UploadID: up.ID, ChapterNo: 1, Title: "dup", Content: "x"}
	if err := repo.Create(dbc, dup); err == nil {
		t.Fatalf("expected unique violation for duplicate chapter number")
	}

	rows, err := repo.ListByUpload(dbc, up.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByUpload: err=%v len=%d", err, len(rows))
	}
	if rows[0].ChapterNo != 1 || rows[1].ChapterNo != 2 {
		t.Fatalf("ListByUpload: order %d,%d", rows[0].ChapterNo, rows[1].ChapterNo)
	}

	if err := repo.UpdateFields(dbc, rows[0].ID, map[string]interface{}{"has_questions": true}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByID(dbc, rows[0].ID)
	if err != nil || got == nil || !got.HasQuestions {
		t.Fatalf("GetByID after update: err=%v got=%+v", err, got)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uint{rows[0].ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, rows[0].ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: err=%v got=%+v", err, got)
	}
	withDeleted, err := repo.GetByIDsWithDeleted(dbc, []uint{rows[0].ID})
	if err != nil || len(withDeleted) != 1 {
		t.Fatalf("GetByIDsWithDeleted: err=%v len=%d", err, len(withDeleted))
	}
	if live, _ := repo.ListByUpload(dbc, up.ID); len(live) != 1 {
		t.Fatalf("ListByUpload after delete: len=%d", len(live))
	}
	all, err := repo.ListByUploadWithDeleted(dbc, up.ID)
	if err != nil || len(all) != 2 || all[0].ChapterNo != 1 {
		t.Fatalf("ListByUploadWithDeleted: err=%v rows=%+v", err, all)
	}
}
