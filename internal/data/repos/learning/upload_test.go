package learning

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
)

func TestUploadRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUploadRepo(db, testutil.Logger(t))

	first := &types.Upload{UserID: 7, Filename: "a.pdf", StoragePath: "/tmp/a.pdf"}
	if err := repo.Create(dbc, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == 0 || first.Status != types.UploadStatusPending {
		t.Fatalf("Create: expected id and pending status, got id=%d status=%s", first.ID, first.Status)
	}
	second := &types.Upload{UserID: 7, Filename: "b.pdf", StoragePath: "/tmp/b.pdf"}
	if err := repo.Create(dbc, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	got, err := repo.GetByID(dbc, first.ID)
	if err != nil || got == nil || got.Filename != "a.pdf" {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}
	if missing, err := repo.GetByID(dbc, 9999); err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v got=%+v", err, missing)
	}
	if rows, err := repo.GetByIDs(dbc, []uint{first.ID, second.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	// Claims come out oldest first, and each upload is claimed once.
	claimed, err := repo.ClaimNextPending(dbc)
	if err != nil || claimed == nil || claimed.ID != first.ID || claimed.Status != types.UploadStatusProcessing {
		t.Fatalf("ClaimNextPending #1: err=%v claimed=%+v", err, claimed)
	}
	claimed, err = repo.ClaimNextPending(dbc)
	if err != nil || claimed == nil || claimed.ID != second.ID {
		t.Fatalf("ClaimNextPending #2: err=%v claimed=%+v", err, claimed)
	}
	if claimed, err = repo.ClaimNextPending(dbc); err != nil || claimed != nil {
		t.Fatalf("ClaimNextPending empty: err=%v claimed=%+v", err, claimed)
	}

	if err := repo.UpdateStatus(dbc, first.ID, types.UploadStatusFailed, "invalid_document"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ = repo.GetByID(dbc, first.ID)
	if got.Status != types.UploadStatusFailed || got.ErrorCode != "invalid_document" {
		t.Fatalf("UpdateStatus: got status=%s code=%s", got.Status, got.ErrorCode)
	}

	if second.SegmentedAt != nil {
		t.Fatalf("new upload already segmented")
	}
	segmentedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.MarkSegmented(dbc, second.ID, segmentedAt); err != nil {
		t.Fatalf("MarkSegmented: %v", err)
	}
	got, _ = repo.GetByID(dbc, second.ID)
	if got.SegmentedAt == nil || !got.SegmentedAt.Equal(segmentedAt) {
		t.Fatalf("MarkSegmented: segmented_at=%v", got.SegmentedAt)
	}

	// Only the upload still processing is requeued.
	n, err := repo.RequeueProcessing(dbc, time.Now().UTC().Add(time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("RequeueProcessing: err=%v n=%d", err, n)
	}
	got, _ = repo.GetByID(dbc, second.ID)
	if got.Status != types.UploadStatusPending {
		t.Fatalf("RequeueProcessing: expected pending, got %s", got.Status)
	}

	for _, msg := range []string{"Processing started", "Found 2 chapters"} {
		if err := repo.AppendLog(dbc, first.ID, "info", msg); err != nil {
			t.Fatalf("AppendLog: %v", err)
		}
	}
	entries, err := repo.ListLog(dbc, first.ID)
	if err != nil || len(entries) != 2 {
		t.Fatalf("ListLog: err=%v len=%d", err, len(entries))
	}
	if entries[0].Message != "Processing started" || entries[1].Message != "Found 2 chapters" {
		t.Fatalf("ListLog: unexpected order %q, %q", entries[0].Message, entries[1].Message)
	}
}
