package services

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
)

func newUploadService(t *testing.T, h *harness, maxBytes int64) (UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalFileStore(h.log, dir, maxBytes)
	if err != nil {
		t.Fatalf("NewLocalFileStore: %v", err)
	}
	return NewUploadService(h.log, h.tx, store, h.repos), dir
}

func TestCreateUpload(t *testing.T) {
	h := newHarness(t)
	svc, dir := newUploadService(t, h, 0)

	u, err := svc.CreateUpload(h.ctx, 1, "../../Notes.TXT", strings.NewReader("Chapter 1\nSome text."))
	if err != nil {
		t.Fatalf("CreateUpload: %v", err)
	}
	if u.Status != types.UploadStatusPending || u.Filename != "Notes.TXT" {
		t.Fatalf("upload = %+v", u)
	}
	if !strings.HasPrefix(u.StoragePath, dir) {
		t.Fatalf("stored outside upload dir: %s", u.StoragePath)
	}
	raw, err := os.ReadFile(u.StoragePath)
	if err != nil || string(raw) != "Chapter 1\nSome text." {
		t.Fatalf("stored bytes %q (%v)", raw, err)
	}

	detail, err := svc.GetUpload(h.ctx, 1, u.ID)
	if err != nil {
		t.Fatalf("GetUpload: %v", err)
	}
	if len(detail.Log) != 1 || !strings.Contains(detail.Log[0].Message, "Upload received") {
		t.Fatalf("log = %+v", detail.Log)
	}
	_, err = svc.GetUpload(h.ctx, 2, u.ID)
	wantCode(t, err, aggregates.CodeNotFound)
}

func TestCreateUploadRejects(t *testing.T) {
	h := newHarness(t)
	svc, _ := newUploadService(t, h, 8)

	cases := []struct {
		name     string
		filename string
		body     string
	}{
		{"wrong extension", "virus.exe", "MZ"},
		{"no name", "  ", "x"},
		{"empty body", "a.txt", ""},
		{"too large", "a.txt", "0123456789"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUpload(context.Background(), 1, tc.filename, strings.NewReader(tc.body))
			wantCode(t, err, aggregates.CodeValidation)
		})
	}
}

func TestListAndDeleteChapter(t *testing.T) {
	h := newHarness(t)
	svc, _ := newUploadService(t, h, 0)
	u := testutil.SeedUpload(t, h.ctx, h.db, 1, types.UploadStatusCompleted)
	c1 := testutil.SeedChapter(t, h.ctx, h.db, u.ID, 1, "one")
	c2 := testutil.SeedChapter(t, h.ctx, h.db, u.ID, 2, "two")
	q := testutil.SeedMCQuestion(t, h.ctx, h.db, c1.ID, fourOptions)

	chapters, err := svc.ListChapters(h.ctx, 1, u.ID)
	if err != nil || len(chapters) != 2 {
		t.Fatalf("ListChapters = %d, %v", len(chapters), err)
	}
	_, err = svc.ListChapters(h.ctx, 2, u.ID)
	wantCode(t, err, aggregates.CodeNotFound)

	wantCode(t, svc.DeleteChapter(h.ctx, 2, c1.ID), aggregates.CodeNotFound)
	if err := svc.DeleteChapter(h.ctx, 1, c1.ID); err != nil {
		t.Fatalf("DeleteChapter: %v", err)
	}

	chapters, _ = svc.ListChapters(h.ctx, 1, u.ID)
	if len(chapters) != 1 || chapters[0].ID != c2.ID {
		t.Fatalf("chapters after delete = %+v", chapters)
	}
	dbc := dbctx.Context{Ctx: h.ctx}
	if got, _ := h.repos.Question.GetByID(dbc, q.ID); got != nil {
		t.Fatalf("question survived chapter delete")
	}
	kept, err := h.repos.Question.GetByIDsWithDeleted(dbc, []uint{q.ID})
	if err != nil || len(kept) != 1 {
		t.Fatalf("soft-deleted question should stay readable for history: %v", err)
	}
	wantCode(t, svc.DeleteChapter(h.ctx, 1, c1.ID), aggregates.CodeNotFound)
}
