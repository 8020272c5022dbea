package services

import (
	"time"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
)

// Clock is injected so tests can pin time. Services store UTC.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func orClock(c Clock) Clock {
	if c == nil {
		return utcNow
	}
	return c
}

func notFound(op, what string) error {
	return aggregates.NewError(aggregates.CodeNotFound, op, what+" not found", nil)
}

func invalid(op, msg string) error {
	return aggregates.NewError(aggregates.CodeValidation, op, msg, nil)
}

// ownedUpload loads an upload and hides it from anyone but its owner.
func ownedUpload(dbc dbctx.Context, uploads repos.UploadRepo, op string, userID, uploadID uint) (*types.Upload, error) {
	u, err := uploads.GetByID(dbc, uploadID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if u == nil || u.UserID != userID {
		return nil, notFound(op, "upload")
	}
	return u, nil
}

// ownedChapter resolves a live chapter and its upload, checking the upload owner.
func ownedChapter(dbc dbctx.Context, uploads repos.UploadRepo, chapters repos.ChapterRepo, op string, userID, chapterID uint) (*types.Chapter, *types.Upload, error) {
	ch, err := chapters.GetByID(dbc, chapterID)
	if err != nil {
		return nil, nil, aggregates.MapError(op, err)
	}
	if ch == nil {
		return nil, nil, notFound(op, "chapter")
	}
	u, err := ownedUpload(dbc, uploads, op, userID, ch.UploadID)
	if err != nil {
		if aggregates.IsCode(err, aggregates.CodeNotFound) {
			return nil, nil, notFound(op, "chapter")
		}
		return nil, nil, err
	}
	return ch, u, nil
}
