package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	txagg "github.com/yungbote/studyforge-backend/internal/data/aggregates"
	"github.com/yungbote/studyforge-backend/internal/data/repos"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

const (
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

var allowedUploadExt = map[string]struct{}{
	".pdf": {},
	".txt": {},
}

type UploadDetail struct {
	Upload *types.Upload           `json:"upload"`
	Log    []*types.UploadLogEntry `json:"log"`
}

type UploadService interface {
	CreateUpload(ctx context.Context, userID uint, filename string, r io.Reader) (*types.Upload, error)
	GetUpload(ctx context.Context, userID, uploadID uint) (*UploadDetail, error)
	ListChapters(ctx context.Context, userID, uploadID uint) ([]*types.Chapter, error)
	// DeleteChapter soft-deletes a chapter and its questions. Attempts and history keep pointing at them.
	DeleteChapter(ctx context.Context, userID, chapterID uint) error
}

type uploadService struct {
	log       *logger.Logger
	tx        txagg.TxRunner
	files     FileStore
	uploads   repos.UploadRepo
	chapters  repos.ChapterRepo
	questions repos.QuestionRepo
}

func NewUploadService(log *logger.Logger, tx txagg.TxRunner, files FileStore, r repos.Set) UploadService {
	return &uploadService{
		log:       log.With("service", "UploadService"),
		tx:        tx,
		files:     files,
		uploads:   r.Upload,
		chapters:  r.Chapter,
		questions: r.Question,
	}
}

func (s *uploadService) CreateUpload(ctx context.Context, userID uint, filename string, r io.Reader) (*types.Upload, error) {
	const op = "upload.create"
	if userID == 0 {
		return nil, invalid(op, "user is required")
	}
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, invalid(op, "filename is required")
	}
	if _, ok := allowedUploadExt[strings.ToLower(filepath.Ext(name))]; !ok {
		return nil, invalid(op, "only .pdf and .txt files are accepted")
	}
	if r == nil {
		return nil, invalid(op, "file is required")
	}

	path, size, err := s.files.Save(ctx, userID, name, r)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, invalid(op, err.Error())
		}
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if size == 0 {
		_ = s.files.Remove(ctx, path)
		return nil, invalid(op, "file is empty")
	}

	upload := &types.Upload{
		UserID:      userID,
		Filename:    name,
		StoragePath: path,
		Status:      types.UploadStatusPending,
	}
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if err := s.uploads.Create(dbc, upload); err != nil {
			return err
		}
		return s.uploads.AppendLog(dbc, upload.ID, LogLevelInfo, fmt.Sprintf("Upload received: %s", name))
	})
	if err != nil {
		_ = s.files.Remove(ctx, path)
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("Upload created", "upload_id", upload.ID, "user_id", userID, "bytes", size)
	return upload, nil
}

func (s *uploadService) GetUpload(ctx context.Context, userID, uploadID uint) (*UploadDetail, error) {
	const op = "upload.get"
	dbc := dbctx.Context{Ctx: ctx}
	u, err := ownedUpload(dbc, s.uploads, op, userID, uploadID)
	if err != nil {
		return nil, err
	}
	entries, err := s.uploads.ListLog(dbc, u.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if entries == nil {
		entries = []*types.UploadLogEntry{}
	}
	return &UploadDetail{Upload: u, Log: entries}, nil
}

func (s *uploadService) ListChapters(ctx context.Context, userID, uploadID uint) ([]*types.Chapter, error) {
	const op = "upload.list_chapters"
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := ownedUpload(dbc, s.uploads, op, userID, uploadID); err != nil {
		return nil, err
	}
	out, err := s.chapters.ListByUpload(dbc, uploadID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if out == nil {
		out = []*types.Chapter{}
	}
	return out, nil
}

func (s *uploadService) DeleteChapter(ctx context.Context, userID, chapterID uint) error {
	const op = "upload.delete_chapter"
	return aggregates.MapError(op, s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		ch, _, err := ownedChapter(dbc, s.uploads, s.chapters, op, userID, chapterID)
		if err != nil {
			return err
		}
		if err := s.questions.SoftDeleteByChapterIDs(dbc, []uint{ch.ID}); err != nil {
			return err
		}
		if err := s.chapters.SoftDeleteByIDs(dbc, []uint{ch.ID}); err != nil {
			return err
		}
		return s.uploads.AppendLog(dbc, ch.UploadID, LogLevelInfo, fmt.Sprintf("Chapter %d deleted", ch.ChapterNo))
	}))
}
