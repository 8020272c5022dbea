package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/ingestion/document"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/ingestion/segment"
	"github.com/yungbote/studyforge-backend/internal/observability"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type IngestionConfig struct {
	// ChapterConcurrency bounds parallel question generation inside one upload. Defaults to 4.
	ChapterConcurrency int
	// QuestionsPerChapter is the count requested for every chapter. Defaults to 10.
	QuestionsPerChapter int
	Difficulty          string
	// OpenDocument defaults to document.Open.
	OpenDocument func(ctx context.Context, path string) (document.Document, error)
}

type IngestionService interface {
	// SegmentAndStore persists each chapter as soon as the segmenter completes it and marks the upload
	// segmented once the document is exhausted. Chapters stored by an earlier interrupted run are kept
	// and not stored twice. On error the ids of chapters already stored are returned alongside it.
	SegmentAndStore(ctx context.Context, doc document.Document, uploadID uint) ([]uint, error)
	// ProcessUpload runs the whole pipeline for one upload and records the outcome on it.
	ProcessUpload(ctx context.Context, uploadID uint) error
}

type ingestionService struct {
	log       *logger.Logger
	uploads   repos.UploadRepo
	chapters  repos.ChapterRepo
	segmenter *segment.Segmenter
	questions QuestionService
	cfg       IngestionConfig
}

func NewIngestionService(log *logger.Logger, r repos.Set, segmenter *segment.Segmenter, questions QuestionService, cfg IngestionConfig) IngestionService {
	if cfg.ChapterConcurrency <= 0 {
		cfg.ChapterConcurrency = 4
	}
	if cfg.QuestionsPerChapter <= 0 {
		cfg.QuestionsPerChapter = 10
	}
	if strings.TrimSpace(cfg.Difficulty) == "" {
		cfg.Difficulty = types.DifficultyMedium
	}
	if cfg.OpenDocument == nil {
		cfg.OpenDocument = document.Open
	}
	return &ingestionService{
		log:       log.With("service", "IngestionService"),
		uploads:   r.Upload,
		chapters:  r.Chapter,
		segmenter: segmenter,
		questions: questions,
		cfg:       cfg,
	}
}

func (s *ingestionService) SegmentAndStore(ctx context.Context, doc document.Document, uploadID uint) (ids []uint, err error) {
	const op = "ingestion.segment_and_store"
	ctx, span := observability.StartSpan(ctx, op, "upload_id", uploadID)
	start := time.Now()
	defer func() {
		observability.Current().ObserveStage("segment", err, time.Since(start))
		observability.EndSpan(span, err)
	}()

	dbc := dbctx.Context{Ctx: ctx}
	u, err := s.uploads.GetByID(dbc, uploadID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if u == nil {
		return nil, notFound(op, "upload")
	}

	stored, err := s.chapters.ListByUploadWithDeleted(dbc, u.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	storedByNo := make(map[int]uint, len(stored))
	for _, ch := range stored {
		storedByNo[ch.ChapterNo] = ch.ID
	}

	sink := func(ctx context.Context, c segment.Chapter) error {
		if id, ok := storedByNo[c.Number]; ok {
			ids = append(ids, id)
			return nil
		}
		row := &types.Chapter{
			UploadID:  u.ID,
			ChapterNo: c.Number,
			Title:     c.Title,
			Content:   c.Content,
			Summary:   c.Summary,
		}
		if err := s.chapters.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
			return aggregates.MapError(op, err)
		}
		ids = append(ids, row.ID)
		return nil
	}
	if _, err = s.segmenter.Segment(ctx, doc, sink); err != nil {
		return ids, err
	}
	if err = s.uploads.MarkSegmented(dbc, u.ID, time.Now()); err != nil {
		return ids, aggregates.MapError(op, err)
	}
	if len(stored) > 0 {
		s.log.Info("Segmentation resumed past stored chapters", "upload_id", u.ID, "stored", len(stored), "chapters", len(ids))
	}
	return ids, nil
}

func (s *ingestionService) ProcessUpload(ctx context.Context, uploadID uint) (err error) {
	const op = "ingestion.process_upload"
	ctx, span := observability.StartSpan(ctx, op, "upload_id", uploadID)
	defer func() { observability.EndSpan(span, err) }()

	dbc := dbctx.Context{Ctx: ctx}
	u, err := s.uploads.GetByID(dbc, uploadID)
	if err != nil {
		return aggregates.MapError(op, err)
	}
	if u == nil {
		return notFound(op, "upload")
	}
	switch u.Status {
	case types.UploadStatusCompleted, types.UploadStatusFailed:
		return aggregates.NewError(aggregates.CodeConflict, op, fmt.Sprintf("upload already %s", u.Status), nil)
	case types.UploadStatusPending:
		if err := s.uploads.UpdateStatus(dbc, u.ID, types.UploadStatusProcessing, ""); err != nil {
			return aggregates.MapError(op, err)
		}
	}
	log := s.log.With("upload_id", u.ID)
	s.trail(ctx, u.ID, LogLevelInfo, "Processing started")

	var chapters []*types.Chapter
	if u.SegmentedAt != nil {
		// A previous run finished segmentation; only question generation is left.
		chapters, err = s.chapters.ListByUpload(dbc, u.ID)
		if err != nil {
			return s.fail(ctx, u.ID, aggregates.MapError(op, err))
		}
		log.Info("Resuming segmented upload", "chapters", len(chapters))
	} else {
		doc, err := s.cfg.OpenDocument(ctx, u.StoragePath)
		if err != nil {
			return s.fail(ctx, u.ID, err)
		}
		ids, segErr := s.SegmentAndStore(ctx, doc, u.ID)
		_ = doc.Close()
		if segErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return s.fail(ctx, u.ID, segErr)
		}
		s.trail(ctx, u.ID, LogLevelInfo, fmt.Sprintf("Found %d chapters", len(ids)))
		chapters, err = s.chapters.ListByUpload(dbc, u.ID)
		if err != nil {
			return s.fail(ctx, u.ID, aggregates.MapError(op, err))
		}
	}

	var (
		total    atomic.Int64
		failures atomic.Int64
		pending  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ChapterConcurrency)
	for _, ch := range chapters {
		if ch.HasQuestions {
			continue
		}
		pending++
		ch := ch
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ids, err := s.questions.GenerateQuestions(gctx, ch.ID, s.cfg.QuestionsPerChapter, s.cfg.Difficulty)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failures.Add(1)
				log.Warn("Question generation failed for chapter", "chapter_id", ch.ID, "error", err)
				s.trail(gctx, u.ID, LogLevelWarn, fmt.Sprintf("Could not generate questions for chapter %d", ch.ChapterNo))
				return nil
			}
			total.Add(int64(len(ids)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Interrupted: stored chapters and questions stay, the upload is requeued on restart.
		log.Warn("Upload processing interrupted", "error", err)
		return err
	}
	if pending > 0 && failures.Load() == int64(pending) {
		return s.fail(ctx, u.ID, aggregates.NewError(aggregates.CodeInternal, op, "question generation failed for every chapter", nil))
	}

	if err := s.uploads.UpdateStatus(dbc, u.ID, types.UploadStatusCompleted, ""); err != nil {
		return aggregates.MapError(op, err)
	}
	s.trail(ctx, u.ID, LogLevelInfo, fmt.Sprintf("Processing completed: %d chapters, %d questions", len(chapters), total.Load()))
	log.Info("Upload processed", "chapters", len(chapters), "questions", total.Load(), "chapter_failures", failures.Load())
	return nil
}

// fail marks the upload failed and leaves a readable line in the trail. The original error is returned.
func (s *ingestionService) fail(ctx context.Context, uploadID uint, cause error) error {
	code := aggregates.CodeOf(cause)
	if code == "" {
		code = aggregates.CodeInternal
	}
	wctx := context.WithoutCancel(ctx)
	if err := s.uploads.UpdateStatus(dbctx.Context{Ctx: wctx}, uploadID, types.UploadStatusFailed, string(code)); err != nil {
		s.log.Error("Could not mark upload failed", "upload_id", uploadID, "error", err)
	}
	s.trail(wctx, uploadID, LogLevelError, failureMessage(code))
	s.log.Warn("Upload processing failed", "upload_id", uploadID, "error_code", code, "error", cause)
	return cause
}

func (s *ingestionService) trail(ctx context.Context, uploadID uint, level, msg string) {
	if err := s.uploads.AppendLog(dbctx.Context{Ctx: ctx}, uploadID, level, msg); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("Could not append upload log", "upload_id", uploadID, "error", err)
	}
}

func failureMessage(code aggregates.ErrorCode) string {
	switch code {
	case aggregates.CodeInvalidDocument:
		return "Processing failed: the document could not be read"
	case aggregates.CodeEmptyDocument:
		return "Processing failed: no readable text was found in the document"
	default:
		return "Processing failed"
	}
}
