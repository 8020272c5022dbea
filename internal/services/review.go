package services

import (
	"context"

	txagg "github.com/yungbote/studyforge-backend/internal/data/aggregates"
	"github.com/yungbote/studyforge-backend/internal/data/repos"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/review"
	"github.com/yungbote/studyforge-backend/internal/observability"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type DueReview struct {
	Recommendation  *types.ReviewRecommendation `json:"recommendation"`
	QuestionText    string                      `json:"question_text"`
	ChapterID       uint                        `json:"chapter_id"`
	ChapterTitle    string                      `json:"chapter_title"`
	UploadFilename  string                      `json:"upload_filename"`
	DaysUntilReview int                         `json:"days_until_review"`
}

type ReviewService interface {
	// AdvanceReview applies action to the caller's recommendation. A nil result means it was retired.
	AdvanceReview(ctx context.Context, userID, recommendationID uint, action review.Action) (*types.ReviewRecommendation, error)
	ListDue(ctx context.Context, userID uint) ([]DueReview, error)
}

type reviewService struct {
	log       *logger.Logger
	tx        txagg.TxRunner
	uploads   repos.UploadRepo
	chapters  repos.ChapterRepo
	questions repos.QuestionRepo
	reviews   repos.ReviewRecommendationRepo
	scheduler *review.Scheduler
	now       Clock
}

func NewReviewService(log *logger.Logger, tx txagg.TxRunner, r repos.Set, scheduler *review.Scheduler, now Clock) ReviewService {
	if scheduler == nil {
		scheduler = review.NewDefaultScheduler()
	}
	return &reviewService{
		log:       log.With("service", "ReviewService"),
		tx:        tx,
		uploads:   r.Upload,
		chapters:  r.Chapter,
		questions: r.Question,
		reviews:   r.ReviewRecommendation,
		scheduler: scheduler,
		now:       orClock(now),
	}
}

func (s *reviewService) AdvanceReview(ctx context.Context, userID, recommendationID uint, action review.Action) (*types.ReviewRecommendation, error) {
	const op = "review.advance"
	var out *types.ReviewRecommendation
	var transition string
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		rec, err := s.reviews.GetByID(dbc, recommendationID)
		if err != nil {
			return err
		}
		if rec == nil || rec.UserID != userID {
			return notFound(op, "review recommendation")
		}
		cur := review.State{Stage: rec.ReviewStage, LastReviewedAt: rec.LastReviewedAt, NextReviewAt: rec.NextReviewAt}
		next, outcome, err := s.scheduler.Apply(cur, action, s.now())
		if err != nil {
			return aggregates.Wrap(aggregates.CodeValidation, op, err)
		}
		if outcome == review.OutcomeRemove {
			transition = string(action) + "_retired"
			return s.reviews.Delete(dbc, rec.ID)
		}
		if err := s.reviews.UpdateSchedule(dbc, rec.ID, next.Stage, next.LastReviewedAt, next.NextReviewAt); err != nil {
			return err
		}
		rec.ReviewStage = next.Stage
		rec.LastReviewedAt = next.LastReviewedAt
		rec.NextReviewAt = next.NextReviewAt
		transition = string(action)
		out = rec
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	observability.Current().IncReviewTransition(transition)
	return out, nil
}

func (s *reviewService) ListDue(ctx context.Context, userID uint) ([]DueReview, error) {
	const op = "review.list_due"
	dbc := dbctx.Context{Ctx: ctx}
	now := s.now()
	recs, err := s.reviews.ListDue(dbc, userID, now)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	out := make([]DueReview, 0, len(recs))
	if len(recs) == 0 {
		return out, nil
	}

	questionIDs := make([]uint, 0, len(recs))
	for _, r := range recs {
		questionIDs = append(questionIDs, r.QuestionID)
	}
	questions, err := s.questions.GetByIDsWithDeleted(dbc, questionIDs)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	questionByID := make(map[uint]*types.Question, len(questions))
	chapterIDs := make([]uint, 0, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
		chapterIDs = append(chapterIDs, q.ChapterID)
	}
	chapters, err := s.chapters.GetByIDsWithDeleted(dbc, chapterIDs)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	chapterByID := make(map[uint]*types.Chapter, len(chapters))
	uploadIDs := make([]uint, 0, len(chapters))
	for _, ch := range chapters {
		chapterByID[ch.ID] = ch
		uploadIDs = append(uploadIDs, ch.UploadID)
	}
	uploads, err := s.uploads.GetByIDs(dbc, uploadIDs)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	uploadByID := make(map[uint]*types.Upload, len(uploads))
	for _, u := range uploads {
		uploadByID[u.ID] = u
	}

	for _, r := range recs {
		item := DueReview{
			Recommendation:  r,
			DaysUntilReview: review.DaysUntil(r.NextReviewAt, now),
		}
		if q := questionByID[r.QuestionID]; q != nil {
			item.QuestionText = q.QuestionText
			item.ChapterID = q.ChapterID
			if ch := chapterByID[q.ChapterID]; ch != nil {
				item.ChapterTitle = ch.Title
				if u := uploadByID[ch.UploadID]; u != nil {
					item.UploadFilename = u.Filename
				}
			}
		}
		out = append(out, item)
	}
	return out, nil
}
