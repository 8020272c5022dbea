package services

import (
	"context"
	"time"

	txagg "github.com/yungbote/studyforge-backend/internal/data/aggregates"
	"github.com/yungbote/studyforge-backend/internal/data/repos"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/grading"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/review"
	"github.com/yungbote/studyforge-backend/internal/observability"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type AttemptResult struct {
	AttemptID     uint   `json:"attempt_id"`
	QuestionID    uint   `json:"question_id"`
	ExamSessionID *uint  `json:"exam_session_id,omitempty"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
	// NextReviewAt is set when a miss outside an exam scheduled a review.
	NextReviewAt *time.Time `json:"next_review_at,omitempty"`
}

type AttemptService interface {
	GradeAndRecord(ctx context.Context, questionID, userID uint, submitted string, sessionID *uint) (*AttemptResult, error)
	ListAttempts(ctx context.Context, userID uint, offset, limit int) ([]*types.Attempt, error)
}

type attemptService struct {
	log       *logger.Logger
	tx        txagg.TxRunner
	uploads   repos.UploadRepo
	chapters  repos.ChapterRepo
	questions repos.QuestionRepo
	attempts  repos.AttemptRepo
	sessions  repos.ExamSessionRepo
	reviews   repos.ReviewRecommendationRepo
	scheduler *review.Scheduler
	now       Clock
}

func NewAttemptService(log *logger.Logger, tx txagg.TxRunner, r repos.Set, scheduler *review.Scheduler, now Clock) AttemptService {
	if scheduler == nil {
		scheduler = review.NewDefaultScheduler()
	}
	return &attemptService{
		log:       log.With("service", "AttemptService"),
		tx:        tx,
		uploads:   r.Upload,
		chapters:  r.Chapter,
		questions: r.Question,
		attempts:  r.Attempt,
		sessions:  r.ExamSession,
		reviews:   r.ReviewRecommendation,
		scheduler: scheduler,
		now:       orClock(now),
	}
}

func (s *attemptService) GradeAndRecord(ctx context.Context, questionID, userID uint, submitted string, sessionID *uint) (res *AttemptResult, err error) {
	const op = "attempts.grade_and_record"
	if userID == 0 {
		return nil, invalid(op, "user is required")
	}
	ctx, span := observability.StartSpan(ctx, op, "question_id", questionID)
	defer func() { observability.EndSpan(span, err) }()

	dbc := dbctx.Context{Ctx: ctx}
	q, err := s.questions.GetByID(dbc, questionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if q == nil {
		return nil, notFound(op, "question")
	}
	if _, _, err := ownedChapter(dbc, s.uploads, s.chapters, op, userID, q.ChapterID); err != nil {
		if aggregates.IsCode(err, aggregates.CodeNotFound) {
			return nil, notFound(op, "question")
		}
		return nil, err
	}

	if sessionID != nil {
		sess, err := s.sessions.GetByID(dbc, *sessionID)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if sess == nil || sess.UserID != userID {
			return nil, notFound(op, "exam session")
		}
		if !sess.Active() {
			return nil, aggregates.NewError(aggregates.CodePreconditionFailed, op, "exam session is already completed", nil)
		}
		if sess.ChapterID != q.ChapterID {
			return nil, invalid(op, "question does not belong to the session's chapter")
		}
	}

	g, err := grading.FromQuestion(q)
	if err != nil {
		return nil, err
	}
	correct, err := grading.Grade(g, submitted)
	if err != nil {
		s.log.Error("Stored question cannot be graded", "question_id", q.ID, "error", err)
		return nil, err
	}

	now := s.now()
	res = &AttemptResult{
		QuestionID:    q.ID,
		ExamSessionID: sessionID,
		IsCorrect:     correct,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		a := &types.Attempt{
			UserID:        userID,
			QuestionID:    q.ID,
			ExamSessionID: sessionID,
			ChosenAnswer:  submitted,
			IsCorrect:     correct,
			AttemptedAt:   now,
		}
		if err := s.attempts.Create(dbc, a); err != nil {
			return err
		}
		res.AttemptID = a.ID
		// Misses inside an exam are scheduled when the session completes.
		if correct || sessionID != nil {
			return nil
		}
		st := s.scheduler.Miss(now)
		if err := s.reviews.Upsert(dbc, &types.ReviewRecommendation{
			UserID:         userID,
			QuestionID:     q.ID,
			ReviewStage:    st.Stage,
			LastReviewedAt: st.LastReviewedAt,
			NextReviewAt:   st.NextReviewAt,
		}); err != nil {
			return err
		}
		next := st.NextReviewAt
		res.NextReviewAt = &next
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	m := observability.Current()
	m.IncAttemptGraded(string(q.QuestionType), correct)
	if res.NextReviewAt != nil {
		m.IncReviewTransition("miss")
	}
	return res, nil
}

func (s *attemptService) ListAttempts(ctx context.Context, userID uint, offset, limit int) ([]*types.Attempt, error) {
	const op = "attempts.list"
	offset, limit = page(offset, limit)
	out, err := s.attempts.ListByUser(dbctx.Context{Ctx: ctx}, userID, offset, limit)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if out == nil {
		out = []*types.Attempt{}
	}
	return out, nil
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func page(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}
