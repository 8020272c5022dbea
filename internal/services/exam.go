package services

import (
	"context"
	"fmt"
	"time"

	txagg "github.com/yungbote/studyforge-backend/internal/data/aggregates"
	"github.com/yungbote/studyforge-backend/internal/data/repos"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/review"
	"github.com/yungbote/studyforge-backend/internal/observability"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/locker"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

const sessionLockTTL = 10 * time.Second

type HistoryAttempt struct {
	QuestionID    uint      `json:"question_id"`
	QuestionText  string    `json:"question_text"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	IsCorrect     bool      `json:"is_correct"`
	Explanation   string    `json:"explanation,omitempty"`
	AttemptedAt   time.Time `json:"attempted_at"`
}

type ExamHistoryItem struct {
	Session               *types.ExamSession `json:"session"`
	ChapterTitle          string             `json:"chapter_title"`
	UploadFilename        string             `json:"upload_filename"`
	PerformancePercentage float64            `json:"performance_percentage"`
	Attempts              []HistoryAttempt   `json:"attempts"`
}

type ExamService interface {
	// StartSession returns the caller's active session for the chapter, creating one if none exists.
	StartSession(ctx context.Context, userID, chapterID uint) (*types.ExamSession, error)
	CompleteSession(ctx context.Context, userID, sessionID uint) (*types.ExamSession, error)
	History(ctx context.Context, userID uint, offset, limit int) ([]ExamHistoryItem, error)
}

type examService struct {
	log       *logger.Logger
	tx        txagg.TxRunner
	locks     locker.Locker
	uploads   repos.UploadRepo
	chapters  repos.ChapterRepo
	questions repos.QuestionRepo
	attempts  repos.AttemptRepo
	sessions  repos.ExamSessionRepo
	reviews   repos.ReviewRecommendationRepo
	scheduler *review.Scheduler
	now       Clock
}

func NewExamService(log *logger.Logger, tx txagg.TxRunner, locks locker.Locker, r repos.Set, scheduler *review.Scheduler, now Clock) ExamService {
	if locks == nil {
		locks = locker.NewLocal()
	}
	if scheduler == nil {
		scheduler = review.NewDefaultScheduler()
	}
	return &examService{
		log:       log.With("service", "ExamService"),
		tx:        tx,
		locks:     locks,
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

func (s *examService) StartSession(ctx context.Context, userID, chapterID uint) (*types.ExamSession, error) {
	const op = "exam.start"
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := ownedChapter(dbc, s.uploads, s.chapters, op, userID, chapterID); err != nil {
		return nil, err
	}

	unlock, err := s.locks.Acquire(ctx, fmt.Sprintf("exam_session:%d:%d", userID, chapterID), sessionLockTTL)
	if err != nil {
		return nil, aggregates.NewError(aggregates.CodeConflict, op, "another session start is in progress", err)
	}
	defer unlock()

	var out *types.ExamSession
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		active, err := s.sessions.GetActive(dbc, userID, chapterID)
		if err != nil {
			return err
		}
		if active != nil {
			out = active
			return nil
		}
		total, err := s.questions.CountByChapter(dbc, chapterID)
		if err != nil {
			return err
		}
		if total == 0 {
			return aggregates.NewError(aggregates.CodePreconditionFailed, op, "chapter has no questions yet", nil)
		}
		out = &types.ExamSession{
			UserID:         userID,
			ChapterID:      chapterID,
			TotalQuestions: int(total),
			StartedAt:      s.now(),
		}
		return s.sessions.Create(dbc, out)
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

func (s *examService) CompleteSession(ctx context.Context, userID, sessionID uint) (*types.ExamSession, error) {
	const op = "exam.complete"
	var out *types.ExamSession
	var missed []uint
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		sess, err := s.sessions.GetByID(dbc, sessionID)
		if err != nil {
			return err
		}
		if sess == nil || sess.UserID != userID {
			return notFound(op, "exam session")
		}
		if !sess.Active() {
			return aggregates.NewError(aggregates.CodeConflict, op, "exam session is already completed", nil)
		}
		attempts, err := s.attempts.ListBySession(dbc, sess.ID)
		if err != nil {
			return err
		}
		var score int
		score, missed = scoreAttempts(attempts)
		if score > sess.TotalQuestions {
			score = sess.TotalQuestions
		}

		now := s.now()
		ok, err := s.sessions.Complete(dbc, sess.ID, score, now)
		if err != nil {
			return err
		}
		if !ok {
			return aggregates.NewError(aggregates.CodeConflict, op, "exam session is already completed", nil)
		}
		st := s.scheduler.Miss(now)
		for _, qid := range missed {
			if err := s.reviews.Upsert(dbc, &types.ReviewRecommendation{
				UserID:         userID,
				QuestionID:     qid,
				ReviewStage:    st.Stage,
				LastReviewedAt: st.LastReviewedAt,
				NextReviewAt:   st.NextReviewAt,
			}); err != nil {
				return err
			}
		}
		sess.Score = score
		sess.CompletedAt = &now
		out = sess
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	m := observability.Current()
	for range missed {
		m.IncReviewTransition("miss")
	}
	s.log.Info("Exam session completed", "session_id", out.ID, "score", out.Score, "total", out.TotalQuestions, "missed", len(missed))
	return out, nil
}

// scoreAttempts counts distinct questions answered correctly at least once. A question is missed
// when every attempt on it was wrong. Missed ids keep first-attempt order.
func scoreAttempts(attempts []*types.Attempt) (int, []uint) {
	right := map[uint]bool{}
	var order []uint
	for _, a := range attempts {
		if _, seen := right[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
			right[a.QuestionID] = false
		}
		if a.IsCorrect {
			right[a.QuestionID] = true
		}
	}
	score := 0
	var missed []uint
	for _, qid := range order {
		if right[qid] {
			score++
		} else {
			missed = append(missed, qid)
		}
	}
	return score, missed
}

func (s *examService) History(ctx context.Context, userID uint, offset, limit int) ([]ExamHistoryItem, error) {
	const op = "exam.history"
	offset, limit = page(offset, limit)
	dbc := dbctx.Context{Ctx: ctx}

	sessions, err := s.sessions.ListCompletedByUser(dbc, userID, offset, limit)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	out := make([]ExamHistoryItem, 0, len(sessions))
	if len(sessions) == 0 {
		return out, nil
	}

	sessionIDs := make([]uint, 0, len(sessions))
	chapterIDs := make([]uint, 0, len(sessions))
	for _, sess := range sessions {
		sessionIDs = append(sessionIDs, sess.ID)
		chapterIDs = append(chapterIDs, sess.ChapterID)
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

	attempts, err := s.attempts.ListBySessionIDs(dbc, sessionIDs)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	questionIDs := make([]uint, 0, len(attempts))
	bySession := map[uint][]*types.Attempt{}
	for _, a := range attempts {
		if a.ExamSessionID == nil {
			continue
		}
		bySession[*a.ExamSessionID] = append(bySession[*a.ExamSessionID], a)
		questionIDs = append(questionIDs, a.QuestionID)
	}
	questions, err := s.questions.GetByIDsWithDeleted(dbc, questionIDs)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	questionByID := make(map[uint]*types.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	for _, sess := range sessions {
		item := ExamHistoryItem{
			Session:               sess,
			PerformancePercentage: sess.PerformancePercentage(),
			Attempts:              []HistoryAttempt{},
		}
		if ch := chapterByID[sess.ChapterID]; ch != nil {
			item.ChapterTitle = ch.Title
			if u := uploadByID[ch.UploadID]; u != nil {
				item.UploadFilename = u.Filename
			}
		}
		for _, a := range bySession[sess.ID] {
			ha := HistoryAttempt{
				QuestionID:  a.QuestionID,
				UserAnswer:  a.ChosenAnswer,
				IsCorrect:   a.IsCorrect,
				AttemptedAt: a.AttemptedAt,
			}
			if q := questionByID[a.QuestionID]; q != nil {
				ha.QuestionText = q.QuestionText
				ha.CorrectAnswer = q.CorrectAnswer
				ha.Explanation = q.Explanation
			}
			item.Attempts = append(item.Attempts, ha)
		}
		out = append(out, item)
	}
	return out, nil
}
