package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"gorm.io/gorm"

	txagg "github.com/yungbote/studyforge-backend/internal/data/aggregates"
	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/analysis"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/ingestion/segment"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/questiongen"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/review"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/rules"
	"github.com/yungbote/studyforge-backend/internal/platform/locker"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

const richChapter = "A stack is a data structure that stores items in last-in first-out order. " +
	"A queue is a data structure that serves items in first-in first-out order. " +
	"Recursion requires memory for every active call frame. " +
	"A Binary Search Tree contains nodes ordered by key value. " +
	"Hashing leads to constant lookup time in the average case. " +
	"Sorting algorithms, such as merge sort and quick sort, arrange values in order. " +
	"Common data structures, including linked lists and arrays, appear in every program. " +
	"The compiler translates source code into machine instructions for the processor. " +
	"A database is a system that stores structured records on disk. " +
	"Caching can reduce the latency of repeated network requests. " +
	"Every function returns a value to its caller when it completes."

var fourOptions = []string{"Paris", "London", "Rome", "Berlin"}

type harness struct {
	ctx   context.Context
	db    *gorm.DB
	log   *logger.Logger
	repos repos.Set
	tx    txagg.TxRunner
	rules *rules.Set
	now   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &harness{
		ctx:   context.Background(),
		db:    db,
		log:   log,
		repos: repos.NewSet(db, log),
		tx:    txagg.NewGormTxRunner(db),
		rules: rules.Default(),
		now:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (h *harness) clock() Clock { return func() time.Time { return h.now } }

func (h *harness) questionService() QuestionService {
	return NewQuestionService(h.log, h.tx, h.repos, analysis.New(h.rules), questiongen.New(h.rules, h.log), QuestionServiceConfig{
		NewRand: func() *rand.Rand { return rand.New(rand.NewSource(7)) },
	})
}

func (h *harness) ingestionService(cfg IngestionConfig) IngestionService {
	return NewIngestionService(h.log, h.repos, segment.New(h.rules, h.log), h.questionService(), cfg)
}

func (h *harness) attemptService() AttemptService {
	return NewAttemptService(h.log, h.tx, h.repos, review.NewDefaultScheduler(), h.clock())
}

func (h *harness) examService() ExamService {
	return NewExamService(h.log, h.tx, locker.NewLocal(), h.repos, review.NewDefaultScheduler(), h.clock())
}

func (h *harness) reviewService() ReviewService {
	return NewReviewService(h.log, h.tx, h.repos, review.NewDefaultScheduler(), h.clock())
}

// chapterWithQuestions seeds an upload owned by userID, one chapter and n multiple-choice questions.
func (h *harness) chapterWithQuestions(t *testing.T, userID uint, n int) (*types.Chapter, []*types.Question) {
	t.Helper()
	u := testutil.SeedUpload(t, h.ctx, h.db, userID, types.UploadStatusCompleted)
	ch := testutil.SeedChapter(t, h.ctx, h.db, u.ID, 1, richChapter)
	var qs []*types.Question
	for i := 0; i < n; i++ {
		qs = append(qs, testutil.SeedMCQuestion(t, h.ctx, h.db, ch.ID, fourOptions))
	}
	return ch, qs
}

func wantCode(t *testing.T, err error, code aggregates.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := aggregates.CodeOf(err); got != code {
		t.Fatalf("expected code %s, got %q (%v)", code, got, err)
	}
}
