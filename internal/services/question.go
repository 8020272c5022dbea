package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	txagg "github.com/yungbote/studyforge-backend/internal/data/aggregates"
	"github.com/yungbote/studyforge-backend/internal/data/repos"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/analysis"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/questiongen"
	"github.com/yungbote/studyforge-backend/internal/observability"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type QuestionServiceConfig struct {
	// MaxPerRequest caps requested counts. Defaults to 50.
	MaxPerRequest int
	// KeywordLimit bounds the chapter keyword backfill. Defaults to 8.
	KeywordLimit int
	// DefaultDifficulty applies when a request leaves difficulty empty.
	DefaultDifficulty string
	// NewRand seeds one generation run. Defaults to a time-seeded source.
	NewRand func() *rand.Rand
}

type QuestionService interface {
	// GenerateQuestions returns the ids of the persisted questions. Fewer than requested is not an error.
	GenerateQuestions(ctx context.Context, chapterID uint, requested int, difficulty string, kinds ...types.QuestionType) ([]uint, error)
	// GenerateForUser is GenerateQuestions behind an ownership check.
	GenerateForUser(ctx context.Context, userID, chapterID uint, requested int, difficulty string, kinds ...types.QuestionType) ([]uint, error)
	ListQuestions(ctx context.Context, userID, chapterID uint) ([]*types.Question, error)
}

type questionService struct {
	log       *logger.Logger
	tx        txagg.TxRunner
	uploads   repos.UploadRepo
	chapters  repos.ChapterRepo
	questions repos.QuestionRepo
	analyzer  *analysis.Analyzer
	synth     *questiongen.Synthesizer
	cfg       QuestionServiceConfig
}

func NewQuestionService(
	log *logger.Logger,
	tx txagg.TxRunner,
	r repos.Set,
	analyzer *analysis.Analyzer,
	synth *questiongen.Synthesizer,
	cfg QuestionServiceConfig,
) QuestionService {
	if cfg.MaxPerRequest <= 0 {
		cfg.MaxPerRequest = 50
	}
	if cfg.KeywordLimit <= 0 {
		cfg.KeywordLimit = 8
	}
	if strings.TrimSpace(cfg.DefaultDifficulty) == "" {
		cfg.DefaultDifficulty = types.DifficultyMedium
	}
	if cfg.NewRand == nil {
		cfg.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	return &questionService{
		log:       log.With("service", "QuestionService"),
		tx:        tx,
		uploads:   r.Upload,
		chapters:  r.Chapter,
		questions: r.Question,
		analyzer:  analyzer,
		synth:     synth,
		cfg:       cfg,
	}
}

func normalizeDifficulty(raw, def string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(raw))
	if d == "" {
		d = strings.ToLower(strings.TrimSpace(def))
	}
	switch d {
	case types.DifficultyEasy, types.DifficultyMedium, types.DifficultyHard, types.DifficultyMixed:
		return d, true
	}
	return "", false
}

func (s *questionService) GenerateForUser(ctx context.Context, userID, chapterID uint, requested int, difficulty string, kinds ...types.QuestionType) ([]uint, error) {
	if _, _, err := ownedChapter(dbctx.Context{Ctx: ctx}, s.uploads, s.chapters, "questions.generate", userID, chapterID); err != nil {
		return nil, err
	}
	return s.GenerateQuestions(ctx, chapterID, requested, difficulty, kinds...)
}

func (s *questionService) GenerateQuestions(ctx context.Context, chapterID uint, requested int, difficulty string, kinds ...types.QuestionType) (ids []uint, err error) {
	const op = "questions.generate"
	if requested < 1 || requested > s.cfg.MaxPerRequest {
		return nil, invalid(op, fmt.Sprintf("count must be between 1 and %d", s.cfg.MaxPerRequest))
	}
	diff, ok := normalizeDifficulty(difficulty, s.cfg.DefaultDifficulty)
	if !ok {
		return nil, invalid(op, fmt.Sprintf("unknown difficulty %q", difficulty))
	}
	for _, k := range kinds {
		if !k.Valid() {
			return nil, invalid(op, fmt.Sprintf("unknown question type %q", k))
		}
	}

	ctx, span := observability.StartSpan(ctx, op, "chapter_id", chapterID, "requested", requested, "difficulty", diff)
	defer func() { observability.EndSpan(span, err) }()

	dbc := dbctx.Context{Ctx: ctx}
	ch, err := s.chapters.GetByID(dbc, chapterID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if ch == nil {
		return nil, notFound(op, "chapter")
	}

	metrics := observability.Current()

	start := time.Now()
	res := s.analyzer.Analyze(ch.Content)
	metrics.ObserveStage("analyze", nil, time.Since(start))

	var keywords []string
	if len(ch.KeywordList()) == 0 {
		keywords = res.TopConcepts(s.cfg.KeywordLimit)
	}

	var drafts []questiongen.Draft
	if res.Empty() {
		metrics.IncGenerationSkip("empty_analysis")
		s.log.Info("Chapter has no usable material for questions", "chapter_id", ch.ID)
	} else {
		start = time.Now()
		drafts = s.synth.Synthesize(ctx, res, questiongen.Request{Count: requested, Difficulty: diff, Kinds: kinds}, s.cfg.NewRand())
		metrics.ObserveStage("synthesize", nil, time.Since(start))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([]*types.Question, 0, len(drafts))
	for _, d := range drafts {
		q := &types.Question{
			ChapterID:     ch.ID,
			QuestionText:  d.QuestionText,
			QuestionType:  d.QuestionType,
			CorrectAnswer: d.CorrectAnswer,
			Difficulty:    d.Difficulty,
			Explanation:   d.Explanation,
		}
		if err := q.SetOptions(d.Options); err != nil {
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		rows = append(rows, q)
	}

	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		updates := map[string]interface{}{}
		if len(keywords) > 0 {
			probe := &types.Chapter{}
			if err := probe.SetKeywords(keywords); err != nil {
				return err
			}
			updates["keywords"] = probe.Keywords
		}
		if len(rows) > 0 {
			created, err := s.questions.Create(dbc, rows)
			if err != nil {
				return err
			}
			for _, q := range created {
				ids = append(ids, q.ID)
			}
			updates["has_questions"] = true
		}
		if len(updates) == 0 {
			return nil
		}
		return s.chapters.UpdateFields(dbc, ch.ID, updates)
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	perCategory := map[questiongen.Category]int{}
	for _, d := range drafts {
		perCategory[d.Category]++
	}
	for cat, n := range perCategory {
		metrics.AddQuestionsGenerated(string(cat), n)
	}
	if len(ids) < requested {
		metrics.IncUnderGenerated(diff)
		s.log.Info("Generated fewer questions than requested",
			"chapter_id", ch.ID, "requested", requested, "generated", len(ids))
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

func (s *questionService) ListQuestions(ctx context.Context, userID, chapterID uint) ([]*types.Question, error) {
	const op = "questions.list"
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := ownedChapter(dbc, s.uploads, s.chapters, op, userID, chapterID); err != nil {
		return nil, err
	}
	out, err := s.questions.ListByChapter(dbc, chapterID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if out == nil {
		out = []*types.Question{}
	}
	return out, nil
}
