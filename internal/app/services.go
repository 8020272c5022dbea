package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	txagg "github.com/yungbote/studyforge-backend/internal/data/aggregates"
	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/jobs"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/analysis"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/ingestion/segment"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/questiongen"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/review"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/rules"
	"github.com/yungbote/studyforge-backend/internal/platform/locker"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
	"github.com/yungbote/studyforge-backend/internal/services"
)

type Services struct {
	Uploads   services.UploadService
	Questions services.QuestionService
	Ingestion services.IngestionService
	Attempts  services.AttemptService
	Exams     services.ExamService
	Reviews   services.ReviewService

	Worker *jobs.Worker
	Redis  *goredis.Client
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Set) (Services, error) {
	log.Info("Wiring services...")

	ruleSet, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return Services{}, fmt.Errorf("load rules: %w", err)
	}
	if cfg.RulesFile != "" {
		log.Info("Loaded rule overrides", "path", cfg.RulesFile)
	}

	files, err := services.NewLocalFileStore(log, cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		return Services{}, fmt.Errorf("init upload store: %w", err)
	}

	locks := locker.NewLocal()
	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		redisLocks, client, err := locker.NewRedis(log, cfg.RedisAddr)
		if err != nil {
			return Services{}, fmt.Errorf("init redis locker: %w", err)
		}
		locks, rdb = redisLocks, client
		log.Info("Using redis locks", "addr", cfg.RedisAddr)
	}

	tx := txagg.NewGormTxRunner(db)
	scheduler := review.NewDefaultScheduler()

	questions := services.NewQuestionService(log, tx, r, analysis.New(ruleSet), questiongen.New(ruleSet, log), services.QuestionServiceConfig{
		MaxPerRequest:     cfg.MaxQuestionsPerCall,
		KeywordLimit:      ruleSet.Analysis.KeywordLimit,
		DefaultDifficulty: ruleSet.Questions.DefaultDifficulty,
	})
	ingestion := services.NewIngestionService(log, r, segment.New(ruleSet, log), questions, services.IngestionConfig{
		ChapterConcurrency:  cfg.ChapterConcurrency,
		QuestionsPerChapter: cfg.QuestionsPerChapter,
		Difficulty:          ruleSet.Questions.DefaultDifficulty,
	})

	return Services{
		Uploads:   services.NewUploadService(log, tx, files, r),
		Questions: questions,
		Ingestion: ingestion,
		Attempts:  services.NewAttemptService(log, tx, r, scheduler, nil),
		Exams:     services.NewExamService(log, tx, locks, r, scheduler, nil),
		Reviews:   services.NewReviewService(log, tx, r, scheduler, nil),
		Worker: jobs.NewWorker(log, r.Upload, ingestion, jobs.Config{
			Concurrency:  cfg.WorkerConcurrency,
			PollInterval: cfg.WorkerPollInterval,
			StaleAfter:   cfg.WorkerStaleAfter,
		}),
		Redis: rdb,
	}, nil
}
