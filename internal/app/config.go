package app

import (
	"time"

	"github.com/yungbote/studyforge-backend/internal/data/db"
	"github.com/yungbote/studyforge-backend/internal/platform/envutil"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	LogMode     string
	Environment string
	ServiceName string

	DB db.Config

	JWTSecretKey string
	RedisAddr    string

	UploadDir      string
	MaxUploadBytes int64
	RulesFile      string

	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerStaleAfter   time.Duration

	ChapterConcurrency   int
	QuestionsPerChapter  int
	DefaultQuestionCount int
	MaxQuestionsPerCall  int

	AllowedOrigins []string
	RatePerSecond  float64
	RateBurst      int

	MetricsInterval time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		Environment: envutil.String("APP_ENV", "development"),
		ServiceName: envutil.String("SERVICE_NAME", "studyforge-api"),

		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", db.DriverPostgres),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "studyforge"),
			SQLitePath: envutil.String("SQLITE_PATH", "studyforge.db"),
			LogLevel:   envutil.String("DB_LOG_LEVEL", "warn"),
		},

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		RedisAddr:    envutil.String("REDIS_ADDR", ""),

		UploadDir:      envutil.String("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(envutil.Int("MAX_UPLOAD_BYTES", 50<<20)),
		RulesFile:      envutil.String("RULES_FILE", ""),

		WorkerConcurrency:  envutil.Int("WORKER_CONCURRENCY", 2),
		WorkerPollInterval: envutil.Duration("WORKER_POLL_INTERVAL", 2*time.Second),
		WorkerStaleAfter:   envutil.Duration("WORKER_STALE_AFTER", 30*time.Minute),

		ChapterConcurrency:   envutil.Int("CHAPTER_CONCURRENCY", 4),
		QuestionsPerChapter:  envutil.Int("QUESTIONS_PER_CHAPTER", 10),
		DefaultQuestionCount: envutil.Int("DEFAULT_QUESTION_COUNT", 10),
		MaxQuestionsPerCall:  envutil.Int("MAX_QUESTIONS_PER_REQUEST", 50),

		AllowedOrigins: envutil.List("ALLOWED_ORIGINS", nil),
		RatePerSecond:  envutil.Float("RATE_LIMIT_PER_SECOND", 10),
		RateBurst:      envutil.Int("RATE_LIMIT_BURST", 20),

		MetricsInterval: envutil.Duration("METRICS_COLLECT_INTERVAL", 30*time.Second),
	}
	if cfg.MaxQuestionsPerCall < 1 {
		cfg.MaxQuestionsPerCall = 50
	}
	cfg.QuestionsPerChapter = clampCount(log, "QUESTIONS_PER_CHAPTER", cfg.QuestionsPerChapter, cfg.MaxQuestionsPerCall)
	cfg.DefaultQuestionCount = clampCount(log, "DEFAULT_QUESTION_COUNT", cfg.DefaultQuestionCount, cfg.MaxQuestionsPerCall)
	if cfg.JWTSecretKey == "" && log != nil {
		log.Warn("JWT_SECRET_KEY is not set; every authenticated request will be rejected")
	}
	return cfg
}

// clampCount keeps a configured question count inside what GenerateQuestions accepts.
func clampCount(log *logger.Logger, key string, n, limit int) int {
	out := n
	if out < 1 {
		out = 1
	}
	if out > limit {
		out = limit
	}
	if out != n && log != nil {
		log.Warn("Question count out of range, clamped", "key", key, "value", n, "using", out, "max", limit)
	}
	return out
}
