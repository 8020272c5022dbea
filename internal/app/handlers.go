package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/studyforge-backend/internal/http"
	httpH "github.com/yungbote/studyforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studyforge-backend/internal/http/middleware"
	"github.com/yungbote/studyforge-backend/internal/observability"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	RateLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Upload   *httpH.UploadHandler
	Question *httpH.QuestionHandler
	Exam     *httpH.ExamHandler
	Attempt  *httpH.AttemptHandler
	Review   *httpH.ReviewHandler
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
		RateLimiter: httpMW.NewRateLimiter(cfg.RatePerSecond, cfg.RateBurst),
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, svc Services) Handlers {
	log.Info("Wiring handlers...")
	var notify func()
	if svc.Worker != nil {
		notify = svc.Worker.Notify
	}
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Upload:   httpH.NewUploadHandler(svc.Uploads, cfg.MaxUploadBytes, notify),
		Question: httpH.NewQuestionHandler(svc.Questions, cfg.DefaultQuestionCount),
		Exam:     httpH.NewExamHandler(svc.Exams),
		Attempt:  httpH.NewAttemptHandler(svc.Attempts),
		Review:   httpH.NewReviewHandler(svc.Reviews),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, mw Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		Metrics:         metrics,
		AuthMiddleware:  mw.Auth,
		RateLimiter:     mw.RateLimiter,
		UploadHandler:   handlers.Upload,
		QuestionHandler: handlers.Question,
		ExamHandler:     handlers.Exam,
		AttemptHandler:  handlers.Attempt,
		ReviewHandler:   handlers.Review,
		HealthHandler:   handlers.Health,
	})
}
