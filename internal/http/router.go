package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studyforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studyforge-backend/internal/http/middleware"
	"github.com/yungbote/studyforge-backend/internal/observability"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware
	RateLimiter    *httpMW.RateLimiter

	UploadHandler   *httpH.UploadHandler
	QuestionHandler *httpH.QuestionHandler
	ExamHandler     *httpH.ExamHandler
	AttemptHandler  *httpH.AttemptHandler
	ReviewHandler   *httpH.ReviewHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.RateLimiter != nil {
			protected.Use(cfg.RateLimiter.Middleware())
		}

		// Uploads and chapters
		if cfg.UploadHandler != nil {
			protected.POST("/uploads", cfg.UploadHandler.CreateUpload)
			protected.GET("/uploads/:id", cfg.UploadHandler.GetUpload)
			protected.GET("/uploads/:id/chapters", cfg.UploadHandler.ListChapters)
			protected.DELETE("/chapters/:id", cfg.UploadHandler.DeleteChapter)
		}

		// Questions
		if cfg.QuestionHandler != nil {
			protected.POST("/chapters/:id/questions", cfg.QuestionHandler.Generate)
			protected.GET("/chapters/:id/questions", cfg.QuestionHandler.List)
		}

		// Exams
		if cfg.ExamHandler != nil {
			protected.POST("/chapters/:id/exam-sessions", cfg.ExamHandler.Start)
			protected.POST("/exam-sessions/:id/complete", cfg.ExamHandler.Complete)
			protected.GET("/exam-sessions", cfg.ExamHandler.History)
		}

		// Attempts
		if cfg.AttemptHandler != nil {
			protected.POST("/questions/:id/attempts", cfg.AttemptHandler.Submit)
			protected.GET("/attempts", cfg.AttemptHandler.List)
		}

		// Reviews
		if cfg.ReviewHandler != nil {
			protected.GET("/reviews/due", cfg.ReviewHandler.Due)
			protected.POST("/reviews/:id/complete", cfg.ReviewHandler.Complete)
			protected.POST("/reviews/:id/skip", cfg.ReviewHandler.Skip)
		}
	}

	return r
}
