package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/envutil"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// Metrics is nil-safe: every method is a no-op on a nil receiver, so callers never check Enabled.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	stageLatency *HistogramVec
	stageTotal   *CounterVec

	questionsGenerated *CounterVec
	underGenerated     *CounterVec
	generationSkips    *CounterVec
	attemptsGraded     *CounterVec
	reviewTransitions  *CounterVec

	uploadsByStatus *GaugeVec
	redisUp         *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide registry when METRICS_ENABLED is on; otherwise it returns nil.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// NewMetrics builds an unregistered registry; tests use it directly.
func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("sf_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"sf_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("sf_api_inflight_requests", "In-flight API requests."),
		stageLatency: NewHistogramVec(
			"sf_pipeline_stage_duration_seconds",
			"Pipeline stage latency (segment, analyze, synthesize, persist) by status.",
			[]string{"stage", "status"},
			[]float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		),
		stageTotal:         NewCounterVec("sf_pipeline_stage_total", "Pipeline stage runs by status.", []string{"stage", "status"}),
		questionsGenerated: NewCounterVec("sf_questions_generated_total", "Persisted questions by category.", []string{"category"}),
		underGenerated:     NewCounterVec("sf_questions_under_generated_total", "Generation requests that produced fewer questions than requested.", []string{"difficulty"}),
		generationSkips:    NewCounterVec("sf_generation_skips_total", "Per-sentence generation attempts skipped by reason.", []string{"reason"}),
		attemptsGraded:     NewCounterVec("sf_attempts_graded_total", "Graded attempts by question type and verdict.", []string{"question_type", "correct"}),
		reviewTransitions:  NewCounterVec("sf_review_transitions_total", "Review scheduler transitions.", []string{"transition"}),
		uploadsByStatus:    NewGaugeVec("sf_uploads", "Uploads by processing status.", []string{"status"}),
		redisUp:            NewGauge("sf_redis_up", "Redis reachability (1 up, 0 down)."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.stageLatency, m.stageTotal,
		m.questionsGenerated, m.underGenerated, m.generationSkips,
		m.attemptsGraded, m.reviewTransitions,
		m.uploadsByStatus, m.redisUp,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	m.apiRequests.Inc(method, route, code)
	m.apiLatency.Observe(dur.Seconds(), method, route, code)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveStage records one pipeline stage run; err decides the status label.
func (m *Metrics) ObserveStage(stage string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.stageTotal.Inc(stage, status)
	m.stageLatency.Observe(dur.Seconds(), stage, status)
}

func (m *Metrics) AddQuestionsGenerated(category string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.questionsGenerated.Add(float64(n), category)
}

func (m *Metrics) IncUnderGenerated(difficulty string) {
	if m == nil {
		return
	}
	m.underGenerated.Inc(difficulty)
}

func (m *Metrics) IncGenerationSkip(reason string) {
	if m == nil {
		return
	}
	m.generationSkips.Inc(reason)
}

func (m *Metrics) IncAttemptGraded(questionType string, correct bool) {
	if m == nil {
		return
	}
	m.attemptsGraded.Inc(questionType, strconv.FormatBool(correct))
}

func (m *Metrics) IncReviewTransition(transition string) {
	if m == nil {
		return
	}
	m.reviewTransitions.Inc(transition)
}

// StartUploadCollector samples upload counts per status until ctx ends.
func (m *Metrics) StartUploadCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.CollectUploads(ctx, db); err != nil && log != nil {
					log.Warn("metrics: upload status query failed", "error", err)
				}
			}
		}
	}()
}

// CollectUploads takes one sample of upload counts per status.
func (m *Metrics) CollectUploads(ctx context.Context, db *gorm.DB) error {
	if m == nil {
		return nil
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.WithContext(ctx).
		Model(&types.Upload{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, s := range []types.UploadStatus{
		types.UploadStatusPending, types.UploadStatusProcessing,
		types.UploadStatusCompleted, types.UploadStatusFailed,
	} {
		m.uploadsByStatus.Set(0, string(s))
	}
	for _, row := range rows {
		m.uploadsByStatus.Set(float64(row.Count), row.Status)
	}
	return nil
}

// StartRedisCollector pings the shared client until ctx ends. The client is not closed here.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
			}
		}
	}()
}
