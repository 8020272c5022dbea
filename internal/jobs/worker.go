package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// Processor runs the pipeline for one claimed upload.
type Processor interface {
	ProcessUpload(ctx context.Context, uploadID uint) error
}

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	// StaleAfter is how long an upload may sit in processing before it is requeued.
	StaleAfter time.Duration
}

type Worker struct {
	log     *logger.Logger
	uploads repos.UploadRepo
	proc    Processor
	cfg     Config
	wake    chan struct{}
	wg      sync.WaitGroup
}

func NewWorker(baseLog *logger.Logger, uploads repos.UploadRepo, proc Processor, cfg Config) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * time.Minute
	}
	return &Worker{
		log:     baseLog.With("component", "UploadWorker"),
		uploads: uploads,
		proc:    proc,
		cfg:     cfg,
		wake:    make(chan struct{}, 1),
	}
}

// Start launches the polling loops. They stop when ctx is cancelled; Wait blocks until they have.
func (w *Worker) Start(ctx context.Context) {
	w.requeueStale(ctx)
	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go func(slot int) {
			defer w.wg.Done()
			w.loop(ctx, slot)
		}(i)
	}
	w.log.Info("Upload worker started", "concurrency", w.cfg.Concurrency, "poll_interval", w.cfg.PollInterval)
}

func (w *Worker) Wait() { w.wg.Wait() }

// Notify wakes one idle loop early, typically right after an upload is created.
func (w *Worker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) loop(ctx context.Context, slot int) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()
	for {
		// Drain the queue before sleeping again.
		for {
			claimed, err := w.RunOnce(ctx)
			if err != nil && ctx.Err() == nil {
				w.log.Warn("Upload claim failed", "slot", slot, "error", err)
			}
			if !claimed || ctx.Err() != nil {
				break
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			if slot == 0 {
				w.requeueStale(ctx)
			}
		case <-ticker.C:
		case <-w.wake:
		}
	}
}

// RunOnce claims and processes at most one pending upload. It reports whether one was claimed.
// Processing failures are recorded on the upload, not returned.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	u, err := w.uploads.ClaimNextPending(dbctx.Context{Ctx: ctx})
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	log := w.log.With("upload_id", u.ID)
	log.Info("Claimed upload")

	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Upload processing panic", "panic", r)
				w.markPanicked(ctx, u)
			}
		}()
		if err := w.proc.ProcessUpload(ctx, u.ID); err != nil {
			log.Warn("Upload processing ended with error", "error", err, "error_code", aggregates.CodeOf(err))
		}
	}()
	return true, nil
}

func (w *Worker) markPanicked(ctx context.Context, u *types.Upload) {
	dbc := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
	if err := w.uploads.UpdateStatus(dbc, u.ID, types.UploadStatusFailed, string(aggregates.CodeInternal)); err != nil {
		w.log.Error("Could not mark upload failed after panic", "upload_id", u.ID, "error", err)
	}
	_ = w.uploads.AppendLog(dbc, u.ID, "error", "Processing failed")
}

func (w *Worker) requeueStale(ctx context.Context) {
	before := time.Now().UTC().Add(-w.cfg.StaleAfter)
	n, err := w.uploads.RequeueProcessing(dbctx.Context{Ctx: ctx}, before)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn("Requeue of stale uploads failed", "error", err)
		}
		return
	}
	if n > 0 {
		w.log.Info("Requeued stale uploads", "count", n, "stale_before", before.Format(time.RFC3339))
	}
}
