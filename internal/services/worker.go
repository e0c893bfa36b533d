package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(reportID uuid.UUID)
}

type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
}

type worker struct {
	reportRepo    repositories.ReportRepository
	reportService ReportService
	jobQueue      chan uuid.UUID
	concurrency   int
	pollInterval  time.Duration
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopOnce      sync.Once
}

func NewWorker(
	reportRepo repositories.ReportRepository,
	reportService ReportService,
	cfg WorkerConfig,
) Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	return &worker{
		reportRepo:    reportRepo,
		reportService: reportService,
		jobQueue:      make(chan uuid.UUID, cfg.QueueSize),
		concurrency:   cfg.Concurrency,
		pollInterval:  cfg.PollInterval,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Infof("🚀 Starting worker with %d concurrent workers", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Info("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Info("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Info("✅ Worker stopped")
	})
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(reportID uuid.UUID) {
	select {
	case w.jobQueue <- reportID:
		log.WithField("report_id", reportID).Info("📥 Job enqueued")
	case <-w.stopChan:
		log.WithField("report_id", reportID).Warn("⚠️ Worker stopped, cannot enqueue job")
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	logger := log.WithField("worker", workerID)
	logger.Info("🚀 Worker started processing jobs")

	for {
		select {
		case <-w.stopChan:
			logger.Info("👷 Worker stopped")
			return
		case <-ctx.Done():
			logger.Info("👷 Worker context done")
			return
		case reportID := <-w.jobQueue:
			jobLogger := logger.WithField("report_id", reportID)
			jobLogger.Info("👷 Processing job")
			if err := w.reportService.ProcessReport(ctx, reportID); err != nil {
				jobLogger.WithError(err).Error("❌ Failed to process job")
			} else {
				jobLogger.Info("✅ Completed job")
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Info("🔄 Starting pending jobs poller")

	for {
		select {
		case <-w.stopChan:
			log.Info("🔄 Pending jobs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.reportRepo.FindPendingJobs(10)
			if err != nil {
				log.WithError(err).Warn("⚠️ Failed to fetch pending jobs")
				continue
			}

			if len(pendingJobs) > 0 {
				log.Infof("📋 Found %d pending jobs", len(pendingJobs))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
