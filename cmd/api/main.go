package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/bootstrap"
	"alfredoptarigan/interview-coach/internal/config"
	"alfredoptarigan/interview-coach/internal/handlers"
	"alfredoptarigan/interview-coach/internal/logging"
	"alfredoptarigan/interview-coach/internal/repositories"
	"alfredoptarigan/interview-coach/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Init(cfg.Server.Env)
	log.Info("✅ Config loaded successfully")

	ctx := context.Background()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	reportRepo := repositories.NewReportRepository(db)
	recordingRepo := repositories.NewRecordingRepository(db)
	log.Info("✅ Repositories initialized successfully")

	// Initialize assessment pipeline
	pipeline, err := bootstrap.NewPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize assessment pipeline: %v", err)
	}

	var archiver services.RecordingArchiver
	if cfg.Storage.ArchiveRecordings {
		store, err := bootstrap.NewRecordingStore(ctx, cfg)
		if err != nil {
			log.Fatalf("❌ Failed to initialize recording storage: %v", err)
		}
		archiver = services.NewRecordingArchiver(store, recordingRepo)
		log.WithField("driver", store.Driver()).Info("✅ Recording archive enabled")
	}
	log.Info("✅ Services initialized successfully")

	// Initialize worker
	reportService := services.NewReportService(reportRepo, pipeline.Aggregator)
	worker := services.NewWorker(reportRepo, reportService, services.WorkerConfig{
		Concurrency:  cfg.Worker.Concurrency,
		QueueSize:    cfg.Worker.QueueSize,
		PollInterval: cfg.Worker.PollInterval,
	})

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	worker.Start(workerCtx)

	// Initialize Handlers
	questionHandler := handlers.NewQuestionHandler(pipeline.Generator)
	answerHandler := handlers.NewAnswerHandler(
		pipeline.Extractor,
		pipeline.Evaluator,
		archiver,
		cfg.Storage.MaxFileSize,
	)
	reportHandler := handlers.NewReportHandler(
		pipeline.Aggregator,
		reportService,
		reportRepo,
		worker,
	)
	log.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Interview Coach API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 10*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now(),
			"backends": backendNames(pipeline.Backends),
		})
	})

	interview := api.Group("/mock-interview", handlers.RequestTimeout(cfg.Server.RequestTimeout))
	interview.Post("/generate-questions", questionHandler.HandleGenerateQuestions)
	interview.Post("/transcribe", answerHandler.HandleTranscribe)
	interview.Post("/analyze-answer", answerHandler.HandleAnalyzeAnswer)
	interview.Post("/final-analysis", reportHandler.HandleFinalAnalysis)
	interview.Post("/reports", reportHandler.HandleCreateReport)
	interview.Get("/reports/:id", reportHandler.HandleGetReport)

	endpoints := []string{
		"POST /api/v1/mock-interview/generate-questions",
		"POST /api/v1/mock-interview/transcribe",
		"POST /api/v1/mock-interview/analyze-answer",
		"POST /api/v1/mock-interview/final-analysis",
		"POST /api/v1/mock-interview/reports",
		"GET /api/v1/mock-interview/reports/:id",
	}
	if archiver != nil {
		recordingHandler := handlers.NewRecordingHandler(archiver)
		interview.Get("/recordings", recordingHandler.HandleListRecordings)
		interview.Get("/recordings/:id", recordingHandler.HandleGetRecording)
		interview.Get("/recordings/:id/audio", recordingHandler.HandleGetRecordingAudio)
		endpoints = append(endpoints,
			"GET /api/v1/mock-interview/recordings?jobRole=",
			"GET /api/v1/mock-interview/recordings/:id",
			"GET /api/v1/mock-interview/recordings/:id/audio",
		)
	}

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "AI Interview Coach API",
			"version":   "1.0.0",
			"endpoints": endpoints,
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("❌ Server forced to shutdown")
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("🚀 Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func backendNames(backends []services.ModelBackend) []string {
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.Name())
	}
	return names
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
