package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"

	"go-interview-worker/config"
	deliveryqueue "go-interview-worker/internal/delivery/queue"
	"go-interview-worker/internal/repository/postgres"
	"go-interview-worker/internal/usecase"
	"go-interview-worker/pkg/database"
	"go-interview-worker/pkg/extract"
	"go-interview-worker/pkg/lease"
	"go-interview-worker/pkg/llm/gemini"
	"go-interview-worker/pkg/logger"
	"go-interview-worker/pkg/queue"
	"go-interview-worker/pkg/retry"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting interview worker", "queue", cfg.TaskQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Repositories
	interviewRepo := postgres.NewInterviewRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool)
	turnRepo := postgres.NewTurnRepository(dbPool)

	// 5. Setup Capabilities
	llmClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Log.Error("Failed to create Gemini client", "error", err)
		os.Exit(1)
	}
	extractor := extract.NewPDFExtractor(llmClient)

	locker, err := lease.NewLocker(lease.Config{
		URL:      cfg.RedisURL,
		Password: cfg.RedisPassword,
		TTL:      cfg.LeaseTTL,
	})
	if err != nil {
		logger.Log.Error("Failed to create interview locker", "error", err)
		os.Exit(1)
	}
	defer locker.Close()

	// 6. Setup Transport
	queueClient, err := queue.NewClient(cfg.AMQPUrl, cfg.TaskQueue)
	if err != nil {
		logger.Log.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	// 7. Setup UseCases
	retryPolicy := retry.NewPolicy(cfg.RetryMaxAttempts, cfg.RetryBaseDelay, cfg.RetryMaxDelay)
	interviewUC := usecase.NewInterviewUsecase(
		interviewRepo, profileRepo, turnRepo,
		llmClient, queueClient, locker,
		cfg.MaxQuestions, cfg.CapabilityTimeout, retryPolicy,
	)
	documentUC := usecase.NewDocumentUsecase(profileRepo, extractor, cfg.CapabilityTimeout)
	transcriptionUC := usecase.NewTranscriptionUsecase(turnRepo, llmClient, interviewUC, cfg.CapabilityTimeout)
	scoringUC := usecase.NewScoringUsecase(
		interviewRepo, profileRepo, turnRepo,
		llmClient, llmClient, cfg.CapabilityTimeout,
	)

	// 8. Setup Dispatcher
	validate := validator.New()
	dispatcher := deliveryqueue.NewDispatcher(validate)
	handlers := deliveryqueue.NewTaskHandlers(interviewUC, documentUC, transcriptionUC, scoringUC, validate)
	handlers.RegisterAll(dispatcher)

	// 9. Run the receive loop until shutdown
	if err := queueClient.Consume(ctx, dispatcher.Dispatch); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Error("Receive loop terminated", "error", err)
		os.Exit(1)
	}

	logger.Log.Info("Worker exiting")
}
