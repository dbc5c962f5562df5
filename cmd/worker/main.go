package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfield/notebox/internal/config"
	"github.com/mfield/notebox/internal/logger"
	"github.com/mfield/notebox/internal/queue"
	"github.com/mfield/notebox/internal/repository"
	"github.com/mfield/notebox/internal/service"
	"github.com/mfield/notebox/internal/storage"
	"github.com/mfield/notebox/internal/worker"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "notebox-worker",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	jobRepo := repository.NewArchiveJobRepository(db)

	// Initialize object storage
	objectStore, err := storage.NewStore(cfg.Storage.Driver, &storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Region:    cfg.Storage.Region,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	// Initialize queue
	archiveQueue, err := queue.NewQueue(cfg.Queue.Driver, &queue.SQSConfig{
		Endpoint:    cfg.Queue.Endpoint,
		Name:        cfg.Queue.Name,
		Region:      cfg.Queue.Region,
		AccessKey:   cfg.Queue.AccessKey,
		SecretKey:   cfg.Queue.SecretKey,
		WaitSeconds: cfg.Queue.WaitSeconds,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize queue")
	}

	builder := service.NewArchiveBuilder(objectStore)
	w := worker.New(jobRepo, objectStore, archiveQueue, builder, &worker.Config{
		BatchSize: cfg.Worker.BatchSize,
	})

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.WithError(err).Fatal("Worker stopped")
	}
	appLogger.Info("Worker exited")
}
