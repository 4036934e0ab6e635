package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/config"
	"bilancio/internal/export"
	exportgoogle "bilancio/internal/export/google"
	exportmem "bilancio/internal/export/memory"
	applog "bilancio/internal/log"
	"bilancio/internal/queue"
	"bilancio/internal/report"
	"bilancio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: "bilancio-worker",
	})
	applog.SetDefault(logger)

	logger.Info("Starting bilancio-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var writer export.SummaryWriter
	switch cfg.ExportBackend {
	case "sheets":
		client, err := exportgoogle.New(ctx, exportgoogle.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			OAuthClientFile: cfg.GoogleOAuthClientFile,
			OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
			OAuthClientJSON: cfg.GoogleOAuthClientJSON,
			OAuthTokenJSON:  cfg.GoogleOAuthTokenJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets writer", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets writer initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	default:
		writer = exportmem.New()
		logger.Info("In-memory writer initialized; exported rows are not persisted")
	}

	amqpClient, err := queue.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exporter := export.NewExporter(report.New(repo), writer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeSummaryExports(gctx, func(msg *queue.SummaryExportMessage) error {
			return exporter.Export(gctx, msg.OwnerID, msg.Month)
		})
	})

	logger.Info("Worker running", "queue", cfg.AMQPQueue)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
