package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pulseboard/feedback-insights/internal/analysis"
	"github.com/pulseboard/feedback-insights/internal/api"
	"github.com/pulseboard/feedback-insights/internal/archive"
	"github.com/pulseboard/feedback-insights/internal/config"
	"github.com/pulseboard/feedback-insights/internal/llm"
	"github.com/pulseboard/feedback-insights/internal/reports"
	"github.com/pulseboard/feedback-insights/internal/scheduler"
	"github.com/pulseboard/feedback-insights/internal/store"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Feedback Insights")

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	llmClient := llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	classifier := analysis.NewClassifier(llmClient)
	summarizer := analysis.NewSummarizer(llmClient)

	digestService := reports.NewService(cfg)

	// Snapshot archive is optional; skip it when no account is configured
	var exporter archive.Exporter
	if cfg.StorageAccount != "" {
		exporter, err = archive.NewAzureArchive(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize snapshot archive: %v", err)
		}
	}

	if cfg.EnableScheduler {
		schedulerService := scheduler.NewService(cfg, st, classifier, digestService, exporter)
		if err := schedulerService.Start(); err != nil {
			logrus.Fatalf("Failed to start scheduler: %v", err)
		}
		defer schedulerService.Stop()
	}

	apiServer := api.NewServer(st, classifier, summarizer)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
