package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bank-api/internal/config"
	"github.com/Dan9191/bank-api/internal/handler"
	"github.com/Dan9191/bank-api/internal/middleware"
	"github.com/Dan9191/bank-api/internal/repository"
	"github.com/Dan9191/bank-api/internal/seed"
	"github.com/Dan9191/bank-api/internal/service"
	"github.com/Dan9191/bank-api/internal/statement"
	"github.com/Dan9191/bank-api/internal/utils/email"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	// Initialize database
	repo, err := repository.Open(ctx, cfg.DBDriver, cfg.DBConn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer repo.Close()
	logger.Infof("Connected to %s database", cfg.DBDriver)

	if cfg.SeedData {
		if _, err := seed.Load(ctx, repo, logger); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	// Initialize layers
	svc := service.NewService(repo, logger, cfg)

	var scheduler *statement.Scheduler
	if cfg.MailEnabled() {
		sender := email.NewSender(cfg, logger)
		svc.SetNotifier(sender)

		if cfg.StatementSchedule != "" {
			scheduler, err = statement.NewScheduler(cfg.StatementSchedule, svc, sender, logger)
			if err != nil {
				return err
			}
			scheduler.Start()
		}
	}

	h := handler.NewHandler(svc, logger)
	router := h.Router(handler.Options{
		AuthEnabled: cfg.AuthEnabled,
		JWTSecret:   cfg.JWTSecret,
		Metrics:     middleware.NewMetrics(),
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.Logging(logger)(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	return server.Shutdown(shutdownCtx)
}
