package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"farmlink_backend/internal/email"
	exchangerepo "farmlink_backend/internal/exchange/repository"
	exchangeservice "farmlink_backend/internal/exchange/service"
	"farmlink_backend/internal/scheduler"
	"farmlink_backend/platform/config"
	"farmlink_backend/platform/db"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
	} else {
		log.Warn("email sending disabled; reminders will be logged only")
	}

	// Nightly ledger audit recomputes every pairwise balance from its
	// transaction history and flags drift.
	exchangeSvc := exchangeservice.New(exchangerepo.New(pool), eventBus, log)
	auditInterval := getDurationEnv("LEDGER_AUDIT_INTERVAL", 24*time.Hour)
	ledgerAudit := scheduler.NewLedgerAudit(exchangeSvc, log, auditInterval)
	go ledgerAudit.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, pool, sender, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
