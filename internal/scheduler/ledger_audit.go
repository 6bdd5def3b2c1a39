package scheduler

import (
	"context"
	"time"

	exchangeservice "farmlink_backend/internal/exchange/service"
	"farmlink_backend/platform/logger"
)

const defaultLedgerAuditInterval = 24 * time.Hour

// LedgerAudit periodically replays every exchange's transaction log and
// compares the sum against the stored balance, logging any drift.
type LedgerAudit struct {
	exchange *exchangeservice.Service
	log      *logger.Logger
	interval time.Duration
}

func NewLedgerAudit(exchange *exchangeservice.Service, log *logger.Logger, interval time.Duration) *LedgerAudit {
	if interval <= 0 {
		interval = defaultLedgerAuditInterval
	}

	return &LedgerAudit{
		exchange: exchange,
		log:      log,
		interval: interval,
	}
}

func (a *LedgerAudit) Run(ctx context.Context) {
	if a == nil || a.exchange == nil {
		return
	}

	a.audit(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.audit(ctx)
		}
	}
}

func (a *LedgerAudit) audit(ctx context.Context) {
	drifted, err := a.exchange.AuditAll(ctx)
	if err != nil {
		a.log.Warn("ledger audit failed", "error", err)
		return
	}

	if drifted > 0 {
		a.log.Error("ledger audit found drifted exchanges", "drifted", drifted)
	} else {
		a.log.Info("ledger audit clean")
	}
}
