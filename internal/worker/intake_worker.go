package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/service"
)

// IntakeProcessor runs one intake pass.
type IntakeProcessor interface {
	Process(ctx context.Context) (service.IntakeResult, error)
}

// IntakeWorker polls the message source on an interval.
type IntakeWorker struct {
	processor IntakeProcessor
	interval  time.Duration
	logger    *zap.Logger
}

func NewIntakeWorker(processor IntakeProcessor, interval time.Duration, logger *zap.Logger) *IntakeWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeWorker{processor: processor, interval: interval, logger: logger}
}

// Run processes once immediately, then on every tick until ctx is cancelled.
func (w *IntakeWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.Info("intake poller started", zap.Duration("interval", w.interval))

	for {
		if _, err := w.processor.Process(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("intake pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			w.logger.Info("intake poller stopped")
			return
		case <-ticker.C:
		}
	}
}
