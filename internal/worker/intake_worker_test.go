package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/servicedesk/internal/service"
)

type countingProcessor struct {
	calls atomic.Int32
}

func (c *countingProcessor) Process(context.Context) (service.IntakeResult, error) {
	c.calls.Add(1)
	return service.IntakeResult{}, nil
}

func TestIntakeWorkerPollsUntilCancelled(t *testing.T) {
	processor := &countingProcessor{}
	w := NewIntakeWorker(processor, 2*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return processor.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("intake worker did not stop after cancel")
	}
}
