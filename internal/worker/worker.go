// Package worker runs the report side of the ledger: it consumes change
// messages and keeps the spreadsheet reports current.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davidsheshee-hash/shop-ledger/internal/amqp"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
)

// Consumer delivers ledger change messages until ctx is cancelled.
type Consumer interface {
	ConsumeLedgerChanged(ctx context.Context, handler amqp.Handler) error
}

// Processor refreshes reports, both on demand and on its own schedule.
type Processor interface {
	HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Worker ties a consumer to a report processor.
type Worker struct {
	consumer    Consumer
	processor   Processor
	logger      *log.Logger
	stopTimeout time.Duration
}

// New creates a worker. A nil consumer runs only the periodic refresh.
func New(consumer Consumer, processor Processor, logger *log.Logger) *Worker {
	return &Worker{
		consumer:    consumer,
		processor:   processor,
		logger:      log.OrDefault(logger, log.ComponentWorker),
		stopTimeout: 10 * time.Second,
	}
}

// Run blocks until ctx is cancelled or the consumer fails for good.
// Cancellation is a clean exit and returns nil.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.processor.Start(ctx); err != nil {
		return fmt.Errorf("start report processor: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), w.stopTimeout)
		defer cancel()
		if err := w.processor.Stop(stopCtx); err != nil {
			w.logger.Error("Failed to stop report processor", log.FieldError, err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	if w.consumer != nil {
		g.Go(func() error {
			w.logger.InfoContext(gctx, "Consuming ledger change messages")
			return w.consumer.ConsumeLedgerChanged(gctx, w.processor.HandleLedgerChanged)
		})
	} else {
		w.logger.WarnContext(ctx, "No message broker configured, relying on periodic refresh only")
	}
	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		w.logger.Info("Worker stopped")
		return nil
	}
	return err
}
