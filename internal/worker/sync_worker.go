package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"teambudget/internal/amqp"
	"teambudget/internal/log"
	"teambudget/internal/services"
)

// Consumer delivers snapshot messages. *amqp.Client implements it.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// SyncWorker keeps the spreadsheet in step with the stored snapshots. It
// reacts to AMQP messages and polls as a fallback for lost ones.
type SyncWorker struct {
	syncer    *services.Syncer
	consumer  Consumer
	processor *services.SyncProcessor
	logger    *log.Logger
}

// NewSyncWorker creates a worker. consumer may be nil, in which case the
// worker only polls.
func NewSyncWorker(syncer *services.Syncer, consumer Consumer, processor *services.SyncProcessor, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Nop()
	}
	return &SyncWorker{
		syncer:    syncer,
		consumer:  consumer,
		processor: processor,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage processes a single snapshot message from AMQP. Stale
// snapshots are acknowledged without work.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	w.logger.InfoContext(ctx, "Processing snapshot message",
		"snapshot_id", msg.SnapshotID,
		log.FieldVersion, msg.StoreVersion,
		"changes", msg.Changes)

	err := w.syncer.Sync(ctx, msg.SnapshotID)
	if errors.Is(err, services.ErrStaleSnapshot) {
		w.logger.DebugContext(ctx, "Skipping stale snapshot", "snapshot_id", msg.SnapshotID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync snapshot %d: %w", msg.SnapshotID, err)
	}
	return nil
}

// StartupSyncCheck publishes the newest snapshot if the worker was down when
// it was saved.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.syncer.SyncLatest(ctx)
	if err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	if synced {
		w.logger.InfoContext(ctx, "Startup sync published pending snapshot")
	}
	return nil
}

// Run blocks until ctx is cancelled or the consumer fails.
func (w *SyncWorker) Run(ctx context.Context) error {
	if err := w.StartupSyncCheck(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Failed startup sync check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.Consume(gctx, w.HandleMessage)
		})
	} else {
		w.logger.InfoContext(ctx, "No AMQP consumer configured, polling only")
	}

	if w.processor != nil {
		g.Go(func() error {
			if err := w.processor.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return w.processor.Stop(stopCtx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
