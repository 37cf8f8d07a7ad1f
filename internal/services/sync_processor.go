package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"teambudget/internal/log"
)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to look for an unsynced snapshot (default: 10s)
	PollInterval time.Duration

	// CleanupInterval is how often old snapshots are pruned (default: 1h)
	CleanupInterval time.Duration

	// Retention is how many snapshots pruning keeps; zero disables pruning
	Retention int
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval:    10 * time.Second,
		CleanupInterval: 1 * time.Hour,
		Retention:       200,
	}
}

// SyncProcessor is the polling fallback of the sync worker. It catches up
// on snapshots whose message was lost or never published.
type SyncProcessor struct {
	syncer *Syncer
	source SnapshotSource
	config SyncProcessorConfig
	logger *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(syncer *Syncer, source SnapshotSource, config SyncProcessorConfig, logger *log.Logger) *SyncProcessor {
	if logger == nil {
		logger = log.Nop()
	}
	return &SyncProcessor{
		syncer: syncer,
		source: source,
		config: config,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"retention", p.config.Retention)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.poll(ctx)
		case <-cleanupTicker.C:
			p.cleanup(ctx)
		}
	}
}

func (p *SyncProcessor) poll(ctx context.Context) {
	synced, err := p.syncer.SyncLatest(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "Catch-up sync failed", log.FieldError, err)
		return
	}
	if synced {
		p.logger.DebugContext(ctx, "Caught up with latest snapshot")
	}
}

func (p *SyncProcessor) cleanup(ctx context.Context) {
	if p.config.Retention <= 0 {
		return
	}
	if _, err := p.source.Prune(ctx, p.config.Retention); err != nil {
		p.logger.ErrorContext(ctx, "Failed to prune snapshots", log.FieldError, err)
	}
}
