// Package worker runs the background consumers of ledger change events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"famledger/internal/amqp"
	"famledger/internal/storage"
)

// AuditWriter persists audit entries. *storage.SQLiteRepository implements it.
type AuditWriter interface {
	AppendAudit(ctx context.Context, e storage.AuditEntry) error
}

// EventSource delivers ledger events to a handler until ctx ends. *amqp.Client
// implements it.
type EventSource interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// AuditWorker appends every ledger event it receives to the audit log.
type AuditWorker struct {
	writer    AuditWriter
	source    EventSource
	logger    *slog.Logger
	heartbeat time.Duration

	handled atomic.Int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
	err     error
}

func NewAuditWorker(writer AuditWriter, source EventSource, logger *slog.Logger) *AuditWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditWorker{
		writer:    writer,
		source:    source,
		logger:    logger,
		heartbeat: time.Minute,
	}
}

// HandleEvent stores one event. It is an amqp.Handler: a returned error requeues the
// delivery.
func (w *AuditWorker) HandleEvent(ctx context.Context, e *amqp.LedgerEvent) error {
	entry := storage.AuditEntry{
		EventID:    e.ID,
		EventType:  string(e.Type),
		RecordIDs:  e.RecordIDs,
		SeriesID:   e.SeriesID,
		Months:     e.Months,
		OccurredAt: e.OccurredAt,
	}
	if err := w.writer.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("audit event %s: %w", e.ID, err)
	}
	w.handled.Add(1)

	w.logger.InfoContext(ctx, "Ledger event audited",
		"event_id", e.ID,
		"type", e.Type,
		"records", len(e.RecordIDs),
		"months", e.Months)
	return nil
}

// Handled returns the number of events stored since the worker was created.
func (w *AuditWorker) Handled() int64 {
	return w.handled.Load()
}

// Start begins consuming. Returns an error if already running.
func (w *AuditWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("audit worker is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.err = nil

	go w.run(runCtx, w.doneCh)

	w.logger.InfoContext(ctx, "Audit worker started", "heartbeat", w.heartbeat)
	return nil
}

func (w *AuditWorker) run(ctx context.Context, done chan struct{}) {
	// A consumer that returns on its own leaves the worker stopped and restartable.
	defer func() {
		w.mu.Lock()
		if w.doneCh == done {
			w.running = false
			w.cancel()
		}
		w.mu.Unlock()
		close(done)
	}()

	consumeDone := make(chan error, 1)
	go func() { consumeDone <- w.source.Consume(ctx, w.HandleEvent) }()

	ticker := time.NewTicker(w.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case err := <-consumeDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "Audit consumer stopped", "error", err)
				w.mu.Lock()
				w.err = err
				w.mu.Unlock()
			}
			return
		case <-ticker.C:
			w.logger.InfoContext(ctx, "Audit worker alive", "handled", w.Handled())
		}
	}
}

// Stop cancels the consumer and waits for it to return or for ctx to end.
func (w *AuditWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel, done := w.cancel, w.doneCh
	w.mu.Unlock()

	cancel()

	select {
	case <-done:
		w.logger.InfoContext(ctx, "Audit worker stopped gracefully", "handled", w.Handled())
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Audit worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	if w.doneCh == done {
		w.running = false
	}
	w.mu.Unlock()
	return nil
}

// Wait blocks until the consume loop ends and returns the error that ended it, if any.
func (w *AuditWorker) Wait() error {
	w.mu.Lock()
	done := w.doneCh
	w.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// IsRunning returns whether the worker is currently running.
func (w *AuditWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
