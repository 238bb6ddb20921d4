package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famledger/internal/amqp"
	"famledger/internal/storage"
)

type memWriter struct {
	mu      sync.Mutex
	entries []storage.AuditEntry
	err     error
}

func (m *memWriter) AppendAudit(_ context.Context, e storage.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memWriter) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// chanSource hands queued events to the handler until ctx ends.
type chanSource struct {
	events chan *amqp.LedgerEvent
	err    error
}

func (s *chanSource) Consume(ctx context.Context, handler amqp.Handler) error {
	if s.err != nil {
		return s.err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-s.events:
			_ = handler(ctx, e)
		}
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleEvent(t *testing.T) {
	w := &memWriter{}
	aw := NewAuditWorker(w, nil, quietLogger())

	e := amqp.NewLedgerEvent(amqp.EventDeleted, []string{"1", "2"}, "s-1", []string{"2024-02", "2024-01"})
	require.NoError(t, aw.HandleEvent(context.Background(), e))

	require.Len(t, w.entries, 1)
	got := w.entries[0]
	assert.Equal(t, e.ID, got.EventID)
	assert.Equal(t, "ledger.deleted", got.EventType)
	assert.Equal(t, []string{"1", "2"}, got.RecordIDs)
	assert.Equal(t, "s-1", got.SeriesID)
	assert.Equal(t, []string{"2024-01", "2024-02"}, got.Months)
	assert.Equal(t, int64(1), aw.Handled())
}

func TestHandleEvent_WriterError(t *testing.T) {
	w := &memWriter{err: errors.New("database is locked")}
	aw := NewAuditWorker(w, nil, quietLogger())

	err := aw.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventCreated, nil, "", nil))
	assert.ErrorContains(t, err, "database is locked")
	assert.Zero(t, aw.Handled())
}

func TestAuditWorker_Lifecycle(t *testing.T) {
	w := &memWriter{}
	src := &chanSource{events: make(chan *amqp.LedgerEvent)}
	aw := NewAuditWorker(w, src, quietLogger())
	ctx := context.Background()

	require.NoError(t, aw.Start(ctx))
	assert.True(t, aw.IsRunning())
	assert.Error(t, aw.Start(ctx))

	src.events <- amqp.NewLedgerEvent(amqp.EventCreated, []string{"1"}, "", []string{"2024-05"})
	src.events <- amqp.NewLedgerEvent(amqp.EventUpdated, []string{"1"}, "", []string{"2024-05"})
	assert.Eventually(t, func() bool { return w.len() == 2 }, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, aw.Stop(stopCtx))
	assert.False(t, aw.IsRunning())
	assert.NoError(t, aw.Wait())

	// Stopping twice is a no-op.
	assert.NoError(t, aw.Stop(stopCtx))
}

func TestAuditWorker_ConsumerFailure(t *testing.T) {
	src := &chanSource{err: errors.New("connection refused")}
	aw := NewAuditWorker(&memWriter{}, src, quietLogger())

	require.NoError(t, aw.Start(context.Background()))
	assert.ErrorContains(t, aw.Wait(), "connection refused")
	assert.False(t, aw.IsRunning())
}

func TestAuditWorker_RestartAfterConsumerEnds(t *testing.T) {
	src := &chanSource{err: errors.New("channel closed")}
	aw := NewAuditWorker(&memWriter{}, src, quietLogger())
	ctx := context.Background()

	require.NoError(t, aw.Start(ctx))
	require.Error(t, aw.Wait())
	assert.False(t, aw.IsRunning())

	// The broker is back: a second Start must not be refused.
	src.err = nil
	src.events = make(chan *amqp.LedgerEvent)
	require.NoError(t, aw.Start(ctx))
	assert.True(t, aw.IsRunning())

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, aw.Stop(stopCtx))
	assert.False(t, aw.IsRunning())
	assert.NoError(t, aw.Wait())
}

func TestAuditWorker_StopBeforeStart(t *testing.T) {
	aw := NewAuditWorker(&memWriter{}, &chanSource{}, quietLogger())
	assert.NoError(t, aw.Stop(context.Background()))
	assert.NoError(t, aw.Wait())
	assert.False(t, aw.IsRunning())
}
