package worker

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	"github.com/jwalitptl/ward-api/pkg/logger"
	"github.com/jwalitptl/ward-api/pkg/metrics"
)

// promauto registers globally, so the package shares one instance.
var workerMetrics = metrics.NewMetrics("ward_worker_test")

func quietLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Output: io.Discard})
}

type fakeTx struct {
	repo       *fakeOutboxRepo
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit() error {
	t.committed = true
	t.repo.release(t)
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
		t.repo.release(t)
	}
	return nil
}

// fakeOutboxRepo emulates the claim semantics of the postgres
// repository: rows claimed by one open transaction are invisible to
// fetches under another, and the claim is held until commit or
// rollback.
type fakeOutboxRepo struct {
	mu        sync.Mutex
	pending   []*model.OutboxEvent
	claimed   map[uuid.UUID]*fakeTx
	processed map[uuid.UUID]repository.Tx
	failed    map[uuid.UUID]repository.Tx
}

func newFakeOutboxRepo(events ...*model.OutboxEvent) *fakeOutboxRepo {
	return &fakeOutboxRepo{
		pending:   events,
		claimed:   make(map[uuid.UUID]*fakeTx),
		processed: make(map[uuid.UUID]repository.Tx),
		failed:    make(map[uuid.UUID]repository.Tx),
	}
}

func (r *fakeOutboxRepo) release(tx *fakeTx) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, holder := range r.claimed {
		if holder == tx {
			delete(r.claimed, id)
		}
	}
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, event)
	return nil
}

func (r *fakeOutboxRepo) BeginTx(_ context.Context) (repository.Tx, error) {
	return &fakeTx{repo: r}, nil
}

func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, tx repository.Tx, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claimant := tx.(*fakeTx)
	var out []*model.OutboxEvent
	for _, event := range r.pending {
		if len(out) >= limit {
			break
		}
		if holder, held := r.claimed[event.ID]; held && holder != claimant {
			continue
		}
		if _, done := r.processed[event.ID]; done {
			continue
		}
		r.claimed[event.ID] = claimant
		out = append(out, event)
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkProcessed(_ context.Context, tx repository.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed[id] = tx
	return nil
}

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, tx repository.Tx, id uuid.UUID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[id] = tx
	return nil
}

type fakeBroker struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (b *fakeBroker) Publish(_ context.Context, _ string, _ interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, "published")
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func pendingEvent(eventType string) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   []byte(`{}`),
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
	}
}

func newTestProcessor(repo repository.OutboxRepository, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:    10,
		PollInterval: time.Second,
		MaxRetries:   1,
		RetryDelay:   time.Millisecond,
		Channel:      "ward-events",
	}, quietLogger(), workerMetrics)
}

func TestProcessBatchMarksUnderClaimTransaction(t *testing.T) {
	e1 := pendingEvent(model.EventPatientRegistered)
	e2 := pendingEvent(model.EventDeliveryCompleted)
	repo := newFakeOutboxRepo(e1, e2)
	broker := &fakeBroker{}

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processBatch(context.Background()))

	assert.Len(t, broker.published, 2)

	// Both events were marked under the same transaction that claimed
	// them, and that transaction committed.
	tx1, ok := repo.processed[e1.ID].(*fakeTx)
	require.True(t, ok)
	tx2, ok := repo.processed[e2.ID].(*fakeTx)
	require.True(t, ok)
	assert.Same(t, tx1, tx2)
	assert.True(t, tx1.committed)
}

func TestProcessBatchPublishFailureMarksFailed(t *testing.T) {
	event := pendingEvent(model.EventPatientAccepted)
	repo := newFakeOutboxRepo(event)
	broker := &fakeBroker{err: assert.AnError}

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processBatch(context.Background()))

	assert.Empty(t, broker.published)
	tx, ok := repo.failed[event.ID].(*fakeTx)
	require.True(t, ok)
	assert.True(t, tx.committed)
}

func TestProcessBatchEmptyDoesNotCommit(t *testing.T) {
	repo := newFakeOutboxRepo()
	broker := &fakeBroker{}

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processBatch(context.Background()))
	assert.Empty(t, broker.published)
}

func TestProcessBatchSkipsRowsClaimedElsewhere(t *testing.T) {
	event := pendingEvent(model.EventPatientRegistered)
	repo := newFakeOutboxRepo(event)
	broker := &fakeBroker{}

	// Another processor instance holds a claim on the only pending row.
	held, err := repo.BeginTx(context.Background())
	require.NoError(t, err)
	claimed, err := repo.GetPendingEvents(context.Background(), held, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processBatch(context.Background()))

	// Nothing published: the row stays with its claimant until that
	// transaction finishes.
	assert.Empty(t, broker.published)
	assert.Empty(t, repo.processed)

	require.NoError(t, held.Rollback())
	require.NoError(t, p.processBatch(context.Background()))
	assert.Len(t, broker.published, 1)
	assert.Contains(t, repo.processed, event.ID)
}
