package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type memStorage struct {
	mu      sync.Mutex
	batches [][]Event
}

func (m *memStorage) WriteBatch(ctx context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := make([]Event, len(events))
	copy(batch, events)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *memStorage) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func testEvent(id string) Event {
	return Event{
		ID:     id,
		UserID: "u1",
		Amount: decimal.RequireFromString("1.00"),
		Status: StatusCompleted,
	}
}

func TestTrailDrainsOnStop(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop(), 100, time.Hour) // flush только на Stop

	trail.Start()
	for i := 0; i < 7; i++ {
		trail.Record(testEvent(string(rune('a' + i))))
	}
	trail.Stop()

	if got := storage.total(); got != 7 {
		t.Errorf("persisted %d events, want 7: events lost on shutdown", got)
	}
}

func TestTrailFlushesOnInterval(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop(), 100, 20*time.Millisecond)

	trail.Start()
	trail.Record(testEvent("x"))

	deadline := time.Now().Add(2 * time.Second)
	for storage.total() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if storage.total() != 1 {
		t.Error("event not flushed by ticker")
	}

	trail.Stop()
}

func TestTrailRecordAfterStopDoesNotPanic(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop(), 100, time.Hour)

	trail.Start()
	trail.Stop()

	// Событие после Stop отбрасывается, паники быть не должно
	trail.Record(testEvent("late"))

	if got := storage.total(); got != 0 {
		t.Errorf("persisted %d events, want 0", got)
	}
}

func TestTrailFillsMissingTimestamp(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop(), 100, time.Hour)

	trail.Start()
	trail.Record(testEvent("ts"))
	trail.Stop()

	if storage.total() != 1 {
		t.Fatal("event not persisted")
	}
	if storage.batches[0][0].Timestamp.IsZero() {
		t.Error("timestamp not filled on record")
	}
}
