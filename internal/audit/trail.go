package audit

/*
Файл trail.go реализует журнал переводов — асинхронный движок сбора
и персистентности событий решений и исполнений.

Ключевые особенности архитектуры:
- Non-blocking Logging: неблокирующий канал выносит запись из Hot Path
  движка, задержки БД не влияют на Response Time решения.
- Batching: накопление событий в памяти и пакетная вставка (Bulk Insert)
  в PostgreSQL по таймеру или при достижении лимита пачки.
- Drain Pattern & Graceful Shutdown: при остановке канал закрывается,
  воркер вычитает остатки и делает финальный flush — события решений
  и сверки не теряются при перезагрузке.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StorageInterface определяет, куда физически будут сохраняться события
type StorageInterface interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []Event) error
}

type Recorder interface {
	Record(event Event)
}

type Trail struct {
	ch     chan Event
	repo   StorageInterface
	logger *zap.Logger
	wg     sync.WaitGroup

	flushInterval time.Duration
	batchSize     int

	// Атомарный флаг (0 - открыт, 1 - закрыт): Record после Stop не паникует
	isClosed int32
}

func NewTrail(repo StorageInterface, logger *zap.Logger, bufferSize int, flushInterval time.Duration) *Trail {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	if flushInterval <= 0 {
		flushInterval = 500 * time.Millisecond
	}
	return &Trail{
		ch:            make(chan Event, bufferSize),
		repo:          repo,
		logger:        logger.With(zap.String("mod", "trail")),
		flushInterval: flushInterval,
		batchSize:     100,
	}
}

func (t *Trail) Start() {
	t.wg.Add(1)
	go t.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (t *Trail) Stop() {
	atomic.StoreInt32(&t.isClosed, 1)

	// Крошечная пауза, чтобы текущие Record успели проскочить
	time.Sleep(10 * time.Millisecond)

	t.logger.Info("stopping trail: closing channel and flushing buffer...")
	close(t.ch)
	t.wg.Wait()
	t.logger.Info("trail stopped gracefully")
}

// Len — текущая заполненность буфера (для метрики backpressure).
func (t *Trail) Len() int {
	return len(t.ch)
}

func (t *Trail) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if atomic.LoadInt32(&t.isClosed) == 1 {
		t.logger.Warn("trail event dropped: trail is stopping", zap.String("id", event.ID))
		return
	}

	// Load Shedding: при переполнении буфера событие уходит в обычный лог,
	// чтобы данные сверки не пропали даже под экстремальной нагрузкой
	select {
	case t.ch <- event:
	default:
		t.logger.Error("trail_buffer_overflow",
			zap.String("user_id", event.UserID),
			zap.String("trace_id", event.TraceID),
			zap.String("status", event.Status),
			zap.String("amount", event.Amount.String()),
		)
	}
}

func (t *Trail) worker() {
	defer t.wg.Done()

	batch := make([]Event, 0, t.batchSize)
	ticker := time.NewTicker(t.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			// Background: основной контекст к этому моменту может быть закрыт
			if err := t.repo.WriteBatch(context.Background(), batch); err != nil {
				t.logger.Error("trail flush failed", zap.Error(err))
			}
			batch = batch[:0]
		}
	}

	for {
		select {
		case event, ok := <-t.ch:
			if !ok {
				// Канал закрыт в Stop(): вычитали остатки, финальный сброс, выход
				flush()
				t.logger.Info("trail worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= t.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
