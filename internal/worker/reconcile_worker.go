package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-hotel-reservations/internal/availability"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"sync"
	"time"
)

type Reconciler interface {
	ReconcileRoomStatuses(ctx context.Context) (availability.ReconcileResult, error)
}

// ReconcileWorker runs the occupancy sweep on a fixed interval so rooms flip
// to OCCUPIED or AVAILABLE as the hotel's day changes.
type ReconcileWorker struct {
	r        Reconciler
	interval time.Duration
	log      *zap.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	sweeps   int64
	lastRun  time.Time
	lastSeen availability.ReconcileResult
}

func NewReconcileWorker(r Reconciler, interval time.Duration, log *zap.Logger) *ReconcileWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconcileWorker{r: r, interval: interval, log: log, stopCh: make(chan struct{})}
}

func (w *ReconcileWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("reconcile worker already running")
	}
	w.running = true

	w.log.Info("starting reconcile worker", zap.Duration("interval", w.interval))
	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

func (w *ReconcileWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("reconcile worker stopped")
}

func (w *ReconcileWorker) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReconcileWorker) sweep(ctx context.Context) {
	res, err := w.r.ReconcileRoomStatuses(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.log.Error("reconcile sweep failed", zap.Error(err))
		}
		return
	}
	w.mu.Lock()
	w.sweeps++
	w.lastRun = time.Now()
	w.lastSeen = res
	w.mu.Unlock()
}

type Stats struct {
	Sweeps  int64
	LastRun time.Time
	Last    availability.ReconcileResult
}

func (w *ReconcileWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{Sweeps: w.sweeps, LastRun: w.lastRun, Last: w.lastSeen}
}

// StatusChangedHandler reconciles whenever a reservation changes status. A
// failed sweep is returned so the offset stays uncommitted.
func StatusChangedHandler(r Reconciler, log *zap.Logger) func(context.Context, kafkago.Message) error {
	return func(ctx context.Context, m kafkago.Message) error {
		var env hotel.Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			log.Warn("dropping malformed envelope", zap.Int64("offset", m.Offset), zap.Error(err))
			return nil
		}
		if env.EventType != hotel.EventReservationStatusChanged {
			return nil
		}
		res, err := r.ReconcileRoomStatuses(ctx)
		if err != nil {
			return fmt.Errorf("reconcile after %s: %w", env.CorrelationID, err)
		}
		log.Debug("reconciled after status change",
			zap.String("reservation_id", env.CorrelationID),
			zap.Int("updated", res.Updated))
		return nil
	}
}
