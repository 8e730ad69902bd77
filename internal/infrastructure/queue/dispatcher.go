package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/medicare/hospital-system/internal/core/ports"
	"github.com/medicare/hospital-system/internal/observability/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 5 * time.Second
)

// Dispatcher delivers appointment notifications off the request path. Work is
// sharded by patient id so one patient's notifications arrive in order.
type Dispatcher struct {
	workers  []chan ports.AppointmentNotification
	notifier ports.Notifier
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.AppointmentNotification, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AppointmentNotification, channelBuffer)
	}
	return d
}

// Start launches the workers. They exit when ctx is cancelled or after Stop
// has drained their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a notification to the worker owning its patient. It never
// blocks: when the worker's buffer is full, or the dispatcher is stopped,
// the notification is dropped and counted.
func (d *Dispatcher) Enqueue(n ports.AppointmentNotification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(n, "dispatcher stopped")
		return
	}

	idx := d.shardIndex(n.PatientID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(n, "worker queue full")
	}
}

// Stop rejects new notifications and waits for queued ones to be delivered,
// giving up when ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a patient id deterministically to a worker index.
func (d *Dispatcher) shardIndex(patientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(patientID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AppointmentNotification) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n ports.AppointmentNotification) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := d.notifier.NotifyAppointment(sendCtx, n); err != nil {
		metrics.NotificationsTotal.WithLabelValues(n.Kind, "failed").Inc()
		d.log.Error().Err(err).
			Str("appointment_id", n.AppointmentID).
			Str("kind", n.Kind).
			Int("worker_id", id).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(n.Kind, "sent").Inc()
}

func (d *Dispatcher) drop(n ports.AppointmentNotification, reason string) {
	metrics.NotificationsTotal.WithLabelValues(n.Kind, "dropped").Inc()
	d.log.Warn().
		Str("appointment_id", n.AppointmentID).
		Str("kind", n.Kind).
		Str("reason", reason).
		Msg("notification dropped")
}
