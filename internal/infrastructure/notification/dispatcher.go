package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/pkg/metrics"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is shut down")
)

const sendTimeout = 10 * time.Second

// Dispatcher queues confirmations and hands them to a Sender from a single
// worker goroutine, so a slow mail server never holds up a booking request.
type Dispatcher struct {
	sender  Sender
	log     *logrus.Logger
	metrics *metrics.Collector
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan Confirmation
	done   chan struct{}
}

func NewDispatcher(sender Sender, log *logrus.Logger, collector *metrics.Collector, queueSize int) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		log:     log,
		metrics: collector,
		now:     time.Now,
		queue:   make(chan Confirmation, queueSize),
		done:    make(chan struct{}),
	}
	go d.worker()
	return d
}

// SendConfirmation enqueues without blocking. A full queue drops the entry.
func (d *Dispatcher) SendConfirmation(_ context.Context, caller entity.Caller, appointment entity.Appointment) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- NewConfirmation(caller, appointment, d.now()):
		return nil
	default:
		d.count(metrics.ResultDropped)
		d.log.Warnf("Notification queue full, dropping confirmation for appointment %s", appointment.ID)
		return ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	var err error
	select {
	case <-d.done:
	case <-ctx.Done():
		d.log.Warn("Notification dispatcher shutdown timed out; some confirmations may be lost")
		err = ctx.Err()
	}

	if closeErr := d.sender.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for c := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.sender.Send(ctx, c); err != nil {
			d.count(metrics.ResultFailed)
			d.log.Warnf("Failed to deliver confirmation for appointment %s: %+v", c.AppointmentID, err)
		} else {
			d.count(metrics.ResultDelivered)
		}
		cancel()
	}
}

func (d *Dispatcher) count(result string) {
	if d.metrics != nil {
		d.metrics.NotificationsTotal.WithLabelValues(result).Inc()
	}
}
