package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/society-waste-service/internal/events"
)

// Notifier delivers the notifications for one event.
type Notifier interface {
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker drains issue events into a Notifier off the request path.
// Events are dropped, with a warning, when the queue is full.
type NotificationWorker struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan events.Event

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationWorker creates a worker with a queue of the given size.
func NewNotificationWorker(notifier Notifier, logger *zap.Logger, size int) *NotificationWorker {
	if size <= 0 {
		size = 64
	}
	return &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan events.Event, size),
	}
}

// Subscribe registers the worker for every issue event on the dispatcher.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventIssueCreated, w.enqueue)
	dispatcher.Subscribe(events.EventIssueStatusChanged, w.enqueue)
}

// Start launches the delivery loop. It runs until Stop is called.
func (w *NotificationWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			w.deliver(event)
		}
	}()
}

// Stop closes the queue and waits for queued events to be delivered.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.logger.Warn("notification worker stopped, event dropped", zap.String("event_id", event.ID))
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, event dropped",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) deliver(event events.Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("notification panic", zap.Any("panic", r), zap.String("event_id", event.ID))
		}
	}()
	if err := w.notifier.Handle(context.Background(), event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
