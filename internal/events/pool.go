package events

import (
	"context"

	"github.com/sirupsen/logrus"
)

// WorkerPool fans events out to a set of sinks on a fixed number of workers.
// Dispatch never blocks the caller; when the queue is full the event is dropped.
type WorkerPool struct {
	size  int
	jobs  chan Event
	sinks []Sink
	log   logrus.FieldLogger
}

// NewWorkerPool creates a worker pool with the given number of workers and queue size.
func NewWorkerPool(size, queue int, log logrus.FieldLogger, sinks ...Sink) *WorkerPool {
	if size < 1 {
		size = 1
	}
	if queue < 1 {
		queue = size
	}
	return &WorkerPool{
		size:  size,
		jobs:  make(chan Event, queue),
		sinks: sinks,
		log:   log.WithField("component", "events"),
	}
}

// Start launches the worker goroutines. They exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.log.WithField("worker", id)
	log.Debug("worker started")
	for {
		select {
		case ev := <-wp.jobs:
			wp.deliver(ctx, ev)
		case <-ctx.Done():
			log.Debug("worker shutting down")
			return
		}
	}
}

// Dispatch queues an event for delivery.
func (wp *WorkerPool) Dispatch(ev Event) {
	select {
	case wp.jobs <- ev:
	default:
		wp.log.WithField("type", ev.Type).Warn("event queue full, dropping event")
	}
}

func (wp *WorkerPool) deliver(ctx context.Context, ev Event) {
	for _, sink := range wp.sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			wp.log.WithError(err).WithField("type", ev.Type).Error("failed to publish event")
		}
	}
}
