package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clothify/storefront/internal/core/domain"
	"github.com/clothify/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher fans auth events out to a fixed set of workers using consistent
// hashing on the account key, which keeps one account's events in order.
// Every worker writes each event to all sinks.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	sinks   []ports.AuditSink
	log     zerolog.Logger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger, sinks ...ports.AuditSink) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		sinks:   sinks,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and exit
// on Stop; cancelling ctx aborts in-flight writes.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record queues event for the worker responsible for its account. It never
// blocks: when that worker's queue is full the event is dropped.
func (d *Dispatcher) Record(event domain.AuthEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return
	}

	select {
	case d.workers[d.shardIndex(event.ShardKey())] <- event:
	default:
		d.log.Warn().
			Str("event_type", string(event.Type)).
			Str("subject_id", event.SubjectID).
			Msg("audit queue full, event dropped")
	}
}

// Stop closes the queues and waits for the workers to drain them.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
		d.mu.Unlock()
	})
	d.wg.Wait()
}

// shardIndex maps an account key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	for event := range ch {
		d.write(ctx, id, event)
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, event domain.AuthEvent) {
	for _, sink := range d.sinks {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := sink.Write(wctx, event)
		cancel()
		if err != nil {
			d.log.Error().Err(err).
				Str("event_type", string(event.Type)).
				Int("worker_id", id).
				Msg("audit write failed")
		}
	}
}
