package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config sizes the queue between request handlers and the sink.
type Config struct {
	Enabled bool
	// BufferSize is the queue capacity. Values below 1 are raised to 1.
	BufferSize int
	// DropIfFull keeps register/login/logout latency independent of the
	// sink: a full queue discards the event and counts it.
	DropIfFull bool
}

// Dispatcher moves account and session events off the request path. One
// relay goroutine feeds the sink in queue order.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool

	queue chan Event
	stop  chan struct{}
	relay sync.WaitGroup

	discarded atomic.Uint64
	stopping  atomic.Bool
	stopOnce  sync.Once
}

// NewDispatcher returns nil when cfg.Enabled is false. Every method is safe
// on a nil Dispatcher, so the engine never branches on the audit toggle.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	size := cfg.BufferSize
	if size < 1 {
		size = 1
	}

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan Event, size),
		stop:       make(chan struct{}),
	}
	d.relay.Add(1)
	go d.forward()
	return d
}

func (d *Dispatcher) forward() {
	defer d.relay.Done()

	ctx := context.Background()
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(ctx, event)
		case <-d.stop:
			d.flush(ctx)
			return
		}
	}
}

// flush hands the sink whatever is still queued at shutdown.
func (d *Dispatcher) flush(ctx context.Context) {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(ctx, event)
		default:
			return
		}
	}
}

// Emit queues event for the sink. Events emitted after Close are ignored.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.stopping.Load() {
		return
	}
	if d.dropIfFull {
		d.offer(event)
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.enqueue(ctx, event)
}

// offer never blocks.
func (d *Dispatcher) offer(event Event) {
	select {
	case d.queue <- event:
	case <-d.stop:
	default:
		d.discarded.Add(1)
	}
}

// enqueue waits for room until the request context ends or the dispatcher
// stops.
func (d *Dispatcher) enqueue(ctx context.Context, event Event) {
	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close rejects new events, delivers the queued ones, and waits for the
// relay goroutine. Repeated calls are no-ops.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.stopping.Store(true)
		close(d.stop)
		d.relay.Wait()
	})
}

// Dropped reports how many events a full queue discarded.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.discarded.Load()
}
