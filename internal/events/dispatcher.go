package events

import (
	"context"
	"sync"
	"sync/atomic"

	"cosmossdk.io/log"
)

// DispatcherConfig controls the async delivery queue.
type DispatcherConfig struct {
	BufferSize int
	// DropIfFull makes Emit non-blocking; overflow is counted in Dropped.
	DropIfFull bool
}

// Dispatcher decouples block commit from slow sinks. Events are delivered
// in submission order by a single worker goroutine.
type Dispatcher struct {
	cfg    DispatcherConfig
	sink   Sink
	logger log.Logger

	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	failed    atomic.Uint64
	closeOnce sync.Once

	// mu orders Emit against Close: senders hold it shared, Close takes it
	// exclusively before signalling the worker, so every queued event is
	// in the channel when the final drain runs.
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(cfg DispatcherConfig, sink Sink, logger log.Logger) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	d := &Dispatcher{
		cfg:    cfg,
		sink:   sink,
		logger: logger,
		ch:     make(chan Event, cfg.BufferSize),
		done:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.ch:
			d.deliver(ev)
		case <-d.done:
			for {
				select {
				case ev := <-d.ch:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(ev Event) {
	if err := d.sink.Emit(context.Background(), ev); err != nil {
		d.failed.Add(1)
		d.logger.Warn("event sink failed", "kind", string(ev.Kind), "session", ev.SessionID, "err", err)
	}
}

// Emit queues ev. It never returns an error so the dispatcher can itself be
// used as a Sink. Events rejected after Close, on overflow with DropIfFull,
// or on ctx cancellation are counted in Dropped.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) error {
	if d == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return nil
	}
	if d.cfg.DropIfFull {
		select {
		case d.ch <- ev:
		default:
			d.dropped.Add(1)
		}
		return nil
	}
	select {
	case d.ch <- ev:
	case <-ctx.Done():
		d.dropped.Add(1)
	}
	return nil
}

// Close stops accepting events and waits until the queue is drained.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.done)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Failed counts deliveries the sink rejected.
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
