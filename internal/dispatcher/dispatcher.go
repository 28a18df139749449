// Package dispatcher routes OSC events to handlers by address. A route can
// be synchronous or run on its own goroutine behind a bounded inbox.
package dispatcher

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

var (
	ErrUnknownAddress = errors.New("no handler for address")
	ErrQueueFull      = errors.New("handler queue full")
)

// Queued is the result of handing an event to a buffered route.
const Queued = "queued"

type HandlerFunc func(Event) (any, error)

// Logger is satisfied by logging.DispatcherLogger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type routeOptions struct {
	inbox  int
	logged bool
}

type Option func(*routeOptions)

// Buffered runs the handler on its own goroutine behind an inbox of size
// events. A full inbox drops the event with ErrQueueFull.
func Buffered(size int) Option {
	return func(o *routeOptions) { o.inbox = size }
}

// Logged reports every event and its outcome at debug level, failures at
// error level.
func Logged() Option {
	return func(o *routeOptions) { o.logged = true }
}

// Dispatcher is built once at startup: Register is not safe to call
// concurrently with Dispatch.
type Dispatcher struct {
	routes map[string]HandlerFunc
	log    Logger
	stats  *stats

	mu      sync.RWMutex
	inboxes map[string]chan Event
	closed  bool
	workers sync.WaitGroup
}

func New(log Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		routes:  make(map[string]HandlerFunc),
		inboxes: make(map[string]chan Event),
		log:     log,
	}
	s, err := newStats(d.inboxDepths)
	if err != nil {
		return nil, err
	}
	d.stats = s
	return d, nil
}

func (d *Dispatcher) Register(address string, h HandlerFunc, opts ...Option) {
	var o routeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.inbox > 0 {
		h = d.spawn(address, o.inbox, h)
	}
	if o.logged {
		h = d.traced(address, h)
	}
	d.routes[address] = h
}

// Dispatch runs the route for e.Address. Buffered routes return Queued as
// soon as the event is accepted.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.routes[e.Address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAddress, e.Address)
	}
	return h(e)
}

func (d *Dispatcher) HasHandler(address string) bool {
	_, ok := d.routes[address]
	return ok
}

// Addresses lists the registered routes in sorted order.
func (d *Dispatcher) Addresses() []string {
	return slices.Sorted(maps.Keys(d.routes))
}

// Close lets every buffered route drain its inbox and waits for it. It is
// idempotent; dispatching to a buffered route afterwards panics.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, inbox := range d.inboxes {
		close(inbox)
	}
	d.mu.Unlock()
	d.workers.Wait()
}

func (d *Dispatcher) inboxDepths(observe func(address string, depth int)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for addr, inbox := range d.inboxes {
		observe(addr, len(inbox))
	}
}

func (d *Dispatcher) spawn(address string, size int, h HandlerFunc) HandlerFunc {
	inbox := make(chan Event, size)
	d.mu.Lock()
	d.inboxes[address] = inbox
	d.mu.Unlock()

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for e := range inbox {
			if _, err := h(e); err != nil {
				d.log.Error("Buffered handler failed", "address", address, "error", err)
			}
			d.stats.handled(address)
		}
	}()

	return func(e Event) (any, error) {
		select {
		case inbox <- e:
			return Queued, nil
		default:
			d.stats.dropped(address)
			return nil, fmt.Errorf("%w: %s", ErrQueueFull, address)
		}
	}
}

func (d *Dispatcher) traced(address string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		res, err := h(e)
		if err != nil {
			d.log.Error("OSC event failed", "address", address, "args", e.Args, "took", time.Since(start), "error", err)
			return res, err
		}
		d.log.Debug("OSC event handled", "address", address, "args", e.Args, "took", time.Since(start))
		return res, nil
	}
}
