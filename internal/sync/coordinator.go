// Package sync drives queue flush attempts against the remote service. The
// coordinator subscribes to queue and connectivity changes, re-runs its
// decision function on each notification, and guarantees at most one batch
// send in flight.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/plantboard/backend/internal/connectivity"
	"github.com/plantboard/backend/internal/errors"
	"github.com/plantboard/backend/internal/logging"
	"github.com/plantboard/backend/internal/queue"
	"github.com/plantboard/backend/internal/remote"
)

// Status is the process-wide sync status, derived reactively.
type Status string

const (
	StatusSynced  Status = "synced"
	StatusSyncing Status = "syncing"
	StatusOffline Status = "offline"
	StatusError   Status = "error"
)

// StatusEvent is delivered to OnChange listeners on every transition.
type StatusEvent struct {
	Status    Status `json:"status"`
	Pending   int    `json:"pending"`
	LastError string `json:"lastError,omitempty"`
}

// Coordinator watches the queue and the connectivity monitor and flushes
// the queue as whole batches when the conditions allow.
//
// The decision function: offline wins over everything; otherwise a
// non-empty queue with no batch in flight starts a send. There is no
// scheduled retry: the next retry opportunity is the next reactive trigger
// (connectivity flap, new mutation, or an explicit Kick).
type Coordinator struct {
	queue   *queue.DurableQueue
	monitor *connectivity.Monitor
	remote  remote.Service
	timeout time.Duration

	mu        sync.Mutex
	status    Status
	inFlight  bool
	lastSync  *time.Time
	lastErr   error
	listeners []func(StatusEvent)

	kick      chan struct{}
	stopCh    chan struct{}
	wg        sync.WaitGroup
	isRunning bool
	log       *logging.Logger
}

// NewCoordinator creates a coordinator. The timeout bounds each batch send
// so a hung request cannot hold the syncing state forever.
func NewCoordinator(q *queue.DurableQueue, m *connectivity.Monitor, svc remote.Service, timeout time.Duration, log *logging.Logger) *Coordinator {
	if log == nil {
		log = logging.Get()
	}

	status := StatusSynced
	if !m.Online() {
		status = StatusOffline
	}

	return &Coordinator{
		queue:   q,
		monitor: m,
		remote:  svc,
		timeout: timeout,
		status:  status,
		kick:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		log:     log,
	}
}

// Status returns the current sync status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Pending returns the number of queued mutations.
func (c *Coordinator) Pending() int {
	return c.queue.Len()
}

// LastSync returns the time of the last successful batch send.
func (c *Coordinator) LastSync() *time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

// LastError returns the error from the most recent failed attempt.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// OnChange registers a listener for status transitions. Must be called
// before Start.
func (c *Coordinator) OnChange(fn func(StatusEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Kick requests an immediate re-evaluation, the manual retry path out of
// the error state.
func (c *Coordinator) Kick() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Start launches the decision loop.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = true
	c.mu.Unlock()

	queueCh := c.queue.Subscribe()
	monitorCh := c.monitor.Subscribe()

	c.wg.Add(1)
	go c.run(queueCh, monitorCh)
}

// Stop stops the decision loop and waits for it to exit. An in-flight
// batch send finishes first, bounded by the attempt timeout.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = false
	c.mu.Unlock()

	close(c.stopCh)
	c.wg.Wait()
}

func (c *Coordinator) run(queueCh, monitorCh <-chan struct{}) {
	defer c.wg.Done()

	// Initial evaluation picks up items reloaded from a previous session.
	c.evaluate()

	for {
		select {
		case <-c.stopCh:
			return
		case <-queueCh:
			c.evaluate()
		case <-monitorCh:
			c.evaluate()
		case <-c.kick:
			c.evaluate()
		}
	}
}

// evaluate runs the decision function once and performs at most one batch
// send. It only ever runs on the coordinator goroutine, so sends are
// naturally serialized; the inFlight flag documents and enforces the
// invariant anyway.
func (c *Coordinator) evaluate() {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return
	}

	if !c.monitor.Online() {
		event, changed := c.setStatusLocked(StatusOffline)
		c.mu.Unlock()
		c.emit(event, changed)
		return
	}

	items := c.queue.All()
	if len(items) == 0 {
		event, changed := c.setStatusLocked(StatusSynced)
		c.mu.Unlock()
		c.emit(event, changed)
		return
	}

	c.inFlight = true
	event, changed := c.setStatusLocked(StatusSyncing)
	c.mu.Unlock()
	c.emit(event, changed)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	err := c.remote.ApplyBatch(ctx, items)
	cancel()

	c.mu.Lock()
	c.inFlight = false

	if err != nil {
		c.lastErr = err
		next := StatusError
		if !c.monitor.Online() {
			next = StatusOffline
		}
		event, changed := c.setStatusLocked(next)
		c.mu.Unlock()

		// Transport errors and server rejections retry identically;
		// the code makes them distinguishable here.
		c.log.Error("batch send failed, queue retained", err, logging.Fields{
			"code": errors.CodeOf(err), "pending": len(items),
		})
		c.emit(event, changed)
		return
	}

	c.lastErr = nil
	now := time.Now()
	c.lastSync = &now
	c.mu.Unlock()

	// Remove exactly the acknowledged snapshot; mutations that arrived
	// during the send stay queued and re-trigger evaluation via the
	// queue's own change notification.
	c.queue.Drain(len(items))

	c.mu.Lock()
	next := StatusSynced
	if c.queue.Len() > 0 {
		next = StatusSyncing
	}
	event, changed = c.setStatusLocked(next)
	c.mu.Unlock()

	c.log.Info("batch synced", logging.Fields{"count": len(items)})
	c.emit(event, changed)
}

// setStatusLocked updates the status and prepares the listener event.
// Callers must hold c.mu.
func (c *Coordinator) setStatusLocked(next Status) (StatusEvent, bool) {
	changed := c.status != next
	c.status = next

	event := StatusEvent{Status: next, Pending: c.queue.Len()}
	if c.lastErr != nil {
		event.LastError = c.lastErr.Error()
	}
	return event, changed
}

func (c *Coordinator) emit(event StatusEvent, changed bool) {
	if !changed {
		return
	}
	c.mu.Lock()
	listeners := append([](func(StatusEvent))(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}
