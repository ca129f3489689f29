// Package queue provides the durable store of pending local mutations.
// Records are appended in mutation order, survive process restarts, and are
// removed only after the batch containing them is acknowledged remotely.
package queue

import (
	"sync"

	"github.com/plantboard/backend/internal/errors"
	"github.com/plantboard/backend/internal/logging"
	"github.com/plantboard/backend/internal/models"
)

// Storage persists queue items. Implemented by db.Repository.
type Storage interface {
	InsertQueueItem(item *models.QueueItem) error
	ListQueueItems() ([]models.QueueItem, error)
	DeleteQueueItems(ids []models.UUID) error
}

// DurableQueue is the ordered, append-only list of pending mutations.
//
// Every append is written through to Storage before Append returns, so a
// crash immediately afterwards does not lose the record. If the write-through
// fails the item is kept in memory for the session and the failure is logged:
// degraded mode, not a fatal error.
type DurableQueue struct {
	mu       sync.Mutex
	items    []models.QueueItem
	store    Storage
	degraded bool
	subs     []chan struct{}
	log      *logging.Logger
}

// NewDurableQueue creates a queue backed by store, reloading any items that
// were pending when the process last stopped.
func NewDurableQueue(store Storage, log *logging.Logger) (*DurableQueue, error) {
	if log == nil {
		log = logging.Get()
	}

	q := &DurableQueue{store: store, log: log}

	items, err := store.ListQueueItems()
	if err != nil {
		return nil, errors.Wrap(errors.ErrPersistence, "reload queue", err)
	}
	q.items = items

	if len(items) > 0 {
		log.Info("reloaded pending queue items", logging.Fields{"count": len(items)})
	}

	return q, nil
}

// Append adds item to the end of the queue and persists it synchronously.
// The returned error is always nil today; persistence failures degrade to
// in-memory operation and are logged.
func (q *DurableQueue) Append(item models.QueueItem) error {
	q.mu.Lock()
	q.items = append(q.items, item)

	if err := q.store.InsertQueueItem(&item); err != nil {
		q.degraded = true
		q.log.Error("queue persistence failed, item kept in memory only", err,
			logging.Fields{"id": item.ID, "action": item.Action})
	}
	q.mu.Unlock()

	q.notify()
	return nil
}

// Drain removes the oldest n items, the batch snapshot just acknowledged by
// the remote service. Items appended while that batch was in flight stay
// queued for the next cycle.
func (q *DurableQueue) Drain(n int) {
	q.mu.Lock()
	if n > len(q.items) {
		n = len(q.items)
	}
	if n <= 0 {
		q.mu.Unlock()
		return
	}

	ids := make([]models.UUID, 0, n)
	for _, item := range q.items[:n] {
		ids = append(ids, item.ID)
	}
	q.items = append([]models.QueueItem(nil), q.items[n:]...)

	if err := q.store.DeleteQueueItems(ids); err != nil {
		q.degraded = true
		q.log.Error("queue drain persistence failed", err, logging.Fields{"count": n})
	}
	q.mu.Unlock()

	q.notify()
}

// All returns the current ordered snapshot of the queue.
func (q *DurableQueue) All() []models.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.QueueItem(nil), q.items...)
}

// Contains reports whether at least one pending item references entityID.
// Used by the UI to show a pending-sync indicator next to an entity.
func (q *DurableQueue) Contains(entityID string) bool {
	if entityID == "" {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.items {
		if item.EntityID == entityID {
			return true
		}
	}
	return false
}

// Len returns the number of pending items.
func (q *DurableQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Degraded reports whether any persistence write has failed this session.
func (q *DurableQueue) Degraded() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.degraded
}

// Subscribe returns a channel that receives a signal whenever the queue
// contents change. Signals are coalesced; a receiver that is busy misses
// nothing because it re-reads the queue on its next wakeup.
func (q *DurableQueue) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	q.mu.Lock()
	q.subs = append(q.subs, ch)
	q.mu.Unlock()
	return ch
}

func (q *DurableQueue) notify() {
	q.mu.Lock()
	subs := append([]chan struct{}(nil), q.subs...)
	q.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
