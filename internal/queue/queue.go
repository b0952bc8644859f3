package queue

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Outcome is the terminal result of one booking request: either the
// applied booking or the error that rejected it.
type Outcome struct {
	Booking *model.Booking
	Err     error
}

// Item states.  An item leaves itemQueued exactly once: the worker
// takes it, or its submitter abandons it before the worker gets there.
const (
	itemQueued int32 = iota
	itemTaken
	itemAbandoned
)

// item is a queued request together with the channel its outcome is
// delivered on.  done has capacity 1 so the processor never blocks on
// a submitter that stopped waiting.
type item struct {
	req        model.BookingRequest
	done       chan Outcome
	enqueuedAt time.Time
	state      atomic.Int32
}

// take claims the item for processing.  It fails if the submitter
// abandoned it first.
func (it *item) take() bool { return it.state.CompareAndSwap(itemQueued, itemTaken) }

// abandon withdraws the item.  It fails once the worker has taken it;
// the submitter must then wait for the real outcome.
func (it *item) abandon() bool { return it.state.CompareAndSwap(itemQueued, itemAbandoned) }

func (it *item) resolve(o Outcome) {
	it.done <- o
	close(it.done)
}

// Queue is an unbounded FIFO of booking requests.  Push never blocks;
// a single consumer pops items in submission order.
type Queue struct {
	mu     sync.Mutex
	items  []*item
	closed bool
	ready  chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// push appends it and wakes the consumer.  The wake-up is coalesced:
// a consumer already signalled will find the new item when it drains.
// push reports false once the queue has been closed.
func (q *Queue) push(it *item) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, it)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// close refuses further pushes and returns the items still waiting.
func (q *Queue) close() []*item {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	rest := q.items
	q.items = nil
	return rest
}

func (q *Queue) pop() (*item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	it := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return it, true
}

// Len returns the number of requests waiting to be processed.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
