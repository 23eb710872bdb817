// Package queue implements the bounded, dual-latch FIFO message queue that
// is the only shared state between pipeline workers. Two independent
// error-latches model the two directions a stage can die: the send-latch is
// set by a producer that has stopped (observed by Recv, which drains
// remaining messages first); the recv-latch is set by a consumer that has
// stopped (observed by Send, which fails immediately). Merging the two
// would either drop in-flight data or lose the distinction between a
// graceful drain and an abrupt cancel.
package queue

import (
	"sync"

	perrors "github.com/alxayo/sxplayer-go/internal/errors"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

// ErrWouldBlock is returned by TryRecv when no message is available and no
// latch has been set; it is transient, not a terminal queue state.
var ErrWouldBlock = perrors.NewQueueError("try_recv", perrors.CodeGeneric)

type latch struct {
	set  bool
	code perrors.Code
}

// Queue is a fixed-capacity FIFO of msg.Message.
type Queue struct {
	name string

	mu    sync.Mutex
	cond  *sync.Cond
	items []msg.Message
	cap   int

	sendLatch latch // observed by Recv; set when the producer has stopped
	recvLatch latch // observed by Send; set when the consumer has stopped
}

// New creates a queue with the given capacity. name identifies the queue in
// error messages (e.g. "pkt_queue").
func New(name string, capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue{name: name, cap: capacity, items: make([]msg.Message, 0, capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Name returns the queue's identifying name.
func (q *Queue) Name() string { return q.name }

// Send blocks until capacity is available or the recv-latch is set.
func (q *Queue) Send(m msg.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) >= q.cap && !q.recvLatch.set {
		q.cond.Wait()
	}
	if q.recvLatch.set {
		return perrors.NewQueueError(q.name+".send", q.recvLatch.code)
	}
	q.items = append(q.items, m)
	q.cond.Broadcast()
	return nil
}

// Recv blocks until a message is available or the send-latch is set. Once
// the send-latch is set, Recv drains any remaining queued messages before
// returning the latched error.
func (q *Queue) Recv() (msg.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.sendLatch.set {
		q.cond.Wait()
	}
	if len(q.items) > 0 {
		m := q.items[0]
		q.items = q.items[1:]
		q.cond.Broadcast()
		return m, nil
	}
	return msg.Message{}, perrors.NewQueueError(q.name+".recv", q.sendLatch.code)
}

// TryRecv is the non-blocking variant: it returns ErrWouldBlock immediately
// if no message is queued and no send-latch is set.
func (q *Queue) TryRecv() (msg.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) > 0 {
		m := q.items[0]
		q.items = q.items[1:]
		q.cond.Broadcast()
		return m, nil
	}
	if q.sendLatch.set {
		return msg.Message{}, perrors.NewQueueError(q.name+".recv", q.sendLatch.code)
	}
	return msg.Message{}, ErrWouldBlock
}

// SetSendError latches the send-side error code: subsequent Recv calls drain
// any queued messages, then return this code. Wakes all waiters.
func (q *Queue) SetSendError(code perrors.Code) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sendLatch = latch{set: true, code: code}
	q.cond.Broadcast()
}

// SetRecvError latches the recv-side error code: subsequent Send calls fail
// immediately with this code. Wakes all waiters.
func (q *Queue) SetRecvError(code perrors.Code) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recvLatch = latch{set: true, code: code}
	q.cond.Broadcast()
}

// ResetErrors clears both latches, returning the queue to a fresh state so
// the pipeline can be restarted after a stop.
func (q *Queue) ResetErrors() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sendLatch = latch{}
	q.recvLatch = latch{}
}

// Flush dequeues and releases every pending message via the free function
// without affecting either latch.
func (q *Queue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, m := range q.items {
		msg.Free(m)
	}
	q.items = q.items[:0]
	q.cond.Broadcast()
}

// Len returns the number of currently queued messages (for tests/metrics).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
