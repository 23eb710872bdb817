// Package bufcount implements the buffer counter the hardware decoder
// backend uses to bound the number of decoded frames in flight. The owning
// context holds one permanent reference, so refcount starts at 1 and the
// configured maximum is refmax-1.
package bufcount

import (
	"sync"

	perrors "github.com/alxayo/sxplayer-go/internal/errors"
)

// MinBuf is the minimum in-flight cap allowed; below this the hardware
// decode queue can deadlock.
const MinBuf = 3

// Counter is a shared, blocking in-flight-frame counter. The owning context
// holds one implicit permanent reference, so refcount starts at 1 and
// refmax is bufmax+1.
type Counter struct {
	mu       sync.Mutex
	cond     *sync.Cond
	refcount int
	refmax   int
}

// New creates a Counter allowing up to bufmax frames in flight at once.
// bufmax must be >= MinBuf.
func New(bufmax int) (*Counter, error) {
	if bufmax < MinBuf {
		return nil, perrors.NewDecodeError("bufcount.create", nil)
	}
	c := &Counter{refcount: 1, refmax: bufmax + 1}
	c.cond = sync.NewCond(&c.mu)
	return c, nil
}

// UpdateMax adjusts the allowed in-flight count by n (positive or
// negative). Returns an error if the result would drop refmax below
// MinBuf.
func (c *Counter) UpdateMax(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refmax-1+n < MinBuf {
		return perrors.NewDecodeError("bufcount.update_max", nil)
	}
	c.refmax += n
	c.cond.Broadcast()
	return nil
}

// Acquire increments the in-flight count, blocking while the count has
// reached refmax. Call once per frame handed off to the hardware decoder.
func (c *Counter) Acquire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.refcount >= c.refmax {
		c.cond.Wait()
	}
	c.refcount++
	c.cond.Broadcast()
}

// Release decrements the in-flight count, waking any blocked Acquire. Call once per
// frame the hardware decoder has finished with (popped from the reorder
// queue or dropped on flush).
func (c *Counter) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refcount--
	c.cond.Broadcast()
}

// InFlight reports the current number of frames in flight (excluding the
// context's own permanent reference), for tests/metrics.
func (c *Counter) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refcount - 1
}

// Max reports the current bufmax (excluding the permanent reference).
func (c *Counter) Max() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refmax - 1
}
