// Package client implements the position cache and re-seek policy that
// sits above the pipeline: it translates a renderer's arbitrary,
// not-necessarily-monotonic timeline-time queries into pipeline
// Start/Seek/RecvFrame calls, deciding when a forward jump is small enough
// to ride out by linear consumption versus large enough to warrant an
// actual container seek.
package client

import (
	"math"
	"sync"

	"github.com/alxayo/sxplayer-go/internal/player/msg"
	"github.com/alxayo/sxplayer-go/internal/player/pipeline"
)

// Pipe is the subset of *pipeline.Pipeline the position-cache policy
// drives. Defined as an interface so tests can substitute a fake pipeline.
type Pipe interface {
	Start() error
	Stop() error
	Seek(targetTS int64) error
	State() pipeline.State
	RecvFrame() (*msg.Frame, error)
	TryRecvFrame() (*msg.Frame, error)
}

var _ Pipe = (*pipeline.Pipeline)(nil)

// Config holds the client's timeline-to-media-time mapping and re-seek
// trigger.
type Config struct {
	SkipUS                int64 // media-time offset treated as timeline t=0
	HasTrim               bool  // false for still images / unknown-duration media
	TrimDurationUS        int64 // meaningful only if HasTrim
	DistTimeSeekTriggerUS int64 // forward-jump threshold triggering a SEEK
}

func (c *Config) applyDefaults() {
	if c.DistTimeSeekTriggerUS <= 0 {
		c.DistTimeSeekTriggerUS = 1_500_000
	}
}

// Client is the stateful position cache. It is not
// safe for concurrent GetFrame/GetNextFrame calls against the same
// instance from multiple goroutines simultaneously (the renderer that owns
// a Client is expected to poll it from one thread at a time), but it does
// guard its own state with a mutex so a concurrent Seek/Stop from another
// control path cannot corrupt it.
type Client struct {
	pipe Pipe
	cfg  Config

	mu           sync.Mutex
	lastPushedTS *int64     // identity of the most recently returned frame
	firstTS      *int64     // timestamp of the first frame ever obtained
	cached       *msg.Frame // one frame held for the near future
}

// New builds a Client around pipe.
func New(pipe Pipe, cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{pipe: pipe, cfg: cfg}
}

// mediaTime converts timeline time tSeconds to media time:
// skip + clamp(t, 0, trim).
func (c *Client) mediaTime(tSeconds float64) int64 {
	t := tSeconds
	if t < 0 {
		t = 0
	}
	if c.cfg.HasTrim {
		if trimSeconds := float64(c.cfg.TrimDurationUS) / 1e6; t > trimSeconds {
			t = trimSeconds
		}
	}
	return c.cfg.SkipUS + int64(math.Round(t*1e6))
}

// GetFrame is the get-frame-at-time entry point: it returns
// the decoded frame whose timestamp is closest to t, or nil if no new
// frame is available (a transient gap, an unchanged-since-last-call
// request, or a request before the first visible frame).
func (c *Client) GetFrame(tSeconds float64) (*msg.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tSeconds < 0 {
		// Prefetch request: ensure the pipeline is running, nothing more.
		_ = c.ensureRunningLocked()
		return nil, nil
	}

	if !c.cfg.HasTrim && c.lastPushedTS != nil {
		// Still-image case: once the single frame has been delivered, every
		// further request returns null until the pipeline is rebuilt.
		return nil, nil
	}

	if err := c.ensureRunningLocked(); err != nil {
		return nil, err
	}

	vt := c.mediaTime(tSeconds)

	if c.lastPushedTS == nil {
		return c.firstCall(vt)
	}
	return c.subsequentCall(vt)
}

// firstCall handles the very first GetFrame of this Client's lifetime (or
// the first since a restart): it establishes first_ts from the earliest
// obtainable frame before applying the usual diff logic.
func (c *Client) firstCall(vt int64) (*msg.Frame, error) {
	candidate := c.takeCached()
	if candidate == nil {
		f, ok := c.tryNext()
		if !ok {
			return nil, nil
		}
		candidate = f
	}
	ts := candidate.PTS
	c.firstTS = &ts

	diff := vt - candidate.PTS
	switch {
	case diff == 0:
		return c.deliver(candidate), nil
	case vt < *c.firstTS:
		c.cached = candidate
		return nil, nil
	case diff < 0 || diff > c.cfg.DistTimeSeekTriggerUS:
		pipeline.ReleaseFrame(candidate)
		return c.seekAndDeliver(vt)
	default:
		f, err := c.catchUp(vt, candidate)
		if err != nil {
			return nil, err
		}
		return c.deliver(f), nil
	}
}

// subsequentCall handles every GetFrame after the first: diff is measured
// against the identity of the last delivered frame.
func (c *Client) subsequentCall(vt int64) (*msg.Frame, error) {
	diff := vt - *c.lastPushedTS
	switch {
	case diff == 0:
		// Same request as last time: the answer is unchanged.
		return nil, nil
	case c.firstTS != nil && vt < *c.firstTS:
		return nil, nil
	case diff < 0 || diff > c.cfg.DistTimeSeekTriggerUS:
		return c.seekAndDeliver(vt)
	default:
		candidate := c.takeCached()
		if candidate == nil {
			f, ok := c.tryNext()
			if !ok {
				return nil, nil
			}
			candidate = f
		}
		if candidate.PTS > vt {
			// The held frame is still in the future: the frame at vt is the
			// one already delivered, so nothing changed.
			c.cached = candidate
			return nil, nil
		}
		f, err := c.catchUp(vt, candidate)
		if err != nil {
			return nil, err
		}
		return c.deliver(f), nil
	}
}

// Seek issues an explicit seek to tSeconds, independent of
// Get*Frame's own re-seek heuristic. It clears the position cache's
// last-pushed identity and first-ts baseline so the next Get*Frame call
// does not suppress the post-seek frame as "unchanged".
func (c *Client) Seek(tSeconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureRunningLocked(); err != nil {
		return err
	}
	vt := c.mediaTime(tSeconds)
	if err := c.pipe.Seek(vt); err != nil {
		return err
	}
	c.lastPushedTS = nil
	c.firstTS = nil
	if c.cached != nil {
		pipeline.ReleaseFrame(c.cached)
		c.cached = nil
	}
	return nil
}

// Start and Stop pass through to the underlying pipeline; Stop also resets
// the position cache so a later Start begins a fresh run.
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipe.Start()
}

func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.pipe.Stop()
	c.reset()
	return err
}

// GetNextFrame is the sequential-mode accessor: it ignores timestamps and
// simply pops the next frame. End-of-stream is observed as the pipeline
// moving to Dead; the next call restarts it from scratch.
func (c *Client) GetNextFrame() (*msg.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipe.State() == pipeline.StateDead {
		c.reset()
	}
	if err := c.ensureRunningLocked(); err != nil {
		return nil, err
	}

	var f *msg.Frame
	if c.cached != nil {
		f = c.takeCached()
	} else {
		recv, err := c.pipe.RecvFrame()
		if err != nil {
			// Observed end-of-stream (or a fatal pipeline error, which
			// the facade cannot distinguish from EOS without joining):
			// stop to reach Dead so the next call restarts cleanly.
			_ = c.pipe.Stop()
			return nil, nil
		}
		f = recv
	}
	ts := f.PTS
	c.lastPushedTS = &ts
	return f, nil
}

// ensureRunningLocked auto-starts the pipeline, resetting the position
// cache first if the pipeline had previously died.
func (c *Client) ensureRunningLocked() error {
	switch c.pipe.State() {
	case pipeline.StateRunning:
		return nil
	case pipeline.StateDead:
		c.reset()
	}
	return c.pipe.Start()
}

// reset clears all position-cache state before a restart.
func (c *Client) reset() {
	c.lastPushedTS = nil
	c.firstTS = nil
	if c.cached != nil {
		pipeline.ReleaseFrame(c.cached)
		c.cached = nil
	}
}

func (c *Client) takeCached() *msg.Frame {
	f := c.cached
	c.cached = nil
	return f
}

// tryNext pops one frame off the pipeline's sink without blocking. Any
// error (transient empty queue or a latched EOS/exit code) collapses to
// "no candidate"; the facade cannot distinguish the two without joining
// the pipeline.
func (c *Client) tryNext() (*msg.Frame, bool) {
	f, err := c.pipe.TryRecvFrame()
	if err != nil {
		return nil, false
	}
	return f, true
}

// catchUp advances sequentially (no seek) from start, consuming frames up to
// but not past vt and keeping the last one at or before it, for the
// "forward jump smaller than the seek trigger" branch. A frame that
// overshoots vt is held in the cache for the near future. If the pipeline
// ends mid-catch-up, the last frame obtained is returned (the trim-boundary
// case: the last valid frame is delivered once).
func (c *Client) catchUp(vt int64, start *msg.Frame) (*msg.Frame, error) {
	cur := start
	for cur.PTS < vt {
		f, err := c.pipe.RecvFrame()
		if err != nil {
			return cur, nil
		}
		if f.PTS > vt {
			c.cached = f
			return cur, nil
		}
		pipeline.ReleaseFrame(cur)
		cur = f
	}
	return cur, nil
}

// seekAndDeliver issues a SEEK to vt and blocks for the first frame at or
// past it, so a post-seek frame is never before the target. The pipeline's
// Seek already blocks until the SEEK acknowledgement drains internally, so
// every frame RecvFrame yields afterward belongs to the new position.
func (c *Client) seekAndDeliver(vt int64) (*msg.Frame, error) {
	if c.cached != nil {
		// Anything held from before the seek belongs to the old position.
		pipeline.ReleaseFrame(c.cached)
		c.cached = nil
	}
	if err := c.pipe.Seek(vt); err != nil {
		return nil, err
	}
	for {
		f, err := c.pipe.RecvFrame()
		if err != nil {
			return nil, nil
		}
		if f.PTS >= vt {
			return c.deliver(f), nil
		}
		pipeline.ReleaseFrame(f)
	}
}

// deliver suppresses a frame whose identity matches the one already handed
// to the caller, otherwise records it as the new last-pushed identity and
// returns it.
func (c *Client) deliver(f *msg.Frame) *msg.Frame {
	ts := f.PTS
	if c.lastPushedTS != nil && ts == *c.lastPushedTS {
		pipeline.ReleaseFrame(f)
		return nil
	}
	c.lastPushedTS = &ts
	return f
}
