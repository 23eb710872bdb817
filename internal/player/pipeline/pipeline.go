// Package pipeline assembles the four cooperating pipeline workers:
// demuxer, decoder, filterer, and the control worker that serialises client
// operations against them. The demux/decode/filter packages build the
// stages; pipeline wires them together behind src-queue, pkt-queue,
// frames-queue, sink-queue and the two control queues, and exposes the
// synchronous Start/Stop/Seek/GetInfo control-plane API plus a direct
// sink-queue frame reader for the client package to poll.
package pipeline

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	perrors "github.com/alxayo/sxplayer-go/internal/errors"
	"github.com/alxayo/sxplayer-go/internal/logger"
	"github.com/alxayo/sxplayer-go/internal/player/decode"
	"github.com/alxayo/sxplayer-go/internal/player/demux"
	"github.com/alxayo/sxplayer-go/internal/player/filter"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
	"github.com/alxayo/sxplayer-go/internal/player/queue"
)

// Config configures a Pipeline.
type Config struct {
	ID       string
	Filename string

	OpenDemux   demux.OpenFunc
	DecodeTable decode.Table
	NewGraph    filter.GraphFactory
	GOOS        string // empty defaults to runtime.GOOS

	Demux  demux.Options
	Decode decode.Options
	Filter filter.Options
	Queues QueueCapacities

	Skip int64 // microseconds, media-time offset treated as t=0
	// TrimDurationUS is the media-length cap in microseconds. A value <= 0
	// means "auto: derive from the probed media duration".
	TrimDurationUS int64

	// ThreadStackSize is accepted for ABI fidelity but is a no-op:
	// goroutines have no configurable stack size, growing on demand
	// instead.
	ThreadStackSize int

	Log *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.Queues.applyDefaults()
	if c.GOOS == "" {
		c.GOOS = runtime.GOOS
	}
	if c.DecodeTable == nil {
		c.DecodeTable = decode.DefaultTable()
	}
	if c.NewGraph == nil {
		c.NewGraph = filter.NewGraphFactory()
	}
	if c.Log == nil {
		c.Log = logger.Logger()
	}
}

// Pipeline owns the six bounded queues and the control worker goroutine
// that lazily initialises and lifecycle-manages the demuxer/decoder/
// filterer workers. The control worker is the sole mutator of lifecycle
// state; all client-facing methods below only ever touch the queues, never
// the lifecycle fields directly.
type Pipeline struct {
	cfg Config
	log *slog.Logger

	openDemux   demux.OpenFunc
	decodeTable decode.Table
	goos        string
	newGraph    filter.GraphFactory

	srcQueue    *queue.Queue
	pktQueue    *queue.Queue
	framesQueue *queue.Queue
	sinkQueue   *queue.Queue
	ctlIn       *queue.Queue
	ctlOut      *queue.Queue

	state atomic.Int32

	ctlWG sync.WaitGroup

	// Fields below are owned exclusively by the control worker goroutine;
	// no other goroutine may read or write them.
	playing     bool
	modulesInit bool
	pendingSeek *int64
	cachedInfo  msg.Info
	// setupErr records the last module-init failure. Written only by the
	// control worker; read only by Start/Seek/GetInfo after the queue
	// round trip they block on has already established a happens-before
	// edge with the write.
	setupErr error

	demuxBackend  demux.Backend
	decodeBackend decode.Backend
	decodeKind    decode.Kind

	demuxWorker  *demux.Worker
	decodeWorker *decode.Worker
	filterWorker *filter.Worker

	workersWG sync.WaitGroup
}

// New constructs a Pipeline and starts its control worker goroutine. The
// three stage workers are not started until the first Start().
func New(cfg Config) (*Pipeline, error) {
	cfg.applyDefaults()
	if cfg.OpenDemux == nil {
		return nil, perrors.NewSetupError("pipeline.new", nil)
	}

	p := &Pipeline{
		cfg:         cfg,
		log:         logger.WithPipeline(cfg.Log, cfg.ID, cfg.Filename),
		openDemux:   cfg.OpenDemux,
		decodeTable: cfg.DecodeTable,
		goos:        cfg.GOOS,
		newGraph:    cfg.NewGraph,
		srcQueue:    queue.New("src_queue", srcQueueCap),
		pktQueue:    queue.New("pkt_queue", cfg.Queues.PktQueue),
		framesQueue: queue.New("frames_queue", cfg.Queues.FramesQueue),
		sinkQueue:   queue.New("sink_queue", cfg.Queues.SinkQueue),
		ctlIn:       queue.New("ctl_in_queue", ctlQueueCap),
		ctlOut:      queue.New("ctl_out_queue", ctlQueueCap),
	}
	p.state.Store(int32(StateIdle))

	p.ctlWG.Add(1)
	go p.controlLoop()

	return p, nil
}

// State reports the pipeline's current lifecycle state.
func (p *Pipeline) State() State { return State(p.state.Load()) }

func (p *Pipeline) setState(s State) { p.state.Store(int32(s)) }

// Start idempotently ensures the pipeline is running. It blocks until the
// control worker has fully processed the request, including any deferred
// seek's acknowledgement drain.
func (p *Pipeline) Start() error {
	if err := p.sendAndSync(msg.NewStart()); err != nil {
		return err
	}
	return p.setupErr
}

// Stop idempotently tears the pipeline down to Dead. It blocks until the
// control worker has joined all three stage workers.
func (p *Pipeline) Stop() error { return p.sendAndSync(msg.NewStop()) }

// Seek requests a seek to targetTS (pipeline time-base, microseconds). It
// blocks until the control worker has processed the request, including, if
// the pipeline is playing, draining the resulting SEEK acknowledgement off
// sink-queue, so that by the time Seek returns, RecvFrame is guaranteed to
// yield only post-seek frames.
func (p *Pipeline) Seek(targetTS int64) error {
	if err := p.sendAndSync(msg.NewSeek(targetTS)); err != nil {
		return err
	}
	return p.setupErr
}

// GetInfo computes and returns the media info record. It is idempotent and
// does not advance the pipeline clock. Returns the last module-init
// failure if one occurred instead of a zero-valued Info.
func (p *Pipeline) GetInfo() (msg.Info, error) {
	if err := p.ctlIn.Send(msg.NewInfo(nil)); err != nil {
		return msg.Info{}, err
	}
	for {
		m, err := p.ctlOut.Recv()
		if err != nil {
			return msg.Info{}, err
		}
		if m.Tag == msg.TagInfo {
			if p.setupErr != nil {
				return msg.Info{}, p.setupErr
			}
			info := m.Info
			if info == nil {
				return msg.Info{}, perrors.NewSetupError("pipeline.get_info", nil)
			}
			return *info, nil
		}
		msg.Free(m)
	}
}

// Close stops the pipeline (if running) and terminates the control worker
// goroutine. The Pipeline must not be used after Close returns.
func (p *Pipeline) Close() error {
	err := p.Stop()
	p.ctlIn.SetSendError(perrors.CodeExit)
	p.ctlWG.Wait()
	return err
}

// RecvFrame blocks for the next sink-queue frame, the externally observable
// frame output read by the client facade. It never observes SEEK markers:
// the control worker's Start/Seek handling already drains any SEEK
// acknowledgement internally before returning control to the caller (see
// sendAndSync), so by the time a caller can call RecvFrame again,
// sink-queue carries only post-seek FRAME messages.
func (p *Pipeline) RecvFrame() (*msg.Frame, error) {
	m, err := p.sinkQueue.Recv()
	if err != nil {
		return nil, err
	}
	return p.asFrame(m)
}

// TryRecvFrame is the non-blocking variant of RecvFrame; it returns
// queue.ErrWouldBlock when no frame is currently queued.
func (p *Pipeline) TryRecvFrame() (*msg.Frame, error) {
	m, err := p.sinkQueue.TryRecv()
	if err != nil {
		return nil, err
	}
	return p.asFrame(m)
}

func (p *Pipeline) asFrame(m msg.Message) (*msg.Frame, error) {
	if m.Tag != msg.TagFrame {
		msg.Free(m)
		return nil, perrors.NewQueueError("pipeline.recv_frame", perrors.CodeGeneric)
	}
	return m.Frame, nil
}

// ReleaseFrame returns a frame's buffers to the pool. Call exactly once per
// frame returned by RecvFrame/TryRecvFrame.
func ReleaseFrame(f *msg.Frame) { msg.Free(msg.NewFrame(f)) }

// sendAndSync sends m on ctl-in-queue, then a SYNC barrier immediately
// after it, and blocks until the matching SYNC reply drains off
// ctl-out-queue, discarding any stale INFO/SYNC residue along the way.
// Because the control worker processes ctl-in-queue strictly in order, the
// SYNC reply cannot arrive until m has been fully handled, including any
// internal seek-ack drain.
func (p *Pipeline) sendAndSync(m msg.Message) error {
	if err := p.ctlIn.Send(m); err != nil {
		return err
	}
	if err := p.ctlIn.Send(msg.NewSync()); err != nil {
		return err
	}
	for {
		reply, err := p.ctlOut.Recv()
		if err != nil {
			return err
		}
		if reply.Tag == msg.TagSync {
			return nil
		}
		msg.Free(reply)
	}
}
