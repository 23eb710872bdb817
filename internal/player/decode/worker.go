package decode

import (
	"log/slog"

	perrors "github.com/alxayo/sxplayer-go/internal/errors"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
	"github.com/alxayo/sxplayer-go/internal/player/queue"
)

// Worker is the decoder pipeline stage. It owns queueFrame, the
// seek-refinement policy that turns the demuxer's keyframe-granularity seek
// into an exact first-on-or-after-target frame by caching and rewriting
// timestamps.
type Worker struct {
	backend     Backend
	pktQueue    *queue.Queue
	framesQueue *queue.Queue
	log         *slog.Logger

	seekTarget *int64
	pending    *msg.Frame
}

func New(backend Backend, pktQueue, framesQueue *queue.Queue, log *slog.Logger) *Worker {
	return &Worker{backend: backend, pktQueue: pktQueue, framesQueue: framesQueue, log: log}
}

// Run is the worker loop: pull packets/control messages off pkt-queue, push
// packets through the backend, and forward decoded frames (after
// queueFrame's seek refinement) onto frames-queue. On EOF it drains the
// backend's remaining buffered frames before shutting down.
func (w *Worker) Run() {
	isEOF, cause := w.loop()

	if isEOF {
		w.drainRemaining()
	}
	_ = w.backend.Flush()
	if w.pending != nil {
		msg.Free(msg.NewFrame(w.pending))
		w.pending = nil
	}

	var inCode, outCode perrors.Code
	if isEOF {
		inCode, outCode = perrors.CodeExit, perrors.CodeEOS
	} else {
		inCode, outCode = cause, cause
	}

	w.log.Debug("decode worker exiting", "in_code", inCode, "out_code", outCode)
	w.pktQueue.SetRecvError(inCode)
	w.pktQueue.Flush()
	w.framesQueue.SetSendError(outCode)
}

func (w *Worker) loop() (isEOF bool, cause perrors.Code) {
	for {
		m, err := w.pktQueue.Recv()
		if err != nil {
			code, ok := perrors.QueueErrorCode(err)
			if !ok {
				code = perrors.CodeGeneric
			}
			return code == perrors.CodeEOS, code
		}

		switch m.Tag {
		case msg.TagSeek:
			if sendErr := w.handleSeek(m); sendErr != nil {
				return false, w.consumerStopped(sendErr)
			}
		case msg.TagPacket:
			if pushErr := w.backend.PushPacket(m.Packet, w.queueFrame); pushErr != nil {
				w.log.Error("decoder push_packet failed", "error", pushErr)
				return false, perrors.CodeGeneric
			}
		default:
			if sendErr := w.framesQueue.Send(m); sendErr != nil {
				return false, w.consumerStopped(sendErr)
			}
		}
	}
}

// handleSeek flushes in-flight backend state and the cached pending frame,
// drops stale buffered frames downstream, arms the seek-refinement target,
// and forwards the barrier.
func (w *Worker) handleSeek(m msg.Message) error {
	_ = w.backend.Flush()
	if w.pending != nil {
		msg.Free(msg.NewFrame(w.pending))
		w.pending = nil
	}
	w.framesQueue.Flush()
	target := m.SeekTS
	w.seekTarget = &target
	return w.framesQueue.Send(m)
}

// queueFrame is the seek-refinement rule, passed to the backend as the
// EmitFunc: frames before the seek target are held back (only the most
// recent one kept as a candidate), and the first on-or-after-target frame
// has its timestamp snapped to the target.
func (w *Worker) queueFrame(f *msg.Frame) {
	if f == nil {
		if w.pending != nil {
			_ = w.framesQueue.Send(msg.NewFrame(w.pending))
			w.pending = nil
		}
		return
	}

	ts := w.frameTS(f)
	f.PTS = ts

	if w.seekTarget != nil && ts < *w.seekTarget {
		if w.pending != nil {
			msg.Free(msg.NewFrame(w.pending))
		}
		w.pending = f
		return
	}

	if w.pending != nil {
		if w.seekTarget != nil && ts == *w.seekTarget {
			msg.Free(msg.NewFrame(w.pending))
		} else {
			_ = w.framesQueue.Send(msg.NewFrame(w.pending))
		}
		w.pending = nil
	}

	// Rewrite the first on-or-after-target frame to land exactly on the
	// seek target, whether or not a frame was cached before it; this keeps
	// seek results deterministic regardless of decode-order jitter.
	if w.seekTarget != nil && *w.seekTarget > 0 {
		f.PTS = *w.seekTarget
	}
	w.seekTarget = nil
	_ = w.framesQueue.Send(msg.NewFrame(f))
}

// frameTS is the best-effort presentation timestamp for a decoded frame.
// This repo's backends always carry an exact PTS, so best-effort and raw
// coincide; a real codec backend would prefer a reordered best-effort
// timestamp here and fall back to the raw one.
func (w *Worker) frameTS(f *msg.Frame) int64 { return f.PTS }

// drainRemaining pushes flush packets through the backend until it reports
// no more buffered frames.
func (w *Worker) drainRemaining() {
	for {
		done := false
		_ = w.backend.Drain(func(f *msg.Frame) {
			if f == nil {
				done = true
				return
			}
			w.queueFrame(f)
		})
		if done {
			break
		}
	}
}

// consumerStopped re-asserts frames-queue's recv-latch with the code the
// filterer itself already set.
func (w *Worker) consumerStopped(sendErr error) perrors.Code {
	code, ok := perrors.QueueErrorCode(sendErr)
	if !ok {
		code = perrors.CodeExit
	}
	w.framesQueue.SetRecvError(code)
	return code
}
