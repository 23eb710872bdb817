package demux

import (
	"errors"
	"io"
	"log/slog"

	perrors "github.com/alxayo/sxplayer-go/internal/errors"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
	"github.com/alxayo/sxplayer-go/internal/player/queue"
)

// Worker is the demuxer pipeline stage. It owns the backend handle for the
// duration of Run, so probe accessors are safe to call before Run starts or
// after it returns.
type Worker struct {
	backend    Backend
	srcQueue   *queue.Queue
	pktQueue   *queue.Queue
	pktSkipMod int
	log        *slog.Logger

	pktIndex int // 1-based index for pkt_skip_mod policy
}

// New constructs a Worker around an already-opened backend.
func New(backend Backend, srcQueue, pktQueue *queue.Queue, pktSkipMod int, log *slog.Logger) *Worker {
	return &Worker{
		backend:    backend,
		srcQueue:   srcQueue,
		pktQueue:   pktQueue,
		pktSkipMod: pktSkipMod,
		log:        log,
	}
}

// ProbeDuration, ProbeRotation, StreamIndex and IsImage are synchronous
// accessors usable only once the backend has been opened.
func (w *Worker) ProbeDuration() int64 { return w.backend.ProbeDuration() }
func (w *Worker) ProbeRotation() int   { return w.backend.ProbeRotation() }
func (w *Worker) StreamIndex() int     { return w.backend.StreamIndex() }
func (w *Worker) IsImage() bool        { return w.backend.IsImage() }
func (w *Worker) Info() msg.Info       { return w.backend.Info() }

// Run is the worker loop. It returns when the container is exhausted, a
// terminal error occurs, or downstream (pkt-queue) stops consuming. A
// single exit point computes the pair of codes propagated to src-queue and
// pkt-queue.
func (w *Worker) Run() {
	isEOF, cause := w.loop()

	var inCode, outCode perrors.Code
	if isEOF {
		inCode, outCode = perrors.CodeExit, perrors.CodeEOS
	} else {
		inCode, outCode = cause, cause
	}

	w.log.Debug("demux worker exiting", "in_code", inCode, "out_code", outCode)
	w.srcQueue.SetRecvError(inCode)
	w.srcQueue.Flush()
	w.pktQueue.SetSendError(outCode)
}

// loop runs until the container is exhausted (isEOF true) or a terminal
// error occurs (cause holds its code).
func (w *Worker) loop() (isEOF bool, cause perrors.Code) {
	for {
		m, err := w.srcQueue.TryRecv()
		if err != queue.ErrWouldBlock {
			if err != nil {
				code, ok := perrors.QueueErrorCode(err)
				if !ok {
					code = perrors.CodeExit
				}
				return false, code
			}

			if m.Tag == msg.TagSeek {
				w.pktQueue.Flush()
				if seekErr := w.backend.Seek(m.SeekTS); seekErr != nil {
					w.log.Warn("container seek failed", "target_pts", m.SeekTS, "error", seekErr)
				}
			}

			if sendErr := w.pktQueue.Send(m); sendErr != nil {
				return false, w.consumerStopped(sendErr)
			}
		}

		pkt, err := w.backend.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true, perrors.CodeEOS
			}
			w.log.Error("demuxer read_packet failed", "error", err)
			return false, perrors.CodeGeneric
		}

		if pkt.StreamIndex != w.backend.StreamIndex() {
			continue
		}

		w.pktIndex++
		if !pkt.Key && w.pktSkipMod > 1 && w.pktIndex%w.pktSkipMod != 0 {
			continue
		}

		if sendErr := w.pktQueue.Send(msg.NewPacket(pkt)); sendErr != nil {
			return false, w.consumerStopped(sendErr)
		}
	}
}

// consumerStopped re-asserts pkt-queue's recv-latch with the code the
// decoder itself already set.
func (w *Worker) consumerStopped(sendErr error) perrors.Code {
	code, ok := perrors.QueueErrorCode(sendErr)
	if !ok {
		code = perrors.CodeExit
	}
	w.pktQueue.SetRecvError(code)
	return code
}
