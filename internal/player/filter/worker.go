package filter

import (
	"log/slog"

	perrors "github.com/alxayo/sxplayer-go/internal/errors"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
	"github.com/alxayo/sxplayer-go/internal/player/queue"
)

// Worker is the filterer pipeline stage: lazy graph (re)construction,
// trim-boundary enforcement, and SEEK-barrier forwarding.
type Worker struct {
	newGraph GraphFactory
	opts     Options
	inQueue  *queue.Queue
	outQueue *queue.Queue
	log      *slog.Logger

	graph      Graph
	lastFormat string
}

func New(newGraph GraphFactory, opts Options, inQueue, outQueue *queue.Queue, log *slog.Logger) *Worker {
	return &Worker{newGraph: newGraph, opts: opts, inQueue: inQueue, outQueue: outQueue, log: log}
}

// Run is the worker loop. A single exit point computes the pair of codes
// propagated to the in and out queues.
func (w *Worker) Run() {
	cause, exitCode := w.loop()
	if w.graph != nil {
		w.graph.Close()
		w.graph = nil
	}

	var inCode, outCode perrors.Code
	if exitCode {
		// Trim boundary reached: exit, not EOF, so in-flight frames past
		// the boundary are not flushed downstream.
		inCode, outCode = perrors.CodeExit, perrors.CodeExit
	} else {
		inCode, outCode = cause, cause
	}

	w.log.Debug("filter worker exiting", "in_code", inCode, "out_code", outCode)
	w.inQueue.SetRecvError(inCode)
	w.inQueue.Flush()
	w.outQueue.SetSendError(outCode)
}

func (w *Worker) loop() (cause perrors.Code, exitCode bool) {
	for {
		m, err := w.inQueue.Recv()
		if err != nil {
			code, ok := perrors.QueueErrorCode(err)
			if !ok {
				code = perrors.CodeGeneric
			}
			return code, false
		}

		if m.Tag == msg.TagSeek {
			if w.graph != nil {
				w.graph.Close()
				w.graph = nil
			}
			w.lastFormat = ""
			w.outQueue.Flush()
			if sendErr := w.outQueue.Send(m); sendErr != nil {
				return w.consumerStopped(sendErr), false
			}
			continue
		}

		if m.Tag != msg.TagFrame {
			if sendErr := w.outQueue.Send(m); sendErr != nil {
				return w.consumerStopped(sendErr), false
			}
			continue
		}

		f := m.Frame
		if f.PTS < 0 {
			msg.Free(msg.NewFrame(f))
			continue
		}
		if w.opts.HasMaxPTS && f.PTS >= w.opts.MaxPTS {
			msg.Free(msg.NewFrame(f))
			return perrors.CodeExit, true
		}

		if format(f) != w.lastFormat {
			if w.graph != nil {
				w.graph.Close()
			}
			g, err := w.newGraph(f, w.opts)
			if err != nil {
				w.log.Error("filter graph setup failed", "error", err)
				msg.Free(msg.NewFrame(f))
				return perrors.CodeGeneric, false
			}
			w.graph = g
			w.lastFormat = format(f)
		}

		out, err := w.graph.Push(f)
		if err != nil {
			w.log.Error("filter push failed", "error", err)
			msg.Free(msg.NewFrame(f))
			return perrors.CodeGeneric, false
		}
		for _, of := range out {
			if sendErr := w.outQueue.Send(msg.NewFrame(of)); sendErr != nil {
				return w.consumerStopped(sendErr), false
			}
		}
	}
}

// consumerStopped re-asserts out-queue's recv-latch with the code the sink
// side already set.
func (w *Worker) consumerStopped(sendErr error) perrors.Code {
	code, ok := perrors.QueueErrorCode(sendErr)
	if !ok {
		code = perrors.CodeExit
	}
	w.outQueue.SetRecvError(code)
	return code
}
