package pipeline

import (
	perrors "github.com/alxayo/sxplayer-go/internal/errors"
	"github.com/alxayo/sxplayer-go/internal/logger"
	"github.com/alxayo/sxplayer-go/internal/player/decode"
	"github.com/alxayo/sxplayer-go/internal/player/demux"
	"github.com/alxayo/sxplayer-go/internal/player/filter"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
	"github.com/alxayo/sxplayer-go/internal/player/queue"
)

// controlLoop is the control worker: it serialises every client-requested
// operation against the running pipeline by processing ctl-in-queue
// strictly in FIFO order, one message at a time. Only INFO and SYNC
// replies are echoed onto ctl-out-queue.
func (p *Pipeline) controlLoop() {
	defer p.ctlWG.Done()
	for {
		m, err := p.ctlIn.Recv()
		if err != nil {
			// ctl-in-queue itself was closed (Pipeline.Close): latch EXIT on
			// both control queues so any blocked caller wakes, run the stop
			// path so no workers or modules are left behind, then exit.
			p.ctlIn.SetRecvError(perrors.CodeExit)
			p.ctlOut.SetSendError(perrors.CodeExit)
			p.handleStop()
			return
		}

		switch m.Tag {
		case msg.TagStart:
			p.handleStart()
		case msg.TagStop:
			p.handleStop()
		case msg.TagSeek:
			p.handleSeek(m.SeekTS)
		case msg.TagInfo:
			p.handleInfo()
		case msg.TagSync:
			_ = p.ctlOut.Send(msg.NewSync())
		}
	}
}

// handleStart processes a START: idempotent; lazily inits modules, injects
// a deferred/skip seek before the workers start so the demuxer sees it
// first, then blocks draining the seek acknowledgement off sink-queue.
func (p *Pipeline) handleStart() {
	if p.playing {
		return
	}
	if !p.modulesInit {
		if err := p.initModules(); err != nil {
			p.log.Error("module init failed on start", "error", err)
			p.setupErr = err
			return
		}
	}

	var seekTS *int64
	switch {
	case p.pendingSeek != nil:
		seekTS = p.pendingSeek
	case p.cfg.Skip != 0:
		ts := p.cfg.Skip
		seekTS = &ts
	}

	if seekTS != nil {
		if err := p.srcQueue.Send(msg.NewSeek(*seekTS)); err != nil {
			p.log.Warn("initial seek injection failed", "error", err)
			seekTS = nil
		}
	}

	p.startWorkers()
	p.playing = true
	p.setState(StateRunning)

	if seekTS != nil {
		if err := p.drainSeekAck(); err != nil {
			p.log.Warn("start seek ack drain failed", "error", err)
		}
		p.pendingSeek = nil
	}
}

// handleStop processes a STOP: idempotent; latches EXIT on every pipeline
// queue in both directions, flushes them, joins the three stage workers,
// frees modules, and resets all latches so the pipeline can be restarted
// from Idle-equivalent state.
func (p *Pipeline) handleStop() {
	if !p.playing {
		return
	}
	p.setState(StateDying)

	for _, q := range p.dataQueues() {
		q.SetSendError(perrors.CodeExit)
		q.SetRecvError(perrors.CodeExit)
	}
	for _, q := range p.dataQueues() {
		q.Flush()
	}

	p.workersWG.Wait()
	p.freeModules()

	for _, q := range p.dataQueues() {
		q.ResetErrors()
	}

	p.playing = false
	p.setState(StateDead)
}

// handleSeek processes a SEEK. Modules are lazily initialised (to access
// the probed duration). A seek on media with no known duration (e.g. a
// still image) is silently dropped. If the pipeline is not playing, the
// target is recorded for the next Start. If playing, the seek is injected
// into src-queue and its acknowledgement is drained; either failure mode
// restarts the pipeline from scratch with the pending seek re-applied
// before workers start.
func (p *Pipeline) handleSeek(ts int64) {
	if !p.modulesInit {
		if err := p.initModules(); err != nil {
			p.log.Error("module init failed on seek", "error", err)
			p.setupErr = err
			return
		}
	}
	if p.cachedInfo.DurationUS <= 0 {
		p.log.Debug("seek dropped: media has no duration", "target_ts", ts)
		return
	}

	target := ts
	p.pendingSeek = &target

	if !p.playing {
		return
	}

	if err := p.srcQueue.Send(msg.NewSeek(ts)); err != nil {
		p.log.Warn("seek send failed, restarting pipeline", "error", err)
		p.restartWithPendingSeek()
		return
	}
	if err := p.drainSeekAck(); err != nil {
		p.log.Warn("seek ack drain failed, restarting pipeline", "error", err)
		p.restartWithPendingSeek()
		return
	}
	p.pendingSeek = nil
}

// handleInfo processes an INFO: lazily inits modules if needed, then echoes
// the cached probe-derived info record onto ctl-out-queue.
func (p *Pipeline) handleInfo() {
	if !p.modulesInit {
		if err := p.initModules(); err != nil {
			p.log.Error("module init failed on info", "error", err)
			p.setupErr = err
			_ = p.ctlOut.Send(msg.NewInfo(&msg.Info{}))
			return
		}
	}
	info := p.cachedInfo
	_ = p.ctlOut.Send(msg.NewInfo(&info))
}

// restartWithPendingSeek tears the pipeline down (as if by STOP, but
// without requiring playing to already reflect worker death) and
// immediately restarts it, so the seek recorded in pendingSeek is applied
// before the new workers start.
func (p *Pipeline) restartWithPendingSeek() {
	p.setState(StateDying)
	for _, q := range p.dataQueues() {
		q.SetSendError(perrors.CodeExit)
		q.SetRecvError(perrors.CodeExit)
	}
	for _, q := range p.dataQueues() {
		q.Flush()
	}
	p.workersWG.Wait()
	p.freeModules()
	for _, q := range p.dataQueues() {
		q.ResetErrors()
	}
	p.playing = false
	p.setState(StateDead)

	p.handleStart()
}

// drainSeekAck blocks draining sink-queue, releasing every FRAME message it
// discards, until the matching SEEK marker is observed. Exactly one
// matching SEEK exits sink-queue before any post-seek FRAME, so this is
// the seek (or start) acknowledgement.
func (p *Pipeline) drainSeekAck() error {
	for {
		m, err := p.sinkQueue.Recv()
		if err != nil {
			return err
		}
		if m.Tag == msg.TagSeek {
			return nil
		}
		msg.Free(m)
	}
}

// dataQueues lists the four pipeline data queues in the order a stop must
// latch and flush them.
func (p *Pipeline) dataQueues() []*queue.Queue {
	return []*queue.Queue{p.srcQueue, p.pktQueue, p.framesQueue, p.sinkQueue}
}

// initModules opens the demuxer backend, selects/initialises a decoder
// backend (with platform-preference fallback), and builds the filterer's
// graph factory options, without starting any worker goroutine. Probed
// values are cached immediately so later accesses never touch a backend a
// running worker may concurrently own.
func (p *Pipeline) initModules() error {
	backend, err := p.openDemux(p.cfg.Filename, p.cfg.Demux)
	if err != nil {
		return perrors.NewSetupError("pipeline.open_demux", err)
	}

	demuxWorker := demux.New(backend, p.srcQueue, p.pktQueue, p.cfg.Demux.PktSkipMod, logger.WithWorker(p.log, "demuxer"))
	info := backend.Info()
	rotation := backend.ProbeRotation()

	decodeOpts := p.cfg.Decode
	order := decode.PreferenceOrder(p.goos, decodeOpts)
	decodeBackend, kind, err := decode.Open(p.decodeTable, order, decodeOpts)
	if err != nil {
		_ = backend.Close()
		return perrors.NewSetupError("pipeline.open_decoder", err)
	}
	decodeWorker := decode.New(decodeBackend, p.pktQueue, p.framesQueue, logger.WithWorker(p.log, "decoder"))

	filterOpts := p.cfg.Filter
	if filterOpts.Autorotate {
		if chain := filter.AutorotateFilters(rotation); chain != "" {
			if filterOpts.Filters != "" {
				filterOpts.Filters = filterOpts.Filters + "," + chain
			} else {
				filterOpts.Filters = chain
			}
		}
	}
	filterOpts.HasMaxPTS, filterOpts.MaxPTS = p.computeMaxPTS(info)
	filterWorker := filter.New(p.newGraph, filterOpts, p.framesQueue, p.sinkQueue, logger.WithWorker(p.log, "filterer"))

	p.demuxBackend = backend
	p.demuxWorker = demuxWorker
	p.decodeBackend = decodeBackend
	p.decodeKind = kind
	p.decodeWorker = decodeWorker
	p.filterWorker = filterWorker
	p.cachedInfo = info
	p.modulesInit = true
	p.setupErr = nil

	p.log.Debug("modules initialised", "decoder_backend", kind, "duration_us", info.DurationUS, "is_image", info.IsImage)
	return nil
}

// computeMaxPTS resolves the filterer's trim boundary (skip plus trim
// duration) from the configured skip/trim and the probed duration when the
// trim is left auto (<= 0).
func (p *Pipeline) computeMaxPTS(info msg.Info) (bool, int64) {
	trim := p.cfg.TrimDurationUS
	if trim <= 0 {
		trim = info.DurationUS - p.cfg.Skip
	}
	if trim <= 0 {
		return false, 0
	}
	return true, p.cfg.Skip + trim
}

// freeModules closes the demuxer/decoder backends and drops all module
// references.
func (p *Pipeline) freeModules() {
	if p.demuxBackend != nil {
		_ = p.demuxBackend.Close()
	}
	if p.decodeBackend != nil {
		_ = p.decodeBackend.Uninit()
	}
	p.demuxBackend = nil
	p.decodeBackend = nil
	p.demuxWorker = nil
	p.decodeWorker = nil
	p.filterWorker = nil
	p.modulesInit = false
}

// startWorkers launches the three stage workers as goroutines, tracked by
// workersWG so STOP can join them deterministically.
func (p *Pipeline) startWorkers() {
	p.workersWG.Add(3)
	go func() { defer p.workersWG.Done(); p.demuxWorker.Run() }()
	go func() { defer p.workersWG.Done(); p.decodeWorker.Run() }()
	go func() { defer p.workersWG.Done(); p.filterWorker.Run() }()
}
