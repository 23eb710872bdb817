// Package sxplayer is the public facade: the thin option-bag and pipeline
// wiring embedders actually call. It assembles an
// internal/player/pipeline.Pipeline and an internal/player/client.Client
// behind a create/set-option/get-frame/seek/start/stop/free surface.
package sxplayer

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	perrors "github.com/alxayo/sxplayer-go/internal/errors"
	"github.com/alxayo/sxplayer-go/internal/logger"
	"github.com/alxayo/sxplayer-go/internal/player/client"
	"github.com/alxayo/sxplayer-go/internal/player/decode"
	"github.com/alxayo/sxplayer-go/internal/player/demux"
	"github.com/alxayo/sxplayer-go/internal/player/filter"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
	"github.com/alxayo/sxplayer-go/internal/player/pipeline"
)

// Info is the media info record returned by GetInfo.
type Info struct {
	Width, Height int
	DurationS     float64
	IsImage       bool
	TimeBaseNum   int
	TimeBaseDen   int
}

// Context is a single playback session: one file, one option set, one
// lazily-constructed pipeline and position-cache client.
type Context struct {
	filename  string
	openDemux demux.OpenFunc

	mu    sync.Mutex
	opts  Options
	built bool

	pipe *pipeline.Pipeline
	cl   *client.Client
}

// Create opens a playback session for filename using the in-repo synthetic
// demuxer backend. filename is interpreted as "synthetic:<num_frames>:<fps>";
// any other value fails module init with a setup error once the pipeline is
// built. Embedders wiring a real demuxer backend should use CreateWithDemux
// instead.
func Create(filename string) (*Context, error) {
	return CreateWithDemux(filename, defaultOpenDemux)
}

// CreateWithDemux opens a playback session for filename against a
// caller-supplied demuxer backend.
func CreateWithDemux(filename string, openDemux demux.OpenFunc) (*Context, error) {
	if openDemux == nil {
		return nil, perrors.NewSetupError("sxplayer.create", nil)
	}
	ctx := &Context{filename: filename, openDemux: openDemux}
	ctx.opts.applyDefaults()
	return ctx, nil
}

// defaultOpenDemux recognises the "synthetic:<num_frames>:<fps>" test-clip
// spec used throughout this repo's own tests and demo; any other filename
// is rejected since no real container backend ships in core scope.
func defaultOpenDemux(path string, opts demux.Options) (demux.Backend, error) {
	const prefix = "synthetic:"
	if !strings.HasPrefix(path, prefix) {
		return nil, perrors.NewSetupError("sxplayer.open", fmt.Errorf("no demuxer backend for %q", path))
	}
	parts := strings.Split(strings.TrimPrefix(path, prefix), ":")
	if len(parts) != 2 {
		return nil, perrors.NewSetupError("sxplayer.open", fmt.Errorf("malformed synthetic spec %q", path))
	}
	numFrames, err1 := strconv.Atoi(parts[0])
	fps, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, perrors.NewSetupError("sxplayer.open", fmt.Errorf("malformed synthetic spec %q", path))
	}
	return demux.OpenSynthetic(numFrames, fps)(path, opts)
}

// ensureBuilt lazily assembles the pipeline and client from the
// accumulated Options on the first operation that needs them, and freezes
// further SetOption calls.
func (ctx *Context) ensureBuilt() error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.built {
		return nil
	}

	o := ctx.opts
	pcfg := pipeline.Config{
		Filename:  ctx.filename,
		OpenDemux: ctx.openDemux,
		GOOS:      "",
		Demux: demux.Options{
			AVSelect:   o.AVSelect,
			StreamIdx:  o.StreamIdx,
			PktSkipMod: o.PktSkipMod,
		},
		Decode: decode.Options{
			AVSelect:       o.AVSelect,
			AutoHwaccel:    o.AutoHwaccel,
			Filters:        o.Filters,
			Autorotate:     o.Autorotate,
			ExportMVs:      o.ExportMVs,
			UsePktDuration: o.UsePktDuration,
		},
		Filter: filter.Options{
			Filters:      o.Filters,
			SwPixFmt:     o.SwPixFmt,
			MaxPixels:    o.MaxPixels,
			AudioTexture: o.AudioTexture,
			Autorotate:   o.Autorotate,
		},
		Queues: pipeline.QueueCapacities{
			PktQueue:    o.MaxNbPackets,
			FramesQueue: o.MaxNbFrames,
			SinkQueue:   o.MaxNbSink,
		},
		Skip:            int64(o.SkipSeconds * 1e6),
		ThreadStackSize: o.ThreadStackSize,
		Log:             logger.Logger(),
	}
	if o.TrimDurationSeconds > 0 {
		pcfg.TrimDurationUS = int64(o.TrimDurationSeconds * 1e6)
	}

	p, err := pipeline.New(pcfg)
	if err != nil {
		return err
	}

	ccfg := client.Config{
		SkipUS:                pcfg.Skip,
		DistTimeSeekTriggerUS: int64(o.DistTimeSeekTriggerSeconds * 1e6),
	}
	if o.TrimDurationSeconds > 0 {
		ccfg.HasTrim = true
		ccfg.TrimDurationUS = pcfg.TrimDurationUS
	} else if info, err := p.GetInfo(); err == nil && info.DurationUS > pcfg.Skip {
		// Auto trim: derive the cap from the probed duration. A still image
		// (or unknown duration) leaves HasTrim false, which is what drives
		// the client's single-frame behavior for images.
		ccfg.HasTrim = true
		ccfg.TrimDurationUS = info.DurationUS - pcfg.Skip
	}

	ctx.pipe = p
	ctx.cl = client.New(p, ccfg)
	ctx.built = true
	return nil
}

// GetInfo returns the media info record. It triggers module init (lazily)
// but does not advance the pipeline clock.
func (ctx *Context) GetInfo() (Info, error) {
	if err := ctx.ensureBuilt(); err != nil {
		return Info{}, err
	}
	info, err := ctx.pipe.GetInfo()
	if err != nil {
		return Info{}, err
	}
	return Info{
		Width:       info.Width,
		Height:      info.Height,
		DurationS:   float64(info.DurationUS) / 1e6,
		IsImage:     info.IsImage,
		TimeBaseNum: info.StreamBase.Num,
		TimeBaseDen: info.StreamBase.Den,
	}, nil
}

// GetFrame returns the frame closest to timeline time tSeconds, or nil if
// none is newly available.
func (ctx *Context) GetFrame(tSeconds float64) (*msg.Frame, error) {
	if err := ctx.ensureBuilt(); err != nil {
		return nil, err
	}
	return ctx.cl.GetFrame(tSeconds)
}

// GetNextFrame pops the next frame in sequential mode.
func (ctx *Context) GetNextFrame() (*msg.Frame, error) {
	if err := ctx.ensureBuilt(); err != nil {
		return nil, err
	}
	return ctx.cl.GetNextFrame()
}

// ReleaseFrame returns a frame's buffers to the pool. Call exactly once per
// non-nil frame returned by GetFrame/GetNextFrame.
func ReleaseFrame(f *msg.Frame) { pipeline.ReleaseFrame(f) }

// Seek issues an explicit seek to tSeconds.
func (ctx *Context) Seek(tSeconds float64) error {
	if err := ctx.ensureBuilt(); err != nil {
		return err
	}
	return ctx.cl.Seek(tSeconds)
}

// Start ensures the pipeline is running.
func (ctx *Context) Start() error {
	if err := ctx.ensureBuilt(); err != nil {
		return err
	}
	return ctx.cl.Start()
}

// Stop tears the pipeline down; a later call restarts it from scratch.
func (ctx *Context) Stop() error {
	if err := ctx.ensureBuilt(); err != nil {
		return err
	}
	return ctx.cl.Stop()
}

// Free releases the context's pipeline resources. The Context must not be
// used after Free returns.
func (ctx *Context) Free() error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if !ctx.built {
		return nil
	}
	return ctx.pipe.Close()
}

// SetLogCallback routes every subsequent log record to fn instead of the
// process-wide JSON sink. Passing a nil fn restores the default sink.
func SetLogCallback(fn func(level string, message string)) {
	logger.SetCallback(fn)
}

// SetLogLevel adjusts the global log level at runtime.
func SetLogLevel(level string) error { return logger.SetLevel(level) }
