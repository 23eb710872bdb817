// Package decode implements the decoder worker: a backend-agnostic port
// with platform-preference backend selection and single-level fallback,
// plus the queueFrame seek-refinement policy that turns a
// keyframe-granularity container seek into frame-accurate delivery.
// Software decodes the demux package's Synthetic packet format;
// VideoToolbox models a hardware backend's out-of-order completion,
// PTS reordering and in-flight back-pressure.
package decode

import "github.com/alxayo/sxplayer-go/internal/player/msg"

// EmitFunc is the backend-to-worker callback a backend invokes zero or more
// times per pushed packet. A nil frame signals end-of-batch during Drain.
type EmitFunc func(frame *msg.Frame)

// Options configures backend Init.
type Options struct {
	AVSelect       string
	AutoHwaccel    bool
	Filters        string
	Autorotate     bool
	ExportMVs      bool
	UsePktDuration bool
}

// HwaccelDisabled reports whether options force software-only decoding:
// user filters, autorotate and motion-vector export all require software
// frames.
func (o Options) HwaccelDisabled() bool {
	return o.Filters != "" || o.Autorotate || o.ExportMVs
}

// Backend is the decoder port: push compressed packets, get decoded frames
// back through EmitFunc, flush on seek, drain+uninit at end of stream.
type Backend interface {
	Init(opts Options) error
	PushPacket(pkt *msg.Packet, emit EmitFunc) error
	// Drain pushes one internal "flush packet" worth of buffered frames to
	// emit, calling emit(nil) exactly once it has nothing left buffered.
	Drain(emit EmitFunc) error
	Flush() error
	Uninit() error
}

// Kind names a concrete backend for the preference table.
type Kind int

const (
	KindSoftware Kind = iota
	KindVideoToolbox
)

func (k Kind) String() string {
	if k == KindVideoToolbox {
		return "videotoolbox"
	}
	return "software"
}

// Table maps backend kinds to constructors.
type Table map[Kind]func() Backend

// DefaultTable wires the two backends this repo ships.
func DefaultTable() Table {
	return Table{
		KindSoftware:     func() Backend { return NewSoftware() },
		KindVideoToolbox: func() Backend { return NewVideoToolbox() },
	}
}

// PreferenceOrder returns the backend trial order for goos: Apple targets
// prefer hardware with software fallback, elsewhere software first.
// Hardware is omitted entirely when auto-hwaccel is off or
// HwaccelDisabled() is true.
func PreferenceOrder(goos string, opts Options) []Kind {
	if !opts.AutoHwaccel || opts.HwaccelDisabled() {
		return []Kind{KindSoftware}
	}
	if goos == "darwin" {
		return []Kind{KindVideoToolbox, KindSoftware}
	}
	return []Kind{KindSoftware, KindVideoToolbox}
}
