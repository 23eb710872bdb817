// Package filter implements the filterer pipeline stage: lazy filter-graph
// (re)construction on pixel/sample-format change, autorotate,
// audio-to-texture synthesis, and trim-boundary enforcement. Concrete
// filter-graph evaluation lives behind the Graph port.
package filter

import "github.com/alxayo/sxplayer-go/internal/player/msg"

// Options configures the filterer.
type Options struct {
	Filters      string
	SwPixFmt     string
	MaxPixels    int
	AudioTexture bool
	Autorotate   bool
	HasMaxPTS    bool
	MaxPTS       int64 // pipeline time-base, only meaningful if HasMaxPTS
}

// AutorotateFilters returns the filter chain to append for a probed
// rotation in degrees. Empty string if no correction is needed.
func AutorotateFilters(rotationDegrees int) string {
	switch rotationDegrees {
	case 90, -270:
		return "transpose=clock"
	case 180, -180:
		return "vflip,hflip"
	case 270, -90:
		return "transpose=cclock"
	default:
		return ""
	}
}

// Graph is the filter-graph port: apply one frame's worth of transform
// (scale/pixel-format conversion/user filters/autorotate), returning zero or
// more output frames (a real libavfilter graph can buffer internally).
// PixelFormat/SampleFormat changing between calls signals the worker to
// rebuild the graph before the next Push.
type Graph interface {
	Push(f *msg.Frame) ([]*msg.Frame, error)
	Close()
}

// GraphFactory builds a Graph for the frame format described by sample, the
// way setup_filtergraph() does on first use and on every format change.
type GraphFactory func(sample *msg.Frame, opts Options) (Graph, error)
