package filter

import (
	"fmt"

	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

// Passthrough is the stand-in Graph used when no real libavfilter binding is
// available: it forwards frames unchanged (scale/pixel-format conversion
// and user filter chains are not applied), while still exercising the
// worker's lazy rebuild-on-format-change and autorotate-chain-selection
// logic. audioTexture, when set,
// converts audio frames via AudioTexturer instead of forwarding them as-is.
type Passthrough struct {
	chain        string
	audioTexture *AudioTexturer
}

// NewGraphFactory builds the GraphFactory the worker uses: the resulting
// Passthrough records opts.Filters (plus any autorotate chain already
// folded into it by the caller) without applying it, and runs audio-texture
// synthesis when opts.AudioTexture is set and the sample frame carries
// audio.
func NewGraphFactory() GraphFactory {
	return func(sample *msg.Frame, opts Options) (Graph, error) {
		g := &Passthrough{chain: opts.Filters}
		if opts.AudioTexture && sample.SampleFormat != "" {
			g.audioTexture = NewAudioTexturer()
		}
		return g, nil
	}
}

func (p *Passthrough) Push(f *msg.Frame) ([]*msg.Frame, error) {
	if p.audioTexture != nil && f.SampleFormat != "" {
		return []*msg.Frame{p.audioTexture.Texture(f)}, nil
	}
	return []*msg.Frame{f}, nil
}

func (p *Passthrough) Close() {}

// format reports the comparison key used to detect a format change that
// forces a graph rebuild.
func format(f *msg.Frame) string {
	if f.SampleFormat != "" {
		return fmt.Sprintf("audio:%s", f.SampleFormat)
	}
	return fmt.Sprintf("video:%s", f.PixelFormat)
}
