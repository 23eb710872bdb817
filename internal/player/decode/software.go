package decode

import (
	"encoding/binary"

	"github.com/alxayo/sxplayer-go/internal/bufpool"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

// frameWidth/frameHeight match demux.Synthetic.Info()'s fixed dimensions.
const (
	frameWidth  = 64
	frameHeight = 64
)

// Software decodes demux.Synthetic's 4-byte frame-index packets into a
// single-plane RGB frame whose color encodes the index. It never buffers or
// reorders: one packet in, one frame out.
type Software struct {
	opts Options
}

func NewSoftware() *Software { return &Software{} }

func (s *Software) Init(opts Options) error {
	s.opts = opts
	return nil
}

func (s *Software) PushPacket(pkt *msg.Packet, emit EmitFunc) error {
	if len(pkt.Payload) < 4 {
		return errInvalidPayload
	}
	idx := binary.BigEndian.Uint32(pkt.Payload)

	plane := bufpool.Get(frameWidth * frameHeight * 3)
	r, g, b := byte(idx), byte(idx>>8), byte(idx>>16)
	for i := 0; i < frameWidth*frameHeight; i++ {
		plane[i*3] = r
		plane[i*3+1] = g
		plane[i*3+2] = b
	}

	emit(&msg.Frame{
		PTS:         pkt.PTS,
		Width:       frameWidth,
		Height:      frameHeight,
		PixelFormat: "rgb24",
		Planes:      [][]byte{plane},
		Linesizes:   []int{frameWidth * 3},
	})
	return nil
}

// Drain has nothing buffered; it always signals end-of-batch immediately.
func (s *Software) Drain(emit EmitFunc) error {
	emit(nil)
	return nil
}

func (s *Software) Flush() error  { return nil }
func (s *Software) Uninit() error { return nil }
