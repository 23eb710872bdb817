package decode

import (
	"encoding/binary"
	"sort"

	"github.com/alxayo/sxplayer-go/internal/bufpool"
	"github.com/alxayo/sxplayer-go/internal/player/bufcount"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

// reorderWindow is how many frames VideoToolbox holds before it starts
// popping the earliest-PTS one, simulating a hardware decoder that
// completes frames out of submission order. Kept at 1 so the steady-state
// in-flight count (one held for reordering, one just acquired) stays safely
// under bufcount.MinBuf's concurrency ceiling.
const reorderWindow = 1

// VideoToolbox models a platform hardware-decoder backend: it bounds
// frames in flight with a bufcount.Counter at bufcount.MinBuf, and reorders
// frames by PTS before handing them to the emit callback, the way a real
// hardware decoder's completion order diverges from submission order. No
// actual hardware path exists in this repo; PushPacket decodes
// synchronously like Software but defers emission until the reorder window
// fills.
type VideoToolbox struct {
	counter *bufcount.Counter
	pending []*msg.Frame
}

func NewVideoToolbox() *VideoToolbox { return &VideoToolbox{} }

func (v *VideoToolbox) Init(opts Options) error {
	if opts.AVSelect == "audio" {
		return errDecoderNotFound
	}
	c, err := bufcount.New(bufcount.MinBuf)
	if err != nil {
		return err
	}
	v.counter = c
	return nil
}

func (v *VideoToolbox) PushPacket(pkt *msg.Packet, emit EmitFunc) error {
	if len(pkt.Payload) < 4 {
		return errInvalidPayload
	}
	idx := binary.BigEndian.Uint32(pkt.Payload)

	v.counter.Acquire()

	plane := bufpool.Get(frameWidth * frameHeight * 3)
	r, g, b := byte(idx), byte(idx>>8), byte(idx>>16)
	for i := 0; i < frameWidth*frameHeight; i++ {
		plane[i*3] = r
		plane[i*3+1] = g
		plane[i*3+2] = b
	}

	v.pending = append(v.pending, &msg.Frame{
		PTS:         pkt.PTS,
		Width:       frameWidth,
		Height:      frameHeight,
		PixelFormat: "nv12",
		Planes:      [][]byte{plane},
		Linesizes:   []int{frameWidth * 3},
	})
	sort.Slice(v.pending, func(i, j int) bool { return v.pending[i].PTS < v.pending[j].PTS })

	for len(v.pending) > reorderWindow {
		f := v.pending[0]
		v.pending = v.pending[1:]
		v.counter.Release()
		emit(f)
	}
	return nil
}

// Drain pops one buffered frame per call, releasing its counter slot, and
// signals end-of-batch with emit(nil) once empty.
func (v *VideoToolbox) Drain(emit EmitFunc) error {
	if len(v.pending) == 0 {
		emit(nil)
		return nil
	}
	f := v.pending[0]
	v.pending = v.pending[1:]
	v.counter.Release()
	emit(f)
	return nil
}

// Flush discards buffered frames without emitting them; a seek invalidates
// in-flight decode state.
func (v *VideoToolbox) Flush() error {
	for _, f := range v.pending {
		v.counter.Release()
		msg.Free(msg.NewFrame(f))
	}
	v.pending = nil
	return nil
}

func (v *VideoToolbox) Uninit() error {
	return v.Flush()
}
