// Package msg defines the tagged message that flows through every pipeline
// queue (src-queue, pkt-queue, frames-queue, sink-queue, ctl-in-queue,
// ctl-out-queue) plus the Packet/Frame/Info payload types it carries.
//
// A Message owns its payload until it is dequeued into a position that does
// not forward it further, at which point the receiver must call Free so the
// payload's pooled buffers are returned.
package msg

import "github.com/alxayo/sxplayer-go/internal/bufpool"

// Tag identifies the kind of message travelling through a queue.
type Tag int

const (
	TagFrame Tag = iota
	TagPacket
	TagSeek
	TagInfo
	TagStart
	TagStop
	TagSync
)

func (t Tag) String() string {
	switch t {
	case TagFrame:
		return "FRAME"
	case TagPacket:
		return "PACKET"
	case TagSeek:
		return "SEEK"
	case TagInfo:
		return "INFO"
	case TagStart:
		return "START"
	case TagStop:
		return "STOP"
	case TagSync:
		return "SYNC"
	default:
		return "UNKNOWN"
	}
}

// TimeBase is a rational time-base, num/den seconds per tick, as probed
// from the original container stream.
type TimeBase struct {
	Num, Den int
}

// Info is the media info record returned by the facade's GetInfo and by the
// control worker's INFO reply.
type Info struct {
	Width, Height int
	DurationUS    int64 // 0 if unknown
	IsImage       bool
	StreamBase    TimeBase
}

// Packet is an owned, timestamped compressed payload spanning
// demuxer→decoder only.
type Packet struct {
	Payload     []byte
	PTS         int64
	Key         bool
	StreamIndex int
	Duration    int64 // container-reported duration, used when use_pkt_duration is set
}

// release returns the packet's payload buffer to the pool. Safe on nil.
func (p *Packet) release() {
	if p == nil {
		return
	}
	bufpool.Put(p.Payload)
	p.Payload = nil
}

// Frame is a decoded frame in the pipeline's common microsecond time-base.
// Plane data is either raw pixel/sample planes (software decode) or an
// opaque hardware surface handle (HWSurface != nil), never both.
type Frame struct {
	PTS           int64
	Width, Height int
	SampleFormat  string // audio sample format, empty for video
	PixelFormat   string // video pixel format, empty for audio
	Planes        [][]byte
	Linesizes     []int
	HWSurface     any // opaque hardware surface handle (videotoolbox-style backend)
}

// release returns plane buffers to the pool. Hardware surfaces are left for
// the backend's own reference-counted release (see bufcount).
func (f *Frame) release() {
	if f == nil {
		return
	}
	for i, p := range f.Planes {
		bufpool.Put(p)
		f.Planes[i] = nil
	}
	f.Planes = nil
}

// Message is the uniform envelope carried by every bounded queue.
type Message struct {
	Tag    Tag
	Frame  *Frame  // TagFrame
	Packet *Packet // TagPacket
	SeekTS int64   // TagSeek: target presentation timestamp, pipeline time-base
	Info   *Info   // TagInfo
}

// NewFrame wraps a decoded frame as a FRAME message.
func NewFrame(f *Frame) Message { return Message{Tag: TagFrame, Frame: f} }

// NewPacket wraps a compressed packet as a PACKET message.
func NewPacket(p *Packet) Message { return Message{Tag: TagPacket, Packet: p} }

// NewSeek builds a SEEK barrier message targeting ts (pipeline time-base,
// microseconds).
func NewSeek(ts int64) Message { return Message{Tag: TagSeek, SeekTS: ts} }

// NewInfo wraps a media info record as an INFO reply message.
func NewInfo(i *Info) Message { return Message{Tag: TagInfo, Info: i} }

// NewStart, NewStop and NewSync build the empty-payload control messages.
func NewStart() Message { return Message{Tag: TagStart} }
func NewStop() Message  { return Message{Tag: TagStop} }
func NewSync() Message  { return Message{Tag: TagSync} }

// Free releases a message's payload. It is called on every message a queue
// discards during a forced Flush, and must be called by any worker that
// dequeues a message into a position it does not forward further.
func Free(m Message) {
	switch m.Tag {
	case TagFrame:
		m.Frame.release()
	case TagPacket:
		m.Packet.release()
	}
}
