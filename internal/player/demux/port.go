// Package demux implements the demuxer worker: it owns a demuxer backend
// port, reads packets for one selected stream, answers seek requests pulled
// off src-queue, and forwards PACKET/SEEK messages onto pkt-queue. Concrete
// container parsing lives behind the Backend port; Synthetic is the in-repo
// stand-in that manufactures a deterministic colored test clip.
package demux

import (
	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

// Options configures backend construction.
type Options struct {
	AVSelect   string // "video" or "audio"
	StreamIdx  int    // explicit stream index, -1 for "best"
	PktSkipMod int    // packet sub-sampling modulus, 0/1 disables
}

// Backend is the demuxer port consumed by Worker: open a container, read
// timestamped compressed packets for the selected stream, and answer
// container-level seeks. ReadPacket returns io.EOF when the container is
// exhausted. Implementations need not be goroutine-safe; the worker is
// their only caller.
type Backend interface {
	ReadPacket() (*msg.Packet, error)
	Seek(targetPTS int64) error
	Close() error

	ProbeDuration() int64 // microseconds, 0 if unknown
	ProbeRotation() int   // degrees, one of 0/90/180/270/-90/-180/-270
	StreamIndex() int
	IsImage() bool
	Info() msg.Info
}

// OpenFunc constructs a Backend for path with the given options.
type OpenFunc func(path string, opts Options) (Backend, error)
