package demux

import (
	"encoding/binary"
	"io"

	perrors "github.com/alxayo/sxplayer-go/internal/errors"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

// FrameIndexSize is the packet payload size used by Synthetic: a single
// big-endian uint32 frame index. internal/player/decode's software backend
// decodes this exact format into a colored test frame.
const FrameIndexSize = 4

// KeyframeInterval is the distance between synthesized keyframes.
const KeyframeInterval = 25

// Synthetic is a deterministic, dependency-free stand-in for a real
// container demuxer: it manufactures NumFrames packets at FPS frames per
// second, each payload carrying just the frame's index, so the decoder's
// software backend can reconstruct a colored test clip encoding frame-id
// as RGB without needing an actual media file or codec.
type Synthetic struct {
	NumFrames int
	FPS       int

	next int
}

// NewSynthetic builds a Synthetic backend with the given frame count and
// frame rate.
func NewSynthetic(numFrames, fps int) *Synthetic {
	return &Synthetic{NumFrames: numFrames, FPS: fps}
}

// pts returns the pipeline-timebase (microsecond) PTS for frame index i.
func (s *Synthetic) pts(i int) int64 {
	return int64(i) * 1_000_000 / int64(s.FPS)
}

func (s *Synthetic) ReadPacket() (*msg.Packet, error) {
	if s.next >= s.NumFrames {
		return nil, io.EOF
	}
	idx := s.next
	s.next++

	payload := make([]byte, FrameIndexSize)
	binary.BigEndian.PutUint32(payload, uint32(idx))

	return &msg.Packet{
		Payload:     payload,
		PTS:         s.pts(idx),
		Key:         idx%KeyframeInterval == 0,
		StreamIndex: 0,
	}, nil
}

// Seek moves the read cursor to the nearest keyframe at or before
// targetPTS; the decoder refines the remainder by dropping decoded frames
// before the target.
func (s *Synthetic) Seek(targetPTS int64) error {
	if targetPTS < 0 {
		targetPTS = 0
	}
	target := int(targetPTS * int64(s.FPS) / 1_000_000)
	if target >= s.NumFrames {
		target = s.NumFrames - 1
	}
	kf := (target / KeyframeInterval) * KeyframeInterval
	s.next = kf
	return nil
}

func (s *Synthetic) Close() error { return nil }

// ProbeDuration reports 0 for a single-frame clip, matching how a real
// backend reports an unknown duration for an image file.
func (s *Synthetic) ProbeDuration() int64 {
	if s.FPS == 0 || s.NumFrames <= 1 {
		return 0
	}
	return s.pts(s.NumFrames)
}

func (s *Synthetic) ProbeRotation() int { return 0 }
func (s *Synthetic) StreamIndex() int   { return 0 }
func (s *Synthetic) IsImage() bool      { return s.NumFrames == 1 }

func (s *Synthetic) Info() msg.Info {
	return msg.Info{
		Width:      64,
		Height:     64,
		DurationUS: s.ProbeDuration(),
		IsImage:    s.IsImage(),
		StreamBase: msg.TimeBase{Num: 1, Den: s.FPS},
	}
}

// OpenSynthetic adapts NewSynthetic to the OpenFunc signature so it can be
// wired directly into pipeline construction for tests/demos. path and opts
// are accepted for signature compatibility but ignored (the clip shape is
// fixed at construction time via a closure).
func OpenSynthetic(numFrames, fps int) OpenFunc {
	return func(_ string, _ Options) (Backend, error) {
		if numFrames <= 0 || fps <= 0 {
			return nil, perrors.NewSetupError("demux.open_synthetic", nil)
		}
		return NewSynthetic(numFrames, fps), nil
	}
}
