package filter

import (
	"testing"

	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

func TestAutorotateFiltersCoversKnownAngles(t *testing.T) {
	t.Parallel()
	cases := map[int]string{
		90:   "transpose=clock",
		-270: "transpose=clock",
		180:  "vflip,hflip",
		-180: "vflip,hflip",
		270:  "transpose=cclock",
		-90:  "transpose=cclock",
		0:    "",
		45:   "",
	}
	for angle, want := range cases {
		if got := AutorotateFilters(angle); got != want {
			t.Fatalf("angle %d: expected %q, got %q", angle, want, got)
		}
	}
}

func TestPassthroughForwardsVideoFrameUnchanged(t *testing.T) {
	t.Parallel()
	factory := NewGraphFactory()
	sample := &msg.Frame{PixelFormat: "rgb24"}
	g, err := factory(sample, Options{})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	defer g.Close()

	f := &msg.Frame{PTS: 1234, PixelFormat: "rgb24"}
	out, err := g.Push(f)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(out) != 1 || out[0] != f {
		t.Fatalf("expected passthrough to forward the same frame, got %v", out)
	}
}

func TestPassthroughRoutesAudioThroughTexturer(t *testing.T) {
	t.Parallel()
	factory := NewGraphFactory()
	sample := &msg.Frame{SampleFormat: "fltp"}
	g, err := factory(sample, Options{AudioTexture: true})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	defer g.Close()

	audio := &msg.Frame{
		SampleFormat: "fltp",
		Planes:       [][]byte{synthSamples(AudioNBSamples, 440, 44100), synthSamples(AudioNBSamples, 440, 44100)},
	}
	out, err := g.Push(audio)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one output frame, got %d", len(out))
	}
	if out[0].PixelFormat != "grayf32" {
		t.Fatalf("expected audio routed through texturer, got pixel format %q", out[0].PixelFormat)
	}
}

func TestFormatDistinguishesAudioAndVideo(t *testing.T) {
	t.Parallel()
	video := &msg.Frame{PixelFormat: "rgb24"}
	audio := &msg.Frame{SampleFormat: "fltp"}
	if format(video) == format(audio) {
		t.Fatalf("expected distinct format keys for video and audio frames")
	}
	if format(video) != format(&msg.Frame{PixelFormat: "rgb24"}) {
		t.Fatalf("expected same pixel format to produce the same key")
	}
}
