package pipeline

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alxayo/sxplayer-go/internal/player/decode"
	"github.com/alxayo/sxplayer-go/internal/player/demux"
	"github.com/alxayo/sxplayer-go/internal/player/filter"
	"github.com/alxayo/sxplayer-go/internal/player/msg"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestPipeline wires a Pipeline entirely over demux.Synthetic, forcing
// the software decoder backend so the test never depends on a platform's
// hardware path.
func newTestPipeline(t *testing.T, numFrames, fps int, mutate func(*Config)) *Pipeline {
	t.Helper()
	cfg := Config{
		Filename:    "synthetic",
		OpenDemux:   demux.OpenSynthetic(numFrames, fps),
		DecodeTable: decode.Table{decode.KindSoftware: func() decode.Backend { return decode.NewSoftware() }},
		GOOS:        "linux",
		NewGraph:    filter.NewGraphFactory(),
		Log:         discardLogger(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func recvWithTimeout(t *testing.T, p *Pipeline) *msg.Frame {
	t.Helper()
	type result struct {
		f   *msg.Frame
		err error
	}
	ch := make(chan result, 1)
	go func() {
		f, err := p.RecvFrame()
		ch <- result{f, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			t.Fatalf("RecvFrame: %v", r.err)
		}
		return r.f
	case <-time.After(5 * time.Second):
		t.Fatal("RecvFrame timed out")
		return nil
	}
}

func TestStartProducesFramesInOrder(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, 50, 25, nil)

	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.State() != StateRunning {
		t.Fatalf("expected StateRunning, got %s", p.State())
	}

	for i := 0; i < 10; i++ {
		f := recvWithTimeout(t, p)
		want := int64(i) * 1_000_000 / 25
		if f.PTS != want {
			t.Fatalf("frame %d: expected pts %d, got %d", i, want, f.PTS)
		}
		ReleaseFrame(f)
	}
}

func TestStopThenStartRestartsFromBeginning(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, 50, 25, nil)

	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f := recvWithTimeout(t, p)
	ReleaseFrame(f)

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.State() != StateDead {
		t.Fatalf("expected StateDead, got %s", p.State())
	}

	if err := p.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	f2 := recvWithTimeout(t, p)
	if f2.PTS != 0 {
		t.Fatalf("expected restart at pts 0, got %d", f2.PTS)
	}
	ReleaseFrame(f2)
}

func TestSeekWhilePlayingDeliversFramesAtOrPastTarget(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, 500, 25, nil)

	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f := recvWithTimeout(t, p)
	ReleaseFrame(f)

	target := int64(10) * 1_000_000 / 25
	if err := p.Seek(target); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	f2 := recvWithTimeout(t, p)
	if f2.PTS < target {
		t.Fatalf("expected frame at or after seek target %d, got %d", target, f2.PTS)
	}
	ReleaseFrame(f2)
}

func TestGetInfoReportsDuration(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, 100, 25, nil)

	info, err := p.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	want := int64(100) * 1_000_000 / 25
	if info.DurationUS != want {
		t.Fatalf("expected duration %d, got %d", want, info.DurationUS)
	}
}

func TestSeekBeforeStartIsAppliedOnFirstStart(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, 500, 25, nil)

	target := int64(8) * 1_000_000 / 25
	if err := p.Seek(target); err != nil {
		t.Fatalf("Seek before start: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	f := recvWithTimeout(t, p)
	if f.PTS < target {
		t.Fatalf("expected first frame at or after pending seek target %d, got %d", target, f.PTS)
	}
	ReleaseFrame(f)
}

func TestSeekOnStillImageIsDropped(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, 1, 25, nil)

	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f := recvWithTimeout(t, p)
	ReleaseFrame(f)

	// A still image reports DurationUS == 0, so the seek is silently
	// dropped rather than restarting the pipeline.
	if err := p.Seek(1_000_000); err != nil {
		t.Fatalf("Seek on still image: %v", err)
	}
	if p.State() != StateRunning {
		t.Fatalf("expected pipeline to remain Running after a dropped seek, got %s", p.State())
	}
}
