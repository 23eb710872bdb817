package sxplayer

import "testing"

func TestCreateGetInfoAndPlayback(t *testing.T) {
	t.Parallel()
	ctx, err := Create("synthetic:100:25")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ctx.Free()

	if err := ctx.SetOption("dist_time_seek_trigger", 1.5); err != nil {
		t.Fatalf("SetOption: %v", err)
	}

	info, err := ctx.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info.Width != 64 || info.Height != 64 {
		t.Fatalf("unexpected dimensions: %+v", info)
	}
	wantDuration := float64(100) / 25
	if info.DurationS != wantDuration {
		t.Fatalf("expected duration %v, got %v", wantDuration, info.DurationS)
	}

	var got int
	for {
		f, err := ctx.GetNextFrame()
		if err != nil {
			t.Fatalf("GetNextFrame: %v", err)
		}
		if f == nil {
			break
		}
		got++
		ReleaseFrame(f)
	}
	if got != 100 {
		t.Fatalf("expected 100 frames, got %d", got)
	}
}

func TestSetOptionAfterBuildFails(t *testing.T) {
	t.Parallel()
	ctx, err := Create("synthetic:10:25")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ctx.Free()

	if _, err := ctx.GetInfo(); err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if err := ctx.SetOption("skip", 1.0); err == nil {
		t.Fatal("expected SetOption to fail after pipeline construction")
	}
}

func TestSetOptionUnknownKey(t *testing.T) {
	t.Parallel()
	ctx, err := Create("synthetic:10:25")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ctx.Free()

	if err := ctx.SetOption("not_a_real_option", 1); err == nil {
		t.Fatal("expected error for unknown option key")
	}
}

func TestCreateRejectsUnsupportedSource(t *testing.T) {
	t.Parallel()
	ctx, err := Create("/tmp/some-real-file.mp4")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ctx.Free()

	if _, err := ctx.GetInfo(); err == nil {
		t.Fatal("expected GetInfo to fail for an unsupported source")
	}
}
