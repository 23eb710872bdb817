// Command sxplay-demo opens a source with the sxplayer facade and
// text-dumps frame metadata, either at one requested timeline time or
// sequentially through the whole clip. Exit code 0 on success, non-zero on
// any failure.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alxayo/sxplayer-go/internal/logger"
	"github.com/alxayo/sxplayer-go/sxplayer"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.showVersion {
		fmt.Println(version)
		return
	}

	logger.Init()
	if err := logger.SetLevel(cfg.logLevel); err != nil {
		fmt.Printf("Warning: invalid log level %q, using default\n", cfg.logLevel)
	}
	log := logger.Logger().With("component", "cli")

	ctx, err := sxplayer.Create(cfg.source)
	if err != nil {
		log.Error("failed to create playback context", "error", err)
		os.Exit(1)
	}
	if err := ctx.SetOption("skip", cfg.skip); err != nil {
		log.Error("invalid option", "error", err)
		os.Exit(1)
	}
	if err := ctx.SetOption("trim_duration", cfg.trim); err != nil {
		log.Error("invalid option", "error", err)
		os.Exit(1)
	}
	if err := ctx.SetOption("dist_time_seek_trigger", cfg.seekTrigger); err != nil {
		log.Error("invalid option", "error", err)
		os.Exit(1)
	}

	info, err := ctx.GetInfo()
	if err != nil {
		log.Error("failed to get media info", "error", err)
		os.Exit(1)
	}
	log.Info("media opened", "width", info.Width, "height", info.Height, "duration_s", info.DurationS, "is_image", info.IsImage)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- render(runCtx, ctx, cfg) }()

	select {
	case err := <-done:
		closeCtx(log, ctx)
		if err != nil {
			log.Error("render failed", "error", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		select {
		case <-done:
			log.Info("render stopped cleanly")
		case <-shutdownCtx.Done():
			log.Error("forced exit after timeout")
		}
		closeCtx(log, ctx)
	}
}

// render drives the demo loop: either one GetFrame(t) lookup, or a
// sequential GetNextFrame scan, text-dumping every frame's metadata.
func render(runCtx context.Context, ctx *sxplayer.Context, cfg *cliConfig) error {
	if !cfg.sequential && cfg.renderAt >= 0 {
		f, err := ctx.GetFrame(cfg.renderAt)
		if err != nil {
			return err
		}
		if f == nil {
			fmt.Printf("no frame available at t=%.3f\n", cfg.renderAt)
			return nil
		}
		fmt.Printf("frame pts=%d us (%dx%d)\n", f.PTS, f.Width, f.Height)
		sxplayer.ReleaseFrame(f)
		return nil
	}

	for {
		select {
		case <-runCtx.Done():
			return nil
		default:
		}
		f, err := ctx.GetNextFrame()
		if err != nil {
			return err
		}
		if f == nil {
			return nil
		}
		fmt.Printf("frame pts=%d us (%dx%d)\n", f.PTS, f.Width, f.Height)
		sxplayer.ReleaseFrame(f)
	}
}

func closeCtx(log *slog.Logger, ctx *sxplayer.Context) {
	if err := ctx.Free(); err != nil {
		log.Error("failed to free playback context", "error", err)
	}
}
