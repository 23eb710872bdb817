package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// version is injected at build time with -ldflags "-X main.version=...". Defaults to dev.
var version = "dev"

// cliConfig holds user supplied flag values prior to translation into
// sxplayer option calls, so main.go can validate and map.
type cliConfig struct {
	source      string
	logLevel    string
	skip        float64
	trim        float64
	seekTrigger float64
	renderAt    float64
	sequential  bool
	showVersion bool
}

func parseFlags(args []string) (*cliConfig, error) {
	fs := flag.NewFlagSet("sxplay-demo", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}

	fs.StringVar(&cfg.source, "source", "synthetic:4096:25", "media source (synthetic:<num_frames>:<fps> in this demo)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.Float64Var(&cfg.skip, "skip", 0, "seconds offset into media treated as t=0")
	fs.Float64Var(&cfg.trim, "trim-duration", -1, "media-length cap in seconds (-1 = auto)")
	fs.Float64Var(&cfg.seekTrigger, "seek-trigger", 1.5, "forward-jump threshold (seconds) triggering a seek")
	fs.Float64Var(&cfg.renderAt, "t", -1, "timeline time (seconds) to render a single frame at; -1 runs sequential mode")
	fs.BoolVar(&cfg.sequential, "sequential", false, "ignore -t and dump frames sequentially until end of stream")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q", cfg.logLevel)
	}
	if cfg.source == "" {
		return nil, errors.New("source must not be empty")
	}

	return cfg, nil
}
