package sxplayer

// Options collects every configurable playback option into one plain
// struct, with SetOption providing the key/value surface on top of it.
type Options struct {
	AVSelect  string // "video" or "audio"
	StreamIdx int    // explicit stream index, -1 for best

	SkipSeconds float64 // offset into media treated as t=0
	// TrimDurationSeconds caps media length; -1 (or any value <= 0) means
	// "auto: derive from the probed duration".
	TrimDurationSeconds float64

	DistTimeSeekTriggerSeconds float64

	MaxNbPackets int
	MaxNbFrames  int
	MaxNbSink    int

	Filters         string
	SwPixFmt        string
	Autorotate      bool
	AutoHwaccel     bool
	ExportMVs       bool
	PktSkipMod      int
	ThreadStackSize int
	AudioTexture    bool
	MaxPixels       int
	UsePktDuration  bool
}

// applyDefaults fills unset fields with their defaults.
func (o *Options) applyDefaults() {
	if o.AVSelect == "" {
		o.AVSelect = "video"
	}
	if o.StreamIdx == 0 {
		o.StreamIdx = -1
	}
	if o.TrimDurationSeconds == 0 {
		o.TrimDurationSeconds = -1
	}
	if o.DistTimeSeekTriggerSeconds <= 0 {
		o.DistTimeSeekTriggerSeconds = 1.5
	}
	if o.MaxNbPackets <= 0 {
		o.MaxNbPackets = 8
	}
	if o.MaxNbFrames <= 0 {
		o.MaxNbFrames = 8
	}
	if o.MaxNbSink <= 0 {
		o.MaxNbSink = 8
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = 1280 * 720
	}
}

// SetOption mutates a single option by key name. It returns an error if
// ctx's pipeline has already been built (Start/GetInfo/GetFrame/Seek/
// GetNextFrame already called once); options only take effect before first
// use.
func (ctx *Context) SetOption(key string, value any) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.built {
		return newOptionError(key, "option set after pipeline construction")
	}

	switch key {
	case "avselect":
		s, ok := value.(string)
		if !ok {
			return newOptionError(key, "expected string")
		}
		ctx.opts.AVSelect = s
	case "stream_idx":
		n, ok := asInt(value)
		if !ok {
			return newOptionError(key, "expected int")
		}
		ctx.opts.StreamIdx = n
	case "skip":
		f, ok := asFloat(value)
		if !ok {
			return newOptionError(key, "expected float seconds")
		}
		ctx.opts.SkipSeconds = f
	case "trim_duration":
		f, ok := asFloat(value)
		if !ok {
			return newOptionError(key, "expected float seconds")
		}
		ctx.opts.TrimDurationSeconds = f
	case "dist_time_seek_trigger":
		f, ok := asFloat(value)
		if !ok {
			return newOptionError(key, "expected float seconds")
		}
		ctx.opts.DistTimeSeekTriggerSeconds = f
	case "max_nb_packets":
		n, ok := asInt(value)
		if !ok {
			return newOptionError(key, "expected int")
		}
		ctx.opts.MaxNbPackets = n
	case "max_nb_frames":
		n, ok := asInt(value)
		if !ok {
			return newOptionError(key, "expected int")
		}
		ctx.opts.MaxNbFrames = n
	case "max_nb_sink":
		n, ok := asInt(value)
		if !ok {
			return newOptionError(key, "expected int")
		}
		ctx.opts.MaxNbSink = n
	case "filters":
		s, ok := value.(string)
		if !ok {
			return newOptionError(key, "expected string")
		}
		ctx.opts.Filters = s
	case "sw_pix_fmt":
		s, ok := value.(string)
		if !ok {
			return newOptionError(key, "expected string")
		}
		ctx.opts.SwPixFmt = s
	case "autorotate":
		b, ok := value.(bool)
		if !ok {
			return newOptionError(key, "expected bool")
		}
		ctx.opts.Autorotate = b
	case "auto_hwaccel":
		b, ok := value.(bool)
		if !ok {
			return newOptionError(key, "expected bool")
		}
		ctx.opts.AutoHwaccel = b
	case "export_mvs":
		b, ok := value.(bool)
		if !ok {
			return newOptionError(key, "expected bool")
		}
		ctx.opts.ExportMVs = b
	case "pkt_skip_mod":
		n, ok := asInt(value)
		if !ok {
			return newOptionError(key, "expected int")
		}
		ctx.opts.PktSkipMod = n
	case "thread_stack_size":
		n, ok := asInt(value)
		if !ok {
			return newOptionError(key, "expected int")
		}
		ctx.opts.ThreadStackSize = n
	case "audio_texture":
		b, ok := value.(bool)
		if !ok {
			return newOptionError(key, "expected bool")
		}
		ctx.opts.AudioTexture = b
	case "max_pixels":
		n, ok := asInt(value)
		if !ok {
			return newOptionError(key, "expected int")
		}
		ctx.opts.MaxPixels = n
	case "use_pkt_duration":
		b, ok := value.(bool)
		if !ok {
			return newOptionError(key, "expected bool")
		}
		ctx.opts.UsePktDuration = b
	default:
		return newOptionError(key, "unknown option")
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
