// Package errors defines the pipeline's error taxonomy: a family of small
// wrapped-error types sharing an {Op, Err} shape plus classification
// helpers, in the style this codebase has always used for layered errors.
package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"
)

// Code is the small ABI-stable error code surfaced at the facade boundary.
type Code int

const (
	CodeGeneric Code = iota
	CodeNoMem
	CodeEOS
	CodeExit
	CodeDecoderNotFound
	CodeInvalidData
	CodeNotSupported
)

func (c Code) String() string {
	switch c {
	case CodeGeneric:
		return "generic failure"
	case CodeNoMem:
		return "out of memory"
	case CodeEOS:
		return "end of stream"
	case CodeExit:
		return "exit requested"
	case CodeDecoderNotFound:
		return "decoder not found"
	case CodeInvalidData:
		return "invalid data"
	case CodeNotSupported:
		return "not supported"
	default:
		return "unknown error code"
	}
}

// pipelineMarker is implemented by all pipeline-layer error types so we can
// classify them collectively with IsPipelineError.
type pipelineMarker interface {
	error
	isPipeline()
}

// SetupError reports a synchronous failure establishing the pipeline:
// file not found, unsupported container, no matching stream, decoder init
// failure with no fallback.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("setup error: %s", e.Op)
	}
	return fmt.Sprintf("setup error: %s: %v", e.Op, e.Err)
}
func (e *SetupError) Unwrap() error { return e.Err }
func (e *SetupError) isPipeline()   {}

// DemuxError reports a failure in the demuxer worker (container read, probe,
// container-level seek).
type DemuxError struct {
	Op  string
	Err error
}

func (e *DemuxError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("demux error: %s", e.Op)
	}
	return fmt.Sprintf("demux error: %s: %v", e.Op, e.Err)
}
func (e *DemuxError) Unwrap() error { return e.Err }
func (e *DemuxError) isPipeline()   {}

// DecodeError reports a failure in the decoder worker or a decoder backend.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode error: %s", e.Op)
	}
	return fmt.Sprintf("decode error: %s: %v", e.Op, e.Err)
}
func (e *DecodeError) Unwrap() error { return e.Err }
func (e *DecodeError) isPipeline()   {}

// FilterError reports a failure in the filterer worker or filter graph.
type FilterError struct {
	Op  string
	Err error
}

func (e *FilterError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("filter error: %s", e.Op)
	}
	return fmt.Sprintf("filter error: %s: %v", e.Op, e.Err)
}
func (e *FilterError) Unwrap() error { return e.Err }
func (e *FilterError) isPipeline()   {}

// SeekError reports a seek the demuxer backend could not honour (e.g. a
// still image or unknown duration); callers treat it as a no-op rather
// than a fatal failure, but the type exists so callers that care can
// detect it via errors.As.
type SeekError struct {
	Op  string
	Err error
}

func (e *SeekError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("seek error: %s", e.Op)
	}
	return fmt.Sprintf("seek error: %s: %v", e.Op, e.Err)
}
func (e *SeekError) Unwrap() error { return e.Err }
func (e *SeekError) isPipeline()   {}

// QueueError reports a bounded-queue send/recv observing a latched error;
// it carries the ABI Code that produced the latch.
type QueueError struct {
	Op   string
	Code Code
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("queue error: %s: %s", e.Op, e.Code)
}
func (e *QueueError) isPipeline() {}

// TimeoutError indicates an operation exceeded a deadline or idle timeout.
type TimeoutError struct {
	Op       string
	Duration time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (after %s)", e.Op, e.Duration)
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return base
}
func (e *TimeoutError) Unwrap() error { return e.Err }

// IsTimeout returns true if err is (or wraps) a TimeoutError, a context
// deadline exceeded, or any error type that exposes Timeout() bool and
// returns true.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if stdErrors.As(err, &te) {
		return true
	}
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var toErr interface{ Timeout() bool }
	if stdErrors.As(err, &toErr) && toErr.Timeout() {
		return true
	}
	return false
}

// IsPipelineError returns true if the error chain contains any pipeline-layer
// error (SetupError, DemuxError, DecodeError, FilterError, SeekError,
// QueueError).
func IsPipelineError(err error) bool {
	if err == nil {
		return false
	}
	var pm pipelineMarker
	return stdErrors.As(err, &pm)
}

// QueueErrorCode extracts the ABI Code from err if it is (or wraps) a
// *QueueError, returning (code, true); otherwise (CodeGeneric, false).
func QueueErrorCode(err error) (Code, bool) {
	var qe *QueueError
	if stdErrors.As(err, &qe) {
		return qe.Code, true
	}
	return CodeGeneric, false
}

// Constructors (encourage contextual wrapping with %w when used by callers).
func NewSetupError(op string, cause error) error  { return &SetupError{Op: op, Err: cause} }
func NewDemuxError(op string, cause error) error  { return &DemuxError{Op: op, Err: cause} }
func NewDecodeError(op string, cause error) error { return &DecodeError{Op: op, Err: cause} }
func NewFilterError(op string, cause error) error { return &FilterError{Op: op, Err: cause} }
func NewSeekError(op string, cause error) error   { return &SeekError{Op: op, Err: cause} }
func NewQueueError(op string, code Code) error    { return &QueueError{Op: op, Code: code} }
func NewTimeoutError(op string, d time.Duration, cause error) error {
	return &TimeoutError{Op: op, Duration: d, Err: cause}
}

// Usage pattern example:
//  if n, err := backend.ReadPacket(handle); err != nil {
//      return NewDemuxError("read_packet", fmt.Errorf("container: %w", err))
//  }
// Keep layering context with fmt.Errorf("...: %w", err).
