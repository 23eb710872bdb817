package sxplayer

import (
	perrors "github.com/alxayo/sxplayer-go/internal/errors"
)

// ErrorCode is the ABI-stable signed error code surfaced at the facade
// boundary; no strings are part of the ABI. Values mirror
// internal/errors.Code.
type ErrorCode int

const (
	ErrorGeneric         ErrorCode = ErrorCode(perrors.CodeGeneric)
	ErrorNoMem           ErrorCode = ErrorCode(perrors.CodeNoMem)
	ErrorEOS             ErrorCode = ErrorCode(perrors.CodeEOS)
	ErrorExit            ErrorCode = ErrorCode(perrors.CodeExit)
	ErrorDecoderNotFound ErrorCode = ErrorCode(perrors.CodeDecoderNotFound)
	ErrorInvalidData     ErrorCode = ErrorCode(perrors.CodeInvalidData)
	ErrorNotSupported    ErrorCode = ErrorCode(perrors.CodeNotSupported)
)

func (c ErrorCode) String() string { return perrors.Code(c).String() }

// CodeOf extracts the ABI ErrorCode carried by err, if any (a wrapped
// *errors.QueueError), returning (ErrorGeneric, false) otherwise.
func CodeOf(err error) (ErrorCode, bool) {
	code, ok := perrors.QueueErrorCode(err)
	return ErrorCode(code), ok
}

// OptionError reports a SetOption call with an unknown key or a
// type-mismatched value.
type OptionError struct {
	Key string
	Msg string
}

func (e *OptionError) Error() string { return "sxplayer: option " + e.Key + ": " + e.Msg }

func newOptionError(key, msg string) error { return &OptionError{Key: key, Msg: msg} }
