package decode

import perrors "github.com/alxayo/sxplayer-go/internal/errors"

var errInvalidPayload = perrors.NewDecodeError("software.push_packet", nil)

// errDecoderNotFound is returned by a backend's Init when the requested
// codec/device has no implementation, triggering the single-level fallback
// in Open.
var errDecoderNotFound = perrors.NewDecodeError("backend.init", perrors.NewQueueError("decoder_not_found", perrors.CodeDecoderNotFound))
