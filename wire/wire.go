// Package wire holds the error values shared by the wire/v1 and wire/v2
// frame codecs.
package wire

import "errors"

// ErrInvalidHeader is returned when a payload's header is structurally
// malformed: an out-of-range FrameMeta byte, or an empty V1 payload.
// Truncation of the leaf data that follows a valid header is not an
// error — decoders simply stop yielding leaves early, since a partially
// drawn frame is still useful and the streaming format has no way to
// signal a clean end short of the next length prefix.
var ErrInvalidHeader = errors.New("wire: invalid header")
