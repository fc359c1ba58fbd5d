// Package stream implements the length-prefixed frame container shared
// by both wire formats: accumulate raw 1024-byte rasters into encoded,
// length-prefixed payloads on the way out, and split a byte stream back
// into payloads and feed them to a draw target on the way in.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"

	quadtree "github.com/techmccat/linear-quadtree"
	"github.com/techmccat/linear-quadtree/raster"
)

// FrameCodec is the seam between this package's framing/buffering state
// machine and a specific wire format. wire/v1.Codec and wire/v2.Codec
// both implement it.
type FrameCodec interface {
	// EncodeFrame encodes one complete 1024-byte raster, returning one
	// or more payloads to write to the stream in order. forceIFrame
	// requests a self-contained encoding regardless of any internal
	// diff state. It does not itself update any internal "previous
	// frame" state; Commit does that.
	EncodeFrame(raster *[1024]byte, forceIFrame bool) [][]byte
	// Commit advances the codec's internal diff state to the frame
	// built by the most recent EncodeFrame call. Callers must only
	// call it after confirming that frame's payloads were written to
	// the sink successfully, so a transient write failure can't leave
	// the codec diffing future frames against one the decoder never
	// received.
	Commit()
	// DecodePayload parses one payload already extracted from the
	// stream's length-prefixed framing, returning the leaves it lists
	// and, if the payload is self-contained, the background colour the
	// target should be cleared to first.
	DecodePayload(payload []byte) (background *bool, leaves []quadtree.Leaf, err error)
}

// Encoder buffers raw framebuffer bytes written to it and, every time a
// full 1024-byte frame accumulates, encodes it through codec and writes
// the result to sink as one or more length-prefixed payloads.
//
// Encoder is not safe for concurrent use.
type Encoder struct {
	codec     FrameCodec
	sink      io.Writer
	iInterval int
	counter   int

	buf    [1024]byte
	filled int
}

// NewEncoder returns an Encoder writing encoded, length-prefixed frames
// to sink. iFrameInterval is the number of frames between forced
// I-frames; the very first frame written is always an I-frame regardless
// of iFrameInterval.
func NewEncoder(sink io.Writer, codec FrameCodec, iFrameInterval int) *Encoder {
	return &Encoder{sink: sink, codec: codec, iInterval: iFrameInterval, counter: iFrameInterval}
}

// Write accepts any number of bytes and encodes a frame each time 1024
// of them have accumulated. It never returns a short write except on a
// failure from sink.
func (e *Encoder) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		n := copy(e.buf[e.filled:], p)
		e.filled += n
		p = p[n:]
		total += n
		if e.filled == len(e.buf) {
			if err := e.encodeBuffered(); err != nil {
				return total, err
			}
			e.filled = 0
		}
	}
	return total, nil
}

// Flush zero-pads and encodes any partial frame still buffered. Callers
// writing a sequence of exact 1024-byte frames never need to call it;
// it exists for sources whose final frame is short.
func (e *Encoder) Flush() error {
	if e.filled == 0 {
		return nil
	}
	for i := e.filled; i < len(e.buf); i++ {
		e.buf[i] = 0
	}
	err := e.encodeBuffered()
	e.filled = 0
	return err
}

func (e *Encoder) encodeBuffered() error {
	forceIFrame := e.counter >= e.iInterval
	payloads := e.codec.EncodeFrame(&e.buf, forceIFrame)
	for _, payload := range payloads {
		if err := writeFrame(e.sink, payload); err != nil {
			return fmt.Errorf("stream: write frame: %w", err)
		}
	}
	// Only commit the diff state, and only advance the I-frame cadence,
	// once every payload for this frame has actually reached the sink.
	e.codec.Commit()
	if forceIFrame {
		e.counter = 0
	} else {
		e.counter++
	}
	return nil
}

func writeFrame(w io.Writer, payload []byte) error {
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// VideoSlice splits an in-memory byte buffer into the sequence of
// length-prefixed payloads it was built from: each entry is a 16-bit
// little-endian length followed by that many payload bytes.
type VideoSlice struct {
	buf []byte
	pos int
}

// NewVideoSlice returns a VideoSlice over buf.
func NewVideoSlice(buf []byte) *VideoSlice {
	return &VideoSlice{buf: buf}
}

// Next returns the next payload, or ok=false if fewer bytes remain than
// the next length prefix promises (or not even enough for the prefix
// itself) — a truncated trailing frame, which callers treat as the end
// of the stream rather than an error.
func (v *VideoSlice) Next() (payload []byte, ok bool) {
	if v.pos+2 > len(v.buf) {
		return nil, false
	}
	n := int(binary.LittleEndian.Uint16(v.buf[v.pos : v.pos+2]))
	if v.pos+2+n > len(v.buf) {
		return nil, false
	}
	payload = v.buf[v.pos+2 : v.pos+2+n]
	v.pos += 2 + n
	return payload, true
}

// Decoder drives a FrameCodec over a VideoSlice and paints the result
// into a raster.DrawTarget.
//
// Decoder is not safe for concurrent use.
type Decoder struct {
	codec  FrameCodec
	target raster.DrawTarget
}

// NewDecoder returns a Decoder that paints decoded frames into target.
func NewDecoder(codec FrameCodec, target raster.DrawTarget) *Decoder {
	return &Decoder{codec: codec, target: target}
}

// DecodeOne decodes a single already-extracted payload and paints it.
func (d *Decoder) DecodeOne(payload []byte) error {
	background, leaves, err := d.codec.DecodePayload(payload)
	if err != nil {
		return fmt.Errorf("stream: decode payload: %w", err)
	}
	if background != nil {
		raster.DrawFull(d.target, *background, leaves)
	} else {
		raster.DrawDelta(d.target, leaves)
	}
	return nil
}

// DecodeAll decodes and paints every payload in data, stopping silently
// at the first truncated trailing frame.
func (d *Decoder) DecodeAll(data []byte) error {
	vs := NewVideoSlice(data)
	for {
		payload, ok := vs.Next()
		if !ok {
			return nil
		}
		if err := d.DecodeOne(payload); err != nil {
			return err
		}
	}
}
