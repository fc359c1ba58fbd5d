package stream

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	qt "github.com/frankban/quicktest"

	quadtree "github.com/techmccat/linear-quadtree"
	"github.com/techmccat/linear-quadtree/raster"
	"github.com/techmccat/linear-quadtree/wire/v1"
	"github.com/techmccat/linear-quadtree/wire/v2"
)

// failAfterWriter fails every write once n successful writes have
// already gone through, simulating a sink that becomes unwritable
// partway through a stream (a closed pipe, a full disk, and so on).
type failAfterWriter struct {
	buf bytes.Buffer
	n   int
}

func (f *failAfterWriter) Write(p []byte) (int, error) {
	if f.n <= 0 {
		return 0, errors.New("sink unavailable")
	}
	f.n--
	return f.buf.Write(p)
}

func setPixel(raster *[1024]byte, x, y int, on bool) {
	byteIdx := y*16 + x/8
	bit := byte(1) << uint(7-x%8)
	if on {
		raster[byteIdx] |= bit
	} else {
		raster[byteIdx] &^= bit
	}
}

func TestVideoSliceRoundTrip(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	writeFrame(&buf, []byte{1, 2, 3})
	writeFrame(&buf, []byte{})
	writeFrame(&buf, []byte{9})

	vs := NewVideoSlice(buf.Bytes())
	p1, ok := vs.Next()
	c.Assert(ok, qt.Equals, true)
	c.Assert(p1, qt.DeepEquals, []byte{1, 2, 3})

	p2, ok := vs.Next()
	c.Assert(ok, qt.Equals, true)
	c.Assert(p2, qt.DeepEquals, []byte{})

	p3, ok := vs.Next()
	c.Assert(ok, qt.Equals, true)
	c.Assert(p3, qt.DeepEquals, []byte{9})

	_, ok = vs.Next()
	c.Assert(ok, qt.Equals, false)
}

func TestVideoSliceTruncatedTrailingFrame(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	writeFrame(&buf, []byte{1, 2, 3})
	truncated := buf.Bytes()[:len(buf.Bytes())-1]

	vs := NewVideoSlice(truncated)
	_, ok := vs.Next()
	c.Assert(ok, qt.Equals, false)
}

func TestEncoderBuffersExactlyOneFramePerWrite(t *testing.T) {
	c := qt.New(t)

	var sink bytes.Buffer
	enc := NewEncoder(&sink, v1.NewCodec(), 30)

	var frame [1024]byte
	n, err := enc.Write(frame[:])
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 1024)

	vs := NewVideoSlice(sink.Bytes())
	_, ok := vs.Next()
	c.Assert(ok, qt.Equals, true)
	_, ok = vs.Next()
	c.Assert(ok, qt.Equals, false)
}

func TestEncoderWriteAcrossMultipleCalls(t *testing.T) {
	c := qt.New(t)

	var sink bytes.Buffer
	enc := NewEncoder(&sink, v2.NewCodec(), 30)

	var frame [1024]byte
	enc.Write(frame[:512])
	enc.Write(frame[512:])

	vs := NewVideoSlice(sink.Bytes())
	_, ok := vs.Next()
	c.Assert(ok, qt.Equals, true)
}

func TestEncoderFlushPadsPartialFrame(t *testing.T) {
	c := qt.New(t)

	var sink bytes.Buffer
	enc := NewEncoder(&sink, v1.NewCodec(), 30)
	enc.Write(make([]byte, 100))
	c.Assert(enc.Flush(), qt.IsNil)

	vs := NewVideoSlice(sink.Bytes())
	_, ok := vs.Next()
	c.Assert(ok, qt.Equals, true)
}

func TestEncoderForcesIFrameAtInterval(t *testing.T) {
	c := qt.New(t)

	var sink bytes.Buffer
	encCodec := v1.NewCodec()
	enc := NewEncoder(&sink, encCodec, 2)

	frames := make([][1024]byte, 5)
	setPixel(&frames[3], 5, 5, true)
	for _, f := range frames {
		_, err := enc.Write(f[:])
		c.Assert(err, qt.IsNil)
	}

	// Every encoded payload must decode without error regardless of
	// where the forced I-frame boundaries land, and the final decoded
	// framebuffer must match the last frame written.
	decCodec := v1.NewCodec()
	fb := raster.NewFramebuffer()
	dec := NewDecoder(decCodec, fb)
	c.Assert(dec.DecodeAll(sink.Bytes()), qt.IsNil)
	c.Assert(*fb.Bytes(), qt.Equals, frames[len(frames)-1])
}

// TestRandomRasterRoundTrip is the random-raster fuzz property: for many
// random 1024-byte rasters, drawn against the previous iteration's
// raster, round-trip holds across all four format variants (V1 I-frame,
// V1 P-frame, V2 I-frame, V2 P-frame).
func TestRandomRasterRoundTrip(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewSource(7))

	const iterations = 10000

	var previous [1024]byte
	prevTreeV1 := quadtree.Build(&previous, true)
	prevTreeV2 := quadtree.Build(&previous, false)

	for i := 0; i < iterations; i++ {
		var raw [1024]byte
		rng.Read(raw[:])

		treeV1 := quadtree.Build(&raw, true)
		treeV2 := quadtree.Build(&raw, false)

		// V1 I-frame.
		f, err := v1.Parse(v1.EncodeFull(treeV1))
		c.Assert(err, qt.IsNil)
		fbI := raster.NewFramebuffer()
		raster.DrawFull(fbI, !f.Meta.ActiveFeature, f.Leaves())
		c.Assert(*fbI.Bytes(), qt.Equals, raw, qt.Commentf("v1 i-frame, iteration %d", i))

		// V1 P-frame, diffed against the previous iteration's tree.
		fbP := raster.NewFramebuffer()
		fbP.Load(&previous)
		if on, off, ok := v1.EncodeDelta(treeV1, prevTreeV1); ok {
			onFrame, err := v1.Parse(on)
			c.Assert(err, qt.IsNil)
			raster.DrawDelta(fbP, onFrame.Leaves())
			offFrame, err := v1.Parse(off)
			c.Assert(err, qt.IsNil)
			raster.DrawDelta(fbP, offFrame.Leaves())
		} else {
			full, err := v1.Parse(v1.EncodeFull(treeV1))
			c.Assert(err, qt.IsNil)
			raster.DrawFull(fbP, !full.Meta.ActiveFeature, full.Leaves())
		}
		c.Assert(*fbP.Bytes(), qt.Equals, raw, qt.Commentf("v1 p-frame, iteration %d", i))

		// V2 I-frame.
		leavesV2 := v2.Parse(v2.Encode(treeV2)).Leaves()
		fbI2 := raster.NewFramebuffer()
		raster.DrawFull(fbI2, false, leavesV2)
		c.Assert(*fbI2.Bytes(), qt.Equals, raw, qt.Commentf("v2 i-frame, iteration %d", i))

		// V2 P-frame, diffed against the previous iteration's tree.
		diffLeaves := v2.Parse(v2.Encode(quadtree.Diff(treeV2, prevTreeV2))).Leaves()
		fbP2 := raster.NewFramebuffer()
		fbP2.Load(&previous)
		raster.DrawDelta(fbP2, diffLeaves)
		c.Assert(*fbP2.Bytes(), qt.Equals, raw, qt.Commentf("v2 p-frame, iteration %d", i))

		previous = raw
		prevTreeV1 = treeV1
		prevTreeV2 = treeV2
	}
}

func TestEncoderSkipsCommitOnFailedFlush(t *testing.T) {
	c := qt.New(t)

	sink := &failAfterWriter{n: 2}
	codec := v1.NewCodec()
	enc := NewEncoder(sink, codec, 30)

	var frame1 [1024]byte
	_, err := enc.Write(frame1[:])
	c.Assert(err, qt.IsNil)

	// Buffer a second frame but only half of it; Flush pads and tries to
	// write it, and the sink fails -- this frame is lost and the decoder
	// never sees it.
	frame2 := frame1
	setPixel(&frame2, 0, 0, true)
	_, err = enc.Write(frame2[:512])
	c.Assert(err, qt.IsNil)
	c.Assert(enc.Flush(), qt.Not(qt.IsNil))

	// The sink recovers. The next frame sets the same pixel the lost
	// frame did; since the decoder never saw the lost frame, the new
	// frame must still be diffed against frame1 (the last frame that
	// actually reached the sink), or the pixel change goes missing.
	sink.n = 1 << 20
	frame3 := frame1
	setPixel(&frame3, 0, 0, true)
	_, err = enc.Write(frame3[:])
	c.Assert(err, qt.IsNil)

	decCodec := v1.NewCodec()
	fb := raster.NewFramebuffer()
	dec := NewDecoder(decCodec, fb)
	c.Assert(dec.DecodeAll(sink.buf.Bytes()), qt.IsNil)
	c.Assert(*fb.Bytes(), qt.Equals, frame3)
}

func TestEncodeDecodeStreamRoundTrip(t *testing.T) {
	c := qt.New(t)

	frames := make([][1024]byte, 4)
	setPixel(&frames[1], 0, 0, true)
	setPixel(&frames[2], 64, 32, true)
	frames[3] = frames[2]
	setPixel(&frames[3], 10, 10, true)

	for _, version := range []int{1, 2} {
		var sink bytes.Buffer
		var encCodec FrameCodec
		if version == 1 {
			encCodec = v1.NewCodec()
		} else {
			encCodec = v2.NewCodec()
		}
		enc := NewEncoder(&sink, encCodec, 2)
		for _, f := range frames {
			_, err := enc.Write(f[:])
			c.Assert(err, qt.IsNil)
		}
		c.Assert(enc.Flush(), qt.IsNil)

		var decCodec FrameCodec
		if version == 1 {
			decCodec = v1.NewCodec()
		} else {
			decCodec = v2.NewCodec()
		}
		fb := raster.NewFramebuffer()
		dec := NewDecoder(decCodec, fb)
		c.Assert(dec.DecodeAll(sink.Bytes()), qt.IsNil)

		c.Assert(*fb.Bytes(), qt.Equals, frames[len(frames)-1], qt.Commentf("version %d", version))
	}
}
