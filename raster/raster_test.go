package raster

import (
	"testing"

	qt "github.com/frankban/quicktest"

	quadtree "github.com/techmccat/linear-quadtree"
)

func TestClearSetsEveryPixel(t *testing.T) {
	c := qt.New(t)

	fb := NewFramebuffer()
	fb.Clear(true)
	for _, b := range fb.Bytes() {
		c.Assert(b, qt.Equals, byte(0xFF))
	}

	fb.Clear(false)
	for _, b := range fb.Bytes() {
		c.Assert(b, qt.Equals, byte(0x00))
	}
}

func TestFillSolidBoundsChecked(t *testing.T) {
	c := qt.New(t)

	fb := NewFramebuffer()
	fb.FillSolid(quadtree.Rect{X: -2, Y: -2, W: 4, H: 4}, true)
	// Only the in-bounds portion (0,0)-(1,1) should be set.
	c.Assert(fb.Bytes()[0]&0xC0, qt.Equals, byte(0xC0))
}

func TestDrawTileReinterleave(t *testing.T) {
	c := qt.New(t)

	fb := NewFramebuffer()
	// tile row0=1111, row1=0000, row2=1111, row3=0000
	fb.DrawTile([2]byte{0b11110000, 0b11110000}, Point{X: 0, Y: 0})

	c.Assert(fb.Bytes()[0]&0xF0, qt.Equals, byte(0xF0)) // row0
	c.Assert(fb.Bytes()[16]&0xF0, qt.Equals, byte(0x00))  // row1
	c.Assert(fb.Bytes()[32]&0xF0, qt.Equals, byte(0xF0)) // row2
	c.Assert(fb.Bytes()[48]&0xF0, qt.Equals, byte(0x00))  // row3
}

func TestDrawFullClearsThenPaints(t *testing.T) {
	c := qt.New(t)

	fb := NewFramebuffer()
	fb.Clear(true)

	leaves := []quadtree.Leaf{
		{Data: quadtree.Feature(true), Pos: quadtree.PositionFromSlice([]uint8{0})},
	}
	DrawFull(fb, false, leaves)

	// Cleared to false, then the left half painted true: left half on,
	// right half off.
	c.Assert(fb.Bytes()[0], qt.Equals, byte(0xFF))
	c.Assert(fb.Bytes()[8], qt.Equals, byte(0x00))
}

func TestDrawDeltaOverlaysWithoutClearing(t *testing.T) {
	c := qt.New(t)

	fb := NewFramebuffer()
	fb.Clear(true)

	leaves := []quadtree.Leaf{
		{Data: quadtree.Feature(false), Pos: quadtree.PositionFromSlice([]uint8{0})},
	}
	DrawDelta(fb, leaves)

	// Left half turned off, right half untouched (still on from Clear).
	c.Assert(fb.Bytes()[0], qt.Equals, byte(0x00))
	c.Assert(fb.Bytes()[8], qt.Equals, byte(0xFF))
}

func TestLoadThenBytesRoundTrip(t *testing.T) {
	c := qt.New(t)

	var raw [1024]byte
	raw[3] = 0xAB
	fb := NewFramebuffer()
	fb.Load(&raw)
	c.Assert(*fb.Bytes(), qt.Equals, raw)
}
