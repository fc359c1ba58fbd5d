// Package raster provides the reference draw-target implementation the
// wire decoders paint into: an in-memory 128x64 1-bit-per-pixel
// framebuffer, plus the small set of primitives (clear, fill a
// rectangle, blit a 4x4 tile) a real display driver would also need to
// implement to consume this codec's output.
package raster

import quadtree "github.com/techmccat/linear-quadtree"

// Point is a pixel coordinate.
type Point struct {
	X, Y int
}

// DrawTarget is the minimal surface a decoder needs to materialise a
// frame: clearing the whole canvas to a colour, filling a rectangle
// solid, and blitting a raw 4x4 bitmap tile. A real display driver
// implements this directly against hardware; Framebuffer is the
// in-memory reference implementation used for testing and by the CLI
// tools.
type DrawTarget interface {
	Clear(on bool)
	FillSolid(r quadtree.Rect, on bool)
	DrawTile(tile [2]byte, topLeft Point)
}

// Framebuffer is a 128x64, 1-bit-per-pixel, MSB-first, row-major buffer —
// the same layout Build consumes, which lets a decoded Framebuffer be fed
// straight back into Build for round-trip tests.
type Framebuffer struct {
	buf [1024]byte
}

// NewFramebuffer returns a cleared (all-off) framebuffer.
func NewFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

// Bytes returns the raw backing buffer.
func (f *Framebuffer) Bytes() *[1024]byte {
	return &f.buf
}

// Load replaces the buffer's contents with raw.
func (f *Framebuffer) Load(raw *[1024]byte) {
	f.buf = *raw
}

func (f *Framebuffer) setPixel(x, y int, on bool) {
	if x < 0 || x >= 128 || y < 0 || y >= 64 {
		return
	}
	byteIdx := y*16 + x/8
	bit := byte(1) << uint(7-x%8)
	if on {
		f.buf[byteIdx] |= bit
	} else {
		f.buf[byteIdx] &^= bit
	}
}

// Clear sets every pixel to on.
func (f *Framebuffer) Clear(on bool) {
	var b byte
	if on {
		b = 0xFF
	}
	for i := range f.buf {
		f.buf[i] = b
	}
}

// FillSolid sets every pixel within r to on.
func (f *Framebuffer) FillSolid(r quadtree.Rect, on bool) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			f.setPixel(x, y, on)
		}
	}
}

// DrawTile blits a packed 4x4 tile (two bytes, each holding two 4-bit
// rows, MSB first) at topLeft.
func (f *Framebuffer) DrawTile(tile [2]byte, topLeft Point) {
	rows := [4]byte{
		tile[0] & 0xF0,
		tile[0] << 4,
		tile[1] & 0xF0,
		tile[1] << 4,
	}
	for dy, row := range rows {
		for dx := 0; dx < 4; dx++ {
			on := row&(0x80>>uint(dx)) != 0
			f.setPixel(topLeft.X+dx, topLeft.Y+dy, on)
		}
	}
}

// DrawLeaf paints a single decoded leaf onto target.
func DrawLeaf(target DrawTarget, l quadtree.Leaf) {
	r := l.Bounds()
	switch l.Data.Kind {
	case quadtree.KindBitmap:
		target.DrawTile(l.Data.Bitmap, Point{X: r.X, Y: r.Y})
	default:
		target.FillSolid(r, l.Data.Feature)
	}
}

// DrawFull clears target to background and then paints every leaf: the
// shape a full (I-frame or single-payload) decode takes.
func DrawFull(target DrawTarget, background bool, leaves []quadtree.Leaf) {
	target.Clear(background)
	for _, l := range leaves {
		DrawLeaf(target, l)
	}
}

// DrawDelta paints every leaf without clearing first: the shape a
// P-frame payload's leaves take, since they describe only the pixels
// that changed.
func DrawDelta(target DrawTarget, leaves []quadtree.Leaf) {
	for _, l := range leaves {
		DrawLeaf(target, l)
	}
}
