// Package quadtree builds a quadtree over a Z-order linearisation of a
// 128x64 monochrome framebuffer, and provides depth-first leaf iteration
// and tree diffing on top of it. The wire formats in wire/v1 and wire/v2
// serialise the trees this package produces.
package quadtree

import "github.com/techmccat/linear-quadtree/internal/zorder"

// Node is one of Empty, *LeafNode or *BranchNode. It mirrors the tagged
// union the format was designed around directly in Go's type system,
// which is what lets Diff and Walk pattern-match on shape with a type
// switch instead of threading an extra "kind" field everywhere.
type Node interface {
	node()
}

// EmptyNode marks a region with no content: either it never differed from
// a previous frame (in a diff tree), or it is one of the two reserved-but-
// unused child slots of the root (see Build).
type EmptyNode struct{}

func (EmptyNode) node() {}

// LeafNode is a terminal, either a solid colour or a bitmap tile.
type LeafNode struct {
	Data LeafData
}

func (*LeafNode) node() {}

// BranchNode splits its region into four quadrants.
type BranchNode struct {
	Children [4]Node
}

func (*BranchNode) node() {}

// Build constructs a quadtree from a 1024-byte, MSB-first, row-major
// 128x64 raster. When useBitmap is true, a non-uniform 4x4 tile (side 4,
// the deepest quadrant split) is stored verbatim as a bitmap leaf instead
// of being split further; when false, recursion continues down to single
// pixels, which is what the V2 wire format requires since it has no
// bitmap leaf representation.
//
// A frame that is one colour throughout becomes a single Leaf root.
// Otherwise the root is a Branch whose first two children are the quadtree-encoded
// left and right halves of the canvas (128x64 is not square, so it is
// treated as two 64x64 squares side by side); the remaining two child
// slots are always Empty and exist only so the root has the same shape
// as every other branch.
func Build(raster *[1024]byte, useBitmap bool) Node {
	z := zorder.Encode(raster)
	full := zorder.Bits{Buf: z[:], Start: 0, Len: 8192}
	if zorder.Uniform(full) {
		return &LeafNode{Data: Feature(full.Get(0) == 1)}
	}
	left := full.Sub(0, 4096)
	right := full.Sub(4096, 4096)
	return &BranchNode{Children: [4]Node{
		fromSector(left, 64, useBitmap),
		fromSector(right, 64, useBitmap),
		EmptyNode{},
		EmptyNode{},
	}}
}

func fromSector(bits zorder.Bits, sideLen int, useBitmap bool) Node {
	if zorder.Uniform(bits) {
		return &LeafNode{Data: Feature(bits.Get(0) == 1)}
	}
	if sideLen == 4 && useBitmap {
		return &LeafNode{Data: Bitmap(packTile(bits))}
	}
	q := bits.Quarters()
	half := sideLen / 2
	return &BranchNode{Children: [4]Node{
		fromSector(q[0], half, useBitmap),
		fromSector(q[1], half, useBitmap),
		fromSector(q[2], half, useBitmap),
		fromSector(q[3], half, useBitmap),
	}}
}

// packTile packs the 16 Z-ordered bits of a 4x4 tile into two bytes, each
// holding two row-major 4-bit pixel rows (MSB first). The Z-order within
// the tile visits (0,0) (1,0) (0,1) (1,1) (2,0) (3,0) (2,1) (3,1) then the
// same pattern for rows 2-3, so row 0 is bits 0,1,4,5 and row 1 is bits
// 2,3,6,7 of the tile (and likewise rows 2,3 from bits 8-15).
func packTile(bits zorder.Bits) [2]byte {
	var b [16]byte
	for i := range b {
		b[i] = byte(bits.Get(i))
	}
	byte0 := b[0]<<7 | b[1]<<6 | b[4]<<5 | b[5]<<4 | b[2]<<3 | b[3]<<2 | b[6]<<1 | b[7]
	byte1 := b[8]<<7 | b[9]<<6 | b[12]<<5 | b[13]<<4 | b[10]<<3 | b[11]<<2 | b[14]<<1 | b[15]
	return [2]byte{byte0, byte1}
}
