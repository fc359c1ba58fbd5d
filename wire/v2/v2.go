// Package v2 implements the "compact" wire format: a continuous,
// pre-order, 2-bits-per-node bitstream with no header and no bitmap leaf
// representation.
package v2

import (
	"bytes"

	quadtree "github.com/techmccat/linear-quadtree"
	"github.com/techmccat/linear-quadtree/internal/bitio"
)

const (
	codeEmpty       = 0b00
	codeBranch      = 0b01
	codeFeatureOff  = 0b10
	codeFeatureOn   = 0b11
)

// Encode serialises t as a pre-order walk of 2-bit node codes, padded
// with zero bits to a whole byte. t must not contain any bitmap leaves
// (build it with quadtree.Build(raster, false)); Encode panics if it
// does, since the format has no way to represent one.
func Encode(t quadtree.Node) []byte {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	encodeNode(w, t)
	w.Flush()
	return buf.Bytes()
}

func encodeNode(w *bitio.Writer, n quadtree.Node) {
	switch t := n.(type) {
	case quadtree.EmptyNode:
		w.WriteBits(codeEmpty, 2)
	case *quadtree.LeafNode:
		if t.Data.Kind == quadtree.KindBitmap {
			panic("v2: Encode: tree contains a bitmap leaf, which V2 cannot represent")
		}
		if t.Data.Feature {
			w.WriteBits(codeFeatureOn, 2)
		} else {
			w.WriteBits(codeFeatureOff, 2)
		}
	case *quadtree.BranchNode:
		w.WriteBits(codeBranch, 2)
		for _, c := range t.Children {
			encodeNode(w, c)
		}
	}
}

// Frame is a parsed V2 payload.
type Frame struct {
	leaves []quadtree.Leaf
}

// Parse decodes payload into its leaves. A payload that ends mid-node
// (fewer than 2 bits remaining where a code is expected, or a branch
// whose children run off the end) simply stops producing further
// leaves; everything decoded before the cut is still returned.
func Parse(payload []byte) *Frame {
	r := bitio.NewReader(payload)
	var pos quadtree.Position
	var leaves []quadtree.Leaf
	decodeNode(r, &pos, &leaves)
	return &Frame{leaves: leaves}
}

// decodeNode mirrors quadtree.Walk's position bookkeeping, but driven by
// the bitstream instead of an in-memory tree, since the wire decoder
// builds leaves directly rather than constructing a Node tree first.
func decodeNode(r *bitio.Reader, pos *quadtree.Position, leaves *[]quadtree.Leaf) bool {
	code, ok := r.ReadBits(2)
	if !ok {
		return false
	}
	switch code {
	case codeEmpty:
		pos.Advance()
	case codeFeatureOff, codeFeatureOn:
		*leaves = append(*leaves, quadtree.Leaf{
			Data: quadtree.Feature(code == codeFeatureOn),
			Pos:  *pos,
		})
		pos.Advance()
	case codeBranch:
		pos.Push(0)
		for i := 0; i < 4; i++ {
			if !decodeNode(r, pos, leaves) {
				return false
			}
		}
	}
	return true
}

// Leaves returns the frame's decoded leaves in depth-first pre-order.
func (f *Frame) Leaves() []quadtree.Leaf {
	return f.leaves
}
