package v2

import quadtree "github.com/techmccat/linear-quadtree"

// Codec adapts the V2 encode/decode operations to stream.FrameCodec.
// It builds its trees with bitmap tiles disabled, since V2 has no way to
// represent one.
//
// Codec is not safe for concurrent use.
type Codec struct {
	previous quadtree.Node
	pending  quadtree.Node
}

// NewCodec returns a Codec with no previous frame, so its first
// EncodeFrame call always produces an I-frame.
func NewCodec() *Codec {
	return &Codec{}
}

// EncodeFrame builds the quadtree for raster and encodes it as a full
// tree (I-frame) when forceIFrame is set or there is no previous frame,
// or as a diff against the previous frame (P-frame) otherwise. Unlike
// V1, V2 has no size-based fallback: a diff tree is never larger than a
// full one, since every empty subtree collapses to two bits. The encoded
// tree only becomes the previous frame once Commit is called.
func (c *Codec) EncodeFrame(raster *[1024]byte, forceIFrame bool) [][]byte {
	tree := quadtree.Build(raster, false)
	c.pending = tree

	if forceIFrame || c.previous == nil {
		return [][]byte{Encode(tree)}
	}
	return [][]byte{Encode(quadtree.Diff(tree, c.previous))}
}

// Commit records the tree built by the most recent EncodeFrame call as
// the previous frame for future diffing. Callers must only call it once
// that frame's payload has actually reached the sink: skipping Commit
// after a failed write keeps the codec diffing against the last frame
// the decoder really received instead of one it never saw.
func (c *Codec) Commit() {
	c.previous = c.pending
}

// DecodePayload parses payload and returns its leaves. V2 never reports
// a background colour: an I-frame's tree covers the whole canvas
// explicitly, and a P-frame's diff tree only lists what changed, so a
// decoder never needs to clear before drawing either kind.
func (c *Codec) DecodePayload(payload []byte) (background *bool, leaves []quadtree.Leaf, err error) {
	return nil, Parse(payload).Leaves(), nil
}
