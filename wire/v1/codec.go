package v1

import quadtree "github.com/techmccat/linear-quadtree"

// Codec adapts the V1 I-frame/P-frame encode and decode operations to
// stream.FrameCodec, keeping the previous frame's tree around between
// calls so it can diff against it.
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

// EncodeFrame builds the quadtree for raster and encodes it as an
// I-frame (a single full payload) when forceIFrame is set or there is no
// previous frame to diff against, or as a P-frame (two delta payloads,
// falling back to a single full payload if that's smaller) otherwise.
// The encoded tree only becomes the previous frame once Commit is
// called; EncodeFrame itself does not advance the codec's state.
func (c *Codec) EncodeFrame(raster *[1024]byte, forceIFrame bool) [][]byte {
	tree := quadtree.Build(raster, true)
	c.pending = tree

	if forceIFrame || c.previous == nil {
		return [][]byte{EncodeFull(tree)}
	}
	on, off, ok := EncodeDelta(tree, c.previous)
	if !ok {
		return [][]byte{EncodeFull(tree)}
	}
	return [][]byte{on, off}
}

// Commit records the tree built by the most recent EncodeFrame call as
// the previous frame for future diffing. Callers must only call it once
// that frame's payloads have actually reached the sink: skipping Commit
// after a failed write keeps the codec diffing against the last frame
// the decoder really received instead of one it never saw.
func (c *Codec) Commit() {
	c.previous = c.pending
}

// DecodePayload parses payload and reports the leaves it lists. A
// non-partial payload also reports the background colour the target
// should be cleared to before those leaves are drawn; a partial (P-frame)
// payload reports no background, since it only overlays changes onto
// whatever the target already shows.
func (c *Codec) DecodePayload(payload []byte) (background *bool, leaves []quadtree.Leaf, err error) {
	f, err := Parse(payload)
	if err != nil {
		return nil, nil, err
	}
	leaves = f.Leaves()
	if !f.Meta.Partial {
		bg := !f.Meta.ActiveFeature
		return &bg, leaves, nil
	}
	return nil, leaves, nil
}
