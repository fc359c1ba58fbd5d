// Package v1 implements the "linear" wire format: a one-byte FrameMeta
// header followed by a sequence of independently byte-aligned leaf
// packets, one packet per listed leaf.
package v1

import (
	"bytes"
	"fmt"

	quadtree "github.com/techmccat/linear-quadtree"
	"github.com/techmccat/linear-quadtree/wire"
)

// FrameMeta is the one-byte header of every V1 payload.
type FrameMeta struct {
	// ActiveFeature names which colour the listed leaves represent; the
	// opposite colour is the implicit background.
	ActiveFeature bool
	// Partial marks one of a P-frame's two payloads (an "on" or "off"
	// delta) rather than a self-contained full frame.
	Partial bool
	// Display marks the payload that completes a frame, after which the
	// target can be shown: for a full frame it is always set; of a
	// P-frame's two payloads only the second ("off") payload carries it.
	// It does not affect clearing, which Partial alone governs.
	Display bool
}

// Byte packs m into its wire representation.
func (m FrameMeta) Byte() byte {
	var b byte
	if m.ActiveFeature {
		b |= 1
	}
	if m.Partial {
		b |= 2
	}
	if m.Display {
		b |= 4
	}
	return b
}

// ParseFrameMeta unpacks a FrameMeta byte, rejecting any set bit above
// bit 2.
func ParseFrameMeta(b byte) (FrameMeta, error) {
	if b&^0b111 != 0 {
		return FrameMeta{}, fmt.Errorf("v1: parse frame meta %#02x: %w", b, wire.ErrInvalidHeader)
	}
	return FrameMeta{
		ActiveFeature: b&1 != 0,
		Partial:       b&2 != 0,
		Display:       b&4 != 0,
	}, nil
}

// EncodeFull serialises t as a self-contained payload: a FrameMeta byte
// followed by every leaf matching the chosen active colour, plus every
// bitmap leaf (a bitmap tile is mixed content, so it can't be folded into
// either background colour).
//
// The active colour is whichever of true/false has more matching leaves
// in t, so that the smaller set is left implicit as background — except
// when t is a single leaf covering the whole frame (no branch at all),
// in which case that leaf is always listed with its own colour as
// active, which keeps the "a uniform frame encodes as exactly one leaf"
// guarantee independent of the colour-choice heuristic.
func EncodeFull(t quadtree.Node) []byte {
	active, leaves := chooseActiveFrame(t)
	var buf bytes.Buffer
	buf.WriteByte(FrameMeta{ActiveFeature: active, Display: true}.Byte())
	for _, l := range leaves {
		encodeLeaf(&buf, l)
	}
	return buf.Bytes()
}

func chooseActiveFrame(t quadtree.Node) (active bool, listed []quadtree.Leaf) {
	if leaf, ok := t.(*quadtree.LeafNode); ok {
		active = leaf.Data.Feature
		return active, []quadtree.Leaf{{Data: leaf.Data}}
	}
	all := quadtree.Leaves(t)
	var trueCount, falseCount int
	for _, l := range all {
		if l.Data.Kind == quadtree.KindFeature {
			if l.Data.Feature {
				trueCount++
			} else {
				falseCount++
			}
		}
	}
	active = trueCount >= falseCount
	for _, l := range all {
		if l.Data.Kind == quadtree.KindBitmap || (l.Data.Kind == quadtree.KindFeature && l.Data.Feature == active) {
			listed = append(listed, l)
		}
	}
	return active, listed
}

// EncodeDelta serialises the change from old to newTree as two payloads:
// one listing the leaves that turned on (and every bitmap leaf), one
// listing the leaves that turned off. If a single full-frame encoding of
// newTree would be shorter than the two delta payloads combined, ok is
// false and the caller should use EncodeFull instead.
func EncodeDelta(newTree, old quadtree.Node) (onPayload, offPayload []byte, ok bool) {
	delta := quadtree.Diff(newTree, old)

	var onBuf, offBuf bytes.Buffer
	onBuf.WriteByte(FrameMeta{ActiveFeature: true, Partial: true, Display: false}.Byte())
	offBuf.WriteByte(FrameMeta{ActiveFeature: false, Partial: true, Display: true}.Byte())

	quadtree.Walk(delta, func(l quadtree.Leaf) {
		switch {
		case l.Data.Kind == quadtree.KindBitmap:
			encodeLeaf(&onBuf, l)
		case l.Data.Feature:
			encodeLeaf(&onBuf, l)
		default:
			encodeLeaf(&offBuf, l)
		}
	})

	full := EncodeFull(newTree)
	if len(full) < onBuf.Len()+offBuf.Len() {
		return nil, nil, false
	}
	return onBuf.Bytes(), offBuf.Bytes(), true
}

// pos2 returns position element i as a 2-bit value, or 0 if the leaf's
// position doesn't have that many elements (used for the implicit
// zero-padding bits inside a packet).
func pos2(pos quadtree.Position, i int) byte {
	if i >= pos.Len() {
		return 0
	}
	return pos.At(i)
}

// encodeLeaf writes one leaf as a byte-aligned packet. See Frame.Each for
// the decoder of the bit layout this mirrors.
func encodeLeaf(buf *bytes.Buffer, l quadtree.Leaf) {
	pos := l.Pos
	depth := pos.Len()

	if l.Data.Kind == quadtree.KindBitmap {
		b0 := byte(0x80) | 6<<4 | pos2(pos, 0)<<2 | pos2(pos, 1)
		b1 := pos2(pos, 2)<<6 | pos2(pos, 3)<<4 | pos2(pos, 4)<<2
		buf.WriteByte(b0)
		buf.WriteByte(b1)
		buf.WriteByte(l.Data.Bitmap[0])
		buf.WriteByte(l.Data.Bitmap[1])
		return
	}

	if depth <= 6 {
		b0 := byte(0x80) | byte(depth)<<4 | pos2(pos, 0)<<2 | pos2(pos, 1)
		if depth <= 2 {
			buf.WriteByte(b0)
			return
		}
		b1 := pos2(pos, 2)<<6 | pos2(pos, 3)<<4 | pos2(pos, 4)<<2
		buf.WriteByte(b0)
		buf.WriteByte(b1)
		return
	}

	// depth 7: the flag bit is 0 and the depth itself is implicit.
	b0 := pos2(pos, 0)<<4 | pos2(pos, 1)<<2 | pos2(pos, 2)
	b1 := pos2(pos, 3)<<6 | pos2(pos, 4)<<4 | pos2(pos, 5)<<2
	buf.WriteByte(b0)
	buf.WriteByte(b1)
}
