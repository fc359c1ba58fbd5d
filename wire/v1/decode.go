package v1

import (
	"fmt"

	quadtree "github.com/techmccat/linear-quadtree"
	"github.com/techmccat/linear-quadtree/wire"
)

// Frame is a parsed V1 payload: a header plus the still-undecoded leaf
// packet bytes.
type Frame struct {
	Meta FrameMeta
	data []byte
}

// Parse reads the FrameMeta header from payload. It returns
// wire.ErrInvalidHeader if payload is empty or the header byte is
// malformed; it never inspects the leaf packets that follow, so a
// truncated payload still parses successfully and simply yields fewer
// leaves from Leaves.
func Parse(payload []byte) (*Frame, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("v1: parse: %w", wire.ErrInvalidHeader)
	}
	meta, err := ParseFrameMeta(payload[0])
	if err != nil {
		return nil, err
	}
	return &Frame{Meta: meta, data: payload[1:]}, nil
}

// Leaves decodes every leaf packet in the frame, in order. If a packet
// would read past the end of the data, decoding stops there silently and
// the leaves already decoded are returned: the caller sees a partially
// drawn frame instead of an error, matching the format's tolerance for
// truncated streams.
func (f *Frame) Leaves() []quadtree.Leaf {
	var out []quadtree.Leaf
	f.Each(func(l quadtree.Leaf) { out = append(out, l) })
	return out
}

// Each decodes leaf packets one at a time, calling cb for each, stopping
// early on truncation exactly as Leaves does.
func (f *Frame) Each(cb func(quadtree.Leaf)) {
	data := f.data
	idx := 0
	for idx < len(data) {
		b0 := data[idx]
		if b0&0x80 != 0 {
			depth := int((b0 >> 4) & 0b111)
			p0 := (b0 >> 2) & 0b11
			p1 := b0 & 0b11

			if depth <= 2 {
				cb(quadtree.Leaf{
					Data: quadtree.Feature(f.Meta.ActiveFeature),
					Pos:  quadtree.PositionFromSlice([]uint8{p0, p1}[:depth]),
				})
				idx++
				continue
			}

			if idx+1 >= len(data) {
				return
			}
			b1 := data[idx+1]
			p2 := (b1 >> 6) & 0b11
			p3 := (b1 >> 4) & 0b11
			p4 := (b1 >> 2) & 0b11

			if depth == 6 {
				if idx+3 >= len(data) {
					return
				}
				cb(quadtree.Leaf{
					Data: quadtree.Bitmap([2]byte{data[idx+2], data[idx+3]}),
					Pos:  quadtree.PositionFromSlice([]uint8{p0, p1, p2, p3, p4}),
				})
				idx += 4
				continue
			}

			n := depth
			if n > 5 {
				n = 5
			}
			cb(quadtree.Leaf{
				Data: quadtree.Feature(f.Meta.ActiveFeature),
				Pos:  quadtree.PositionFromSlice([]uint8{p0, p1, p2, p3, p4}[:n]),
			})
			idx += 2
			continue
		}

		// Flag bit clear: the depth-7 layout, always two bytes, six
		// position elements, feature leaves only.
		if idx+1 >= len(data) {
			return
		}
		b1 := data[idx+1]
		pos := quadtree.PositionFromSlice([]uint8{
			(b0 >> 4) & 0b11,
			(b0 >> 2) & 0b11,
			b0 & 0b11,
			(b1 >> 6) & 0b11,
			(b1 >> 4) & 0b11,
			(b1 >> 2) & 0b11,
		})
		cb(quadtree.Leaf{Data: quadtree.Feature(f.Meta.ActiveFeature), Pos: pos})
		idx += 2
	}
}
