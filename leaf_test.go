package quadtree

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestLeafBoundsWholeFrame(t *testing.T) {
	c := qt.New(t)

	l := Leaf{Data: Feature(true)}
	c.Assert(l.Bounds(), qt.Equals, Rect{X: 0, Y: 0, W: 128, H: 64})
}

func TestLeafBoundsHalves(t *testing.T) {
	c := qt.New(t)

	left := Leaf{Pos: PositionFromSlice([]uint8{0})}
	right := Leaf{Pos: PositionFromSlice([]uint8{1})}

	c.Assert(left.Bounds(), qt.Equals, Rect{X: 0, Y: 0, W: 64, H: 64})
	c.Assert(right.Bounds(), qt.Equals, Rect{X: 64, Y: 0, W: 64, H: 64})
}

func TestLeafBoundsWorkedFixtures(t *testing.T) {
	c := qt.New(t)

	// [1,3,3,3,3]: right half, then BR four times -> deepest 4x4 tile in
	// the bottom-right corner of the right half.
	l := Leaf{Pos: PositionFromSlice([]uint8{1, 3, 3, 3, 3})}
	c.Assert(l.Bounds(), qt.Equals, Rect{X: 124, Y: 60, W: 4, H: 4})

	// [1,1]: right half, then TR quadrant.
	l2 := Leaf{Pos: PositionFromSlice([]uint8{1, 1})}
	c.Assert(l2.Bounds(), qt.Equals, Rect{X: 96, Y: 0, W: 32, H: 32})
}

func TestLeafDepth(t *testing.T) {
	c := qt.New(t)

	l := Leaf{Pos: PositionFromSlice([]uint8{1, 2, 3})}
	c.Assert(l.Depth(), qt.Equals, 3)
}

func TestLeafContains(t *testing.T) {
	c := qt.New(t)

	parent := Leaf{Pos: PositionFromSlice([]uint8{1})}
	child := Leaf{Pos: PositionFromSlice([]uint8{1, 2})}
	c.Assert(parent.Contains(child), qt.Equals, true)
	c.Assert(child.Contains(parent), qt.Equals, false)
}
