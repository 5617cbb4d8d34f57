// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "math"

// BBox is an axis-aligned bounding box in page-pixel coordinates, with the
// origin at the top-left corner and Y increasing downward (raster convention).
type BBox struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// NewBBox builds a box from two corner points, normalizing the order.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Width returns the horizontal extent.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Area returns the box area.
func (b BBox) Area() float64 { return b.Width() * b.Height() }

// IsEmpty reports whether the box has no positive area.
func (b BBox) IsEmpty() bool { return b.X1 <= b.X0 || b.Y1 <= b.Y0 }

// Contains reports whether other lies entirely within b (edges inclusive).
func (b BBox) Contains(other BBox) bool {
	return other.X0 >= b.X0 && other.Y0 >= b.Y0 &&
		other.X1 <= b.X1 && other.Y1 <= b.Y1
}

// Union returns the smallest box covering both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Pad expands the box by margin on every side.
func (b BBox) Pad(margin float64) BBox {
	return BBox{X0: b.X0 - margin, Y0: b.Y0 - margin, X1: b.X1 + margin, Y1: b.Y1 + margin}
}

// Clamp restricts the box to lie within bounds.
func (b BBox) Clamp(bounds BBox) BBox {
	return BBox{
		X0: math.Max(b.X0, bounds.X0),
		Y0: math.Max(b.Y0, bounds.Y0),
		X1: math.Min(b.X1, bounds.X1),
		Y1: math.Min(b.Y1, bounds.Y1),
	}
}

// Offset translates the box by (dx, dy).
func (b BBox) Offset(dx, dy float64) BBox {
	return BBox{X0: b.X0 + dx, Y0: b.Y0 + dy, X1: b.X1 + dx, Y1: b.Y1 + dy}
}
