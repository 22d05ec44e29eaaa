package imagemetric

import "math"

// BBox is an axis-aligned bounding box in pixel coordinates.
type BBox struct {
	X1, Y1, X2, Y2 float64
}

// Valid reports whether the box is finite and has positive width and height.
func (b *BBox) Valid() bool {
	if b == nil {
		return false
	}
	for _, v := range [...]float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.X2 > b.X1 && b.Y2 > b.Y1
}

// Area returns the box area, or 0 for an invalid box.
func (b *BBox) Area() float64 {
	if !b.Valid() {
		return 0
	}
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}
