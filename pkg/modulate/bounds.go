package modulate

import "math"

// Bounds tracks the nearest solid-infill heights below and above the
// current layer. Top is seeded to +Inf before the first update; a side with
// no recorded candidate keeps its previous value, so Bottom starts at 0 and
// Top at infinity until solid layers bracket the current height.
type Bounds struct {
	Bottom float64
	Top    float64
}

// NewBounds returns bounds seeded for a fresh file scan.
func NewBounds() Bounds {
	return Bounds{Bottom: 0, Top: math.Inf(1)}
}

// Update recomputes the bounds for z against the recorded solid-infill
// heights: Bottom becomes the greatest height strictly below z and Top the
// smallest height strictly above z. A side without a candidate is left
// unchanged. Callers recompute eagerly on every vertical move.
func (b *Bounds) Update(heights []float64, z float64) {
	bottom := math.Inf(-1)
	top := math.Inf(1)
	for _, h := range heights {
		if h < z && h > bottom {
			bottom = h
		}
		if h > z && h < top {
			top = h
		}
	}
	if !math.IsInf(bottom, -1) {
		b.Bottom = bottom
	}
	if !math.IsInf(top, 1) {
		b.Top = top
	}
}

// Scaling returns the amplitude scale for z: the distance to the nearest
// bound divided by the span between the bounds. It is 0 when z sits exactly
// on a bound and 0 while Top still holds its seeded infinity (the span is
// then infinite), which suppresses modulation near solid layers and before
// any solid layer has been seen above.
func (b Bounds) Scaling(z float64) float64 {
	return math.Min(b.Top-z, z-b.Bottom) / (b.Top - b.Bottom)
}
