package modulate

import "math"

// Point is a 2D coordinate generated while subdividing a move. Points are
// ephemeral: they exist only during the transformation of one move pair.
type Point struct {
	X float64
	Y float64
}

// SegmentLine subdivides the line (x1,y1)→(x2,y2) into evenly spaced points
// no further apart than segmentLength. The result always holds at least two
// points: the first is exactly (x1,y1) and the last exactly (x2,y2).
// Coincident endpoints yield two identical points rather than one.
func SegmentLine(x1, y1, x2, y2, segmentLength float64) []Point {
	total := math.Hypot(x2-x1, y2-y1)
	n := int(total / segmentLength)
	if n < 1 {
		n = 1
	}

	points := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		points = append(points, Point{
			X: x1 + t*(x2-x1),
			Y: y1 + t*(y2-y1),
		})
	}
	return points
}
