package modulate

import (
	"math"
	"testing"
)

func TestSegmentLineEndpoints(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		segLen         float64
		wantPoints     int
	}{
		{"two mm horizontal", 0, 0, 2, 0, 1.0, 3},
		{"shorter than segment", 0, 0, 0.5, 0, 1.0, 2},
		{"exactly one segment", 0, 0, 1, 0, 1.0, 2},
		{"diagonal", 0, 0, 3, 4, 1.0, 6}, // length 5
		{"negative direction", 5, 5, 1, 5, 1.0, 5},
		{"fine subdivision", 0, 0, 1, 0, 0.25, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := SegmentLine(tt.x1, tt.y1, tt.x2, tt.y2, tt.segLen)
			if len(pts) != tt.wantPoints {
				t.Fatalf("got %d points, want %d", len(pts), tt.wantPoints)
			}
			if len(pts) < 2 {
				t.Fatal("segmentation must yield at least two points")
			}
			first, last := pts[0], pts[len(pts)-1]
			if first.X != tt.x1 || first.Y != tt.y1 {
				t.Errorf("first point = %+v, want (%v, %v)", first, tt.x1, tt.y1)
			}
			if last.X != tt.x2 || last.Y != tt.y2 {
				t.Errorf("last point = %+v, want (%v, %v)", last, tt.x2, tt.y2)
			}
		})
	}
}

func TestSegmentLineSpacing(t *testing.T) {
	pts := SegmentLine(0, 0, 2, 0, 1.0)
	want := []Point{{0, 0}, {1, 0}, {2, 0}}
	for i, p := range pts {
		if math.Abs(p.X-want[i].X) > 1e-12 || math.Abs(p.Y-want[i].Y) > 1e-12 {
			t.Errorf("point %d = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestSegmentLineZeroLength(t *testing.T) {
	// Coincident endpoints still yield two identical points, never a
	// division by zero or a single point.
	pts := SegmentLine(3, 7, 3, 7, 1.0)
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2", len(pts))
	}
	for i, p := range pts {
		if p.X != 3 || p.Y != 7 {
			t.Errorf("point %d = %+v, want (3, 7)", i, p)
		}
	}
}
