package gcode

import (
	"testing"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Move
		ok   bool
	}{
		{"plain move", "G1 X10.5 Y-3.2 E0.0421\n", Move{X: 10.5, Y: -3.2, E: 0.0421}, true},
		{"with feedrate", "G1 X1.000 Y2.000 E0.10000 F1800\n", Move{X: 1, Y: 2, E: 0.1}, true},
		{"reordered tokens", "G1 E0.5 X1 Y2\n", Move{X: 1, Y: 2, E: 0.5}, true},
		{"bare fraction", "G1 X.5 Y.25 E.1\n", Move{X: 0.5, Y: 0.25, E: 0.1}, true},
		{"integers", "G1 X10 Y20 E3\n", Move{X: 10, Y: 20, E: 3}, true},
		{"explicit plus sign", "G1 X+1.5 Y+2 E+0.2\n", Move{X: 1.5, Y: 2, E: 0.2}, true},
		{"retraction without coordinates", "G1 E-0.8 F2100\n", Move{}, false},
		{"travel move without extrusion", "G0 X5 Y5\n", Move{}, false},
		{"z only", "G1 Z0.4 F9000\n", Move{}, false},
		{"comment", "; infill starts here\n", Move{}, false},
		{"empty", "\n", Move{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseMove(tt.line)
			if err != nil {
				t.Fatalf("ParseMove(%q) error: %v", tt.line, err)
			}
			if ok != tt.ok {
				t.Fatalf("ParseMove(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseMove(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseZ(t *testing.T) {
	tests := []struct {
		name string
		line string
		want float64
		ok   bool
	}{
		{"layer change", "G1 Z0.400 F9000\n", 0.4, true},
		{"z with move", "G1 X1 Y2 Z1.25 E0.1\n", 1.25, true},
		{"negative z", "G1 Z-0.1\n", -0.1, true},
		{"no z token", "G1 X1 Y2 E0.1\n", 0, false},
		{"wrong command", "G28 Z\n", 0, false},
		{"comment mentioning z", ";Z seam aligned\n", 0, false},
		{"z without number", "G1 Z\n", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseZ(tt.line)
			if err != nil {
				t.Fatalf("ParseZ(%q) error: %v", tt.line, err)
			}
			if ok != tt.ok {
				t.Fatalf("ParseZ(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseZ(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		ok   bool
	}{
		{"internal infill", ";TYPE:Internal infill\n", "Internal infill", true},
		{"solid infill", ";TYPE:Solid infill\n", "Solid infill", true},
		{"perimeter", ";TYPE:Perimeter\n", "Perimeter", true},
		{"crlf ending", ";TYPE:Sparse infill\r\n", "Sparse infill", true},
		{"case sensitive", ";type:Internal infill\n", "", false},
		{"other comment", "; internal infill\n", "", false},
		{"move line", "G1 X1 Y2 E0.1\n", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRegion(tt.line)
			if ok != tt.ok {
				t.Fatalf("ParseRegion(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseRegion(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestFormatMove(t *testing.T) {
	got := FormatMove(1.0, 0.0, 0.3, 0.1/3)
	want := "G1 X1.000 Y0.000 Z0.300 E0.03333\n"
	if got != want {
		t.Errorf("FormatMove = %q, want %q", got, want)
	}

	// Coordinates round to three decimals, extrusion to five.
	got = FormatMove(1.23456, -2.98765, 10.0006, 0.000004)
	want = "G1 X1.235 Y-2.988 Z10.001 E0.00000\n"
	if got != want {
		t.Errorf("FormatMove = %q, want %q", got, want)
	}
}
