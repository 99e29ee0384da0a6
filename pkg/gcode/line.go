// Package gcode tokenizes the slicer-generated G-code lines the infill
// transform cares about.
//
// This is deliberately not a general G-code parser: it recognizes exactly
// three line shapes — vertical moves, region-type markers and extrusion
// moves — and treats everything else as opaque text. Arcs, alternative unit
// systems and exotic parameter layouts are out of scope; unrecognized lines
// are passed through verbatim by callers.
package gcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rdv0011/NonPlanarInfill/pkg/errors"
)

const (
	// MovePrefix marks linear move commands.
	MovePrefix = "G1"

	// RegionPrefix marks slicer region-type comments, e.g.
	// ";TYPE:Internal infill". Matching is case-sensitive.
	RegionPrefix = ";TYPE:"
)

// Move is an extrusion move parsed from a G1 line.
type Move struct {
	X float64
	Y float64
	E float64 // extruded filament length in mm
}

// Coordinate and extrusion tokens: optional sign, optional integer part,
// optional fraction ("-12.345", ".5", "10").
var (
	xPattern = regexp.MustCompile(`X([-+]?\d*\.?\d+)`)
	yPattern = regexp.MustCompile(`Y([-+]?\d*\.?\d+)`)
	ePattern = regexp.MustCompile(`E([-+]?\d*\.?\d+)`)
	zPattern = regexp.MustCompile(`Z([-+]?\d*\.?\d+)`)
)

// ParseMove matches line as an extrusion move carrying X, Y and E tokens.
// The tokens may appear in any order. ok is false when any token is absent;
// that is the normal branch for comments, travel moves and retractions, not
// an error. A non-nil error means a matched numeric group failed to parse
// as a float, which aborts the whole run.
func ParseMove(line string) (m Move, ok bool, err error) {
	if m.X, ok, err = matchFloat(xPattern, line); !ok || err != nil {
		return Move{}, false, err
	}
	if m.Y, ok, err = matchFloat(yPattern, line); !ok || err != nil {
		return Move{}, false, err
	}
	if m.E, ok, err = matchFloat(ePattern, line); !ok || err != nil {
		return Move{}, false, err
	}
	return m, true, nil
}

// ParseZ extracts the Z height from a vertical move line ("G1 ... Z0.4").
// Lines that do not start with the move prefix, or that carry no parsable
// Z token, report ok = false.
func ParseZ(line string) (z float64, ok bool, err error) {
	if !strings.HasPrefix(line, MovePrefix) || !strings.Contains(line, "Z") {
		return 0, false, nil
	}
	return matchFloat(zPattern, line)
}

// ParseRegion returns the region-type name of a ";TYPE:" marker line.
// The name is the remainder of the line with trailing whitespace stripped.
func ParseRegion(line string) (name string, ok bool) {
	if !strings.HasPrefix(line, RegionPrefix) {
		return "", false
	}
	return strings.TrimRight(line[len(RegionPrefix):], " \t\r\n"), true
}

// FormatMove renders a subdivided move with explicit X, Y, Z and E and
// fixed precision: three decimals for coordinates, five for extrusion.
func FormatMove(x, y, z, e float64) string {
	return fmt.Sprintf("G1 X%.3f Y%.3f Z%.3f E%.5f\n", x, y, z, e)
}

func matchFloat(p *regexp.Regexp, line string) (float64, bool, error) {
	groups := p.FindStringSubmatch(line)
	if groups == nil {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		return 0, false, errors.Wrap(errors.ErrCodeMalformedNumeric, err, "token %q", groups[0])
	}
	return v, true, nil
}
