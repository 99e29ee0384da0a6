// Package modulate rewrites straight internal-infill extrusion moves into
// wavy, non-planar paths. The Z coordinate of each emitted sub-move follows
// a sine of its X coordinate whose amplitude tapers to zero at the nearest
// solid top/bottom layers, so the waviness never breaks through solid skins.
//
// Processing is strictly sequential and single-threaded: one pass collects
// the heights of all solid-infill regions, a second pass classifies lines,
// subdivides qualifying move pairs and emits replacements. Lines the
// tokenizer does not recognize pass through byte-identical.
package modulate

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rdv0011/NonPlanarInfill/pkg/errors"
	"github.com/rdv0011/NonPlanarInfill/pkg/gcode"
)

// Default modulation parameters.
const (
	DefaultAmplitude     = 0.6 // peak Z deviation in mm
	DefaultFrequency     = 1.1 // angular coefficient applied to X inside the sine
	DefaultSegmentLength = 1.0 // target subdivision length in mm
)

// Options control the sine modulation applied to infill moves.
type Options struct {
	Amplitude     float64
	Frequency     float64
	SegmentLength float64
}

// DefaultOptions returns the baseline modulation parameters.
func DefaultOptions() Options {
	return Options{
		Amplitude:     DefaultAmplitude,
		Frequency:     DefaultFrequency,
		SegmentLength: DefaultSegmentLength,
	}
}

// Markers names the region types the classifier reacts to. Both PrusaSlicer
// and OrcaSlicer vocabularies are covered by the defaults; additional
// spellings can be appended via configuration.
type Markers struct {
	// Infill region names entering the internal-infill state.
	Infill []string
	// Solid region names whose starting Z heights bound the modulation.
	Solid []string
}

// DefaultMarkers returns the recognized slicer region names.
func DefaultMarkers() Markers {
	return Markers{
		Infill: []string{"Internal infill", "Sparse infill"},
		Solid:  []string{"Solid infill", "Internal solid infill"},
	}
}

// Stats summarizes one transform run.
type Stats struct {
	Lines         int           // input lines scanned
	SolidHeights  int           // solid-infill heights collected in pass 1
	InfillRegions int           // internal-infill sections entered
	MovesSplit    int           // move pairs subdivided
	PointsEmitted int           // sub-moves written in place of pairs
	ScanTime      time.Duration // pass 1 duration
	TransformTime time.Duration // pass 2 duration
}

// Transformer rewrites internal-infill extrusion moves. It owns no I/O:
// callers hand it the full line sequence (terminators included) and receive
// the rewritten sequence.
type Transformer struct {
	opts    Options
	markers Markers
}

// NewTransformer creates a transformer with the given modulation options
// and region markers. Amplitude and frequency are taken literally — zero
// is a valid request for flat subdivided output (see DefaultOptions for the
// baseline values). A non-positive segment length would make subdivision
// degenerate and falls back to the default; empty marker lists fall back to
// the recognized slicer names.
func NewTransformer(opts Options, markers Markers) *Transformer {
	if opts.SegmentLength <= 0 {
		opts.SegmentLength = DefaultSegmentLength
	}
	if len(markers.Infill) == 0 {
		markers.Infill = DefaultMarkers().Infill
	}
	if len(markers.Solid) == 0 {
		markers.Solid = DefaultMarkers().Solid
	}
	return &Transformer{opts: opts, markers: markers}
}

// state is the processing context carried across the line scan.
type state struct {
	z        float64
	inInfill bool
	bounds   Bounds
	phase    float64 // saved horizontal continuation, zeroed on every layer change
}

// Transform runs both passes over lines and returns the rewritten sequence.
// Pass 2 does not start until pass 1 has scanned the entire input: the
// amplitude scaling needs global knowledge of every solid-infill height,
// not just the ones seen so far.
func (t *Transformer) Transform(lines []string) ([]string, *Stats, error) {
	stats := &Stats{Lines: len(lines)}

	start := time.Now()
	heights, err := SolidHeights(lines, t.markers)
	if err != nil {
		return nil, nil, err
	}
	stats.SolidHeights = len(heights)
	stats.ScanTime = time.Since(start)

	start = time.Now()
	out, err := t.rewrite(lines, heights, stats)
	if err != nil {
		return nil, nil, err
	}
	stats.TransformTime = time.Since(start)
	return out, stats, nil
}

// SolidHeights scans lines once and collects the Z height current at the
// start of every solid-infill region. The result is read-only input for the
// rewrite pass; duplicates are harmless.
func SolidHeights(lines []string, markers Markers) ([]float64, error) {
	var heights []float64
	z := 0.0
	for i, line := range lines {
		nz, ok, err := gcode.ParseZ(line)
		if err != nil {
			return nil, lineError(i, line, err)
		}
		if ok {
			z = nz
		}
		if name, ok := gcode.ParseRegion(line); ok && slices.Contains(markers.Solid, name) {
			heights = append(heights, z)
		}
	}
	return heights, nil
}

// rewrite is pass 2: classify, pair, subdivide and emit.
func (t *Transformer) rewrite(lines []string, heights []float64, stats *Stats) ([]string, error) {
	out := make([]string, 0, len(lines))
	st := state{bounds: NewBounds()}
	consumed := -1 // index already emitted as the second half of a pair

	for i, line := range lines {
		// Vertical moves update the layer context regardless of region
		// state: recompute the bounds eagerly and drop any modulation
		// continuation carried from the previous layer.
		z, ok, err := gcode.ParseZ(line)
		if err != nil {
			return nil, lineError(i, line, err)
		}
		if ok {
			st.z = z
			st.phase = 0
			st.bounds.Update(heights, z)
		}

		// Region markers: enter on an internal-infill name, leave on any
		// other region type. A "leave" marker does not exist in slicer
		// output; infill ends where the next region begins.
		if name, ok := gcode.ParseRegion(line); ok {
			entering := slices.Contains(t.markers.Infill, name)
			if entering && !st.inInfill {
				stats.InfillRegions++
			}
			st.inInfill = entering
		}

		// A line already consumed as the "next" half of a pair was replaced
		// by that pair's sub-moves; it must not be re-processed or emitted.
		if i == consumed {
			continue
		}

		if st.inInfill {
			cur, ok, err := gcode.ParseMove(line)
			if err != nil {
				return nil, lineError(i, line, err)
			}
			if ok && i+1 < len(lines) {
				next, ok, err := gcode.ParseMove(lines[i+1])
				if err != nil {
					return nil, lineError(i+1, lines[i+1], err)
				}
				if ok {
					sub := t.subdivide(cur, next, &st)
					out = append(out, sub...)
					consumed = i + 1
					stats.MovesSplit++
					stats.PointsEmitted += len(sub)
					continue
				}
			}
		}

		out = append(out, line)
	}
	return out, nil
}

// subdivide replaces the motion cur→next with amplitude-scaled sub-moves.
// The original extrusion amount is divided evenly across the generated
// points (the point count, one more than the span count — this matches the
// established material-flow calibration and must not be "corrected").
func (t *Transformer) subdivide(cur, next gcode.Move, st *state) []string {
	points := SegmentLine(cur.X, cur.Y, next.X, next.Y, t.opts.SegmentLength)
	perPoint := cur.E / float64(len(points))
	scale := st.bounds.Scaling(st.z)

	out := make([]string, len(points))
	for i, p := range points {
		z := st.z + t.opts.Amplitude*scale*math.Sin(t.opts.Frequency*p.X)
		out[i] = gcode.FormatMove(p.X, p.Y, z, perPoint)
	}
	return out
}

func lineError(idx int, line string, err error) error {
	return errors.Wrap(errors.ErrCodeMalformedNumeric, err,
		"line %d: %q", idx+1, strings.TrimRight(line, "\r\n"))
}
