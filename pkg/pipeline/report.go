package pipeline

import (
	"context"
	"os"
	"slices"

	"github.com/rdv0011/NonPlanarInfill/pkg/errors"
	"github.com/rdv0011/NonPlanarInfill/pkg/gcode"
	"github.com/rdv0011/NonPlanarInfill/pkg/modulate"
)

// Report describes a file without modifying it: how many layers it has,
// where the solid skins sit and how strongly each layer would be modulated.
type Report struct {
	Path          string
	Lines         int
	SolidHeights  []float64
	InfillRegions int
	Layers        []LayerInfo
}

// LayerInfo is the modulation context of one distinct Z height, in the
// order the heights first appear in the file.
type LayerInfo struct {
	Z       float64
	Bottom  float64 // nearest solid height below (0 when none seen)
	Top     float64 // nearest solid height above (+Inf when none)
	Scaling float64 // amplitude scale that infill at this Z would receive
}

// Inspect runs the height-collection pass and a classification pass but
// emits nothing: it reports what Process would do to the file.
func (r *Runner) Inspect(ctx context.Context, path string, opts Options) (*Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}

	_, markers := opts.modulation()
	lines := splitLines(data)

	heights, err := modulate.SolidHeights(lines, markers)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Path:         path,
		Lines:        len(lines),
		SolidHeights: heights,
	}

	bounds := modulate.NewBounds()
	seen := make(map[float64]bool)
	inInfill := false
	for _, line := range lines {
		if z, ok, err := gcode.ParseZ(line); err != nil {
			return nil, err
		} else if ok {
			bounds.Update(heights, z)
			if !seen[z] {
				seen[z] = true
				report.Layers = append(report.Layers, LayerInfo{
					Z:       z,
					Bottom:  bounds.Bottom,
					Top:     bounds.Top,
					Scaling: bounds.Scaling(z),
				})
			}
		}
		if name, ok := gcode.ParseRegion(line); ok {
			entering := slices.Contains(markers.Infill, name)
			if entering && !inInfill {
				report.InfillRegions++
			}
			inInfill = entering
		}
	}

	return report, nil
}
