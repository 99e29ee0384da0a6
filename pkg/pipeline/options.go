// Package pipeline wires file I/O, caching and the infill transform into
// one reusable runner shared by the CLI and the HTTP surface.
//
// A run is two ordered stages over an in-memory copy of the file: a scan
// collecting every solid-infill height, then the rewrite pass. The input is
// read fully before the first stage and the result is written wholesale
// after the second, so an error never leaves a partially rewritten file.
package pipeline

import (
	"math"

	"github.com/rdv0011/NonPlanarInfill/pkg/errors"
	"github.com/rdv0011/NonPlanarInfill/pkg/modulate"
)

// Options contains all configuration for one processing run.
// This struct supports JSON serialization for HTTP requests.
//
// The numeric parameters are pointers so that "not set" and "explicitly
// zero" stay distinct: an amplitude of 0 is a legitimate request for flat
// (purely subdivided) output and must not fall back to the default.
type Options struct {
	// Modulation parameters; nil means use the built-in default.
	Amplitude     *float64 `json:"amplitude,omitempty"`
	Frequency     *float64 `json:"frequency,omitempty"`
	SegmentLength *float64 `json:"segment_length,omitempty"`

	// Region-marker names; defaults cover PrusaSlicer and OrcaSlicer.
	InfillMarkers []string `json:"infill_markers,omitempty"`
	SolidMarkers  []string `json:"solid_markers,omitempty"`

	// Output is the path to write; empty means rewrite the input in place.
	Output string `json:"output,omitempty"`

	// Refresh bypasses cache reads (the result is still stored).
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Float is a convenience for building Options literals.
func Float(v float64) *float64 {
	return &v
}

// ValidateAndSetDefaults checks option values and fills in defaults for
// unset (nil) parameters. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Amplitude == nil {
		o.Amplitude = Float(modulate.DefaultAmplitude)
	}
	if o.Frequency == nil {
		o.Frequency = Float(modulate.DefaultFrequency)
	}
	if o.SegmentLength == nil {
		o.SegmentLength = Float(modulate.DefaultSegmentLength)
	}
	if len(o.InfillMarkers) == 0 {
		o.InfillMarkers = modulate.DefaultMarkers().Infill
	}
	if len(o.SolidMarkers) == 0 {
		o.SolidMarkers = modulate.DefaultMarkers().Solid
	}

	for name, v := range map[string]float64{
		"amplitude":      *o.Amplitude,
		"frequency":      *o.Frequency,
		"segment_length": *o.SegmentLength,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be finite, got %v", name, v)
		}
	}
	if *o.SegmentLength <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "segment_length must be positive, got %v", *o.SegmentLength)
	}

	o.validated = true
	return nil
}

// modulation converts the options into transformer inputs.
func (o *Options) modulation() (modulate.Options, modulate.Markers) {
	return modulate.Options{
			Amplitude:     *o.Amplitude,
			Frequency:     *o.Frequency,
			SegmentLength: *o.SegmentLength,
		}, modulate.Markers{
			Infill: o.InfillMarkers,
			Solid:  o.SolidMarkers,
		}
}
