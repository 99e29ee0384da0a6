package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rdv0011/NonPlanarInfill/pkg/modulate"
	"github.com/rdv0011/NonPlanarInfill/pkg/pipeline"
)

// processOpts holds the command-line flags for the process command.
type processOpts struct {
	amplitude     float64
	frequency     float64
	segmentLength float64
	output        string
	noCache       bool
	refresh       bool
}

// newProcessCmd creates the process command, the tool's main operation:
// rewrite a sliced G-code file with non-planar infill modulation.
//
// The input file is overwritten on success unless --output is given —
// the same contract slicers expect from their post-processing scripts.
func newProcessCmd() *cobra.Command {
	opts := processOpts{}

	cmd := &cobra.Command{
		Use:   "process <file.gcode>",
		Short: "Rewrite a G-code file with non-planar infill",
		Long: `Rewrite internal-infill extrusion moves as sine-modulated non-planar
paths. The file is rewritten in place unless --output is given.

Examples:
  nonplanar process print.gcode
  nonplanar process -a 0.4 -f 1.5 print.gcode
  nonplanar process --output wavy.gcode print.gcode`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, &opts, args[0])
		},
	}

	cmd.Flags().Float64VarP(&opts.amplitude, "amplitude", "a", modulate.DefaultAmplitude, "peak Z deviation in mm")
	cmd.Flags().Float64VarP(&opts.frequency, "frequency", "f", modulate.DefaultFrequency, "sine frequency along X")
	cmd.Flags().Float64Var(&opts.segmentLength, "segment-length", modulate.DefaultSegmentLength, "subdivision length in mm")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write here instead of rewriting the input")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

func runProcess(cmd *cobra.Command, opts *processOpts, path string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadDefaultConfig()
	if err != nil {
		return err
	}

	popts := pipelineOptions(cmd, opts, cfg)
	popts.Output = opts.output
	popts.Refresh = opts.refresh

	runner := runnerFor(ctx, cfg, opts.noCache)
	defer runner.Cache.Close()

	logger.Infof("Processing %s", path)

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Modulating %s", path))
	spin.Start()
	prog := newProgress(logger)
	result, err := runner.Process(ctx, path, popts)
	spin.Stop()
	if err != nil {
		return err
	}

	if result.CacheHit {
		prog.done("Reused cached result")
	} else {
		prog.done(fmt.Sprintf("Modulated %d moves across %d infill sections",
			result.Stats.MovesSplit, result.Stats.InfillRegions))
	}

	printSuccess("Non-planar infill written")
	printFile(result.Output)
	printRunStats(result)
	return nil
}

// pipelineOptions merges flags over config over built-in defaults. Only
// flags the user actually set count as set, so an explicit `-a 0` wins over
// the config file and an explicit `amplitude = 0` there wins over the
// built-in default.
func pipelineOptions(cmd *cobra.Command, opts *processOpts, cfg *Config) pipeline.Options {
	return pipeline.Options{
		Amplitude:     mergeFloat(cmd, "amplitude", opts.amplitude, cfg.Modulation.Amplitude),
		Frequency:     mergeFloat(cmd, "frequency", opts.frequency, cfg.Modulation.Frequency),
		SegmentLength: mergeFloat(cmd, "segment-length", opts.segmentLength, cfg.Modulation.SegmentLength),
		InfillMarkers: cfg.Markers.Infill,
		SolidMarkers:  cfg.Markers.Solid,
	}
}

// mergeFloat resolves one numeric option: explicit flag, then config value,
// then nil to let the pipeline apply its default.
func mergeFloat(cmd *cobra.Command, flag string, flagValue float64, cfgValue *float64) *float64 {
	if cmd.Flags().Changed(flag) {
		return &flagValue
	}
	return cfgValue
}
