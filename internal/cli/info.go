package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/rdv0011/NonPlanarInfill/pkg/pipeline"
)

// newInfoCmd creates the info command: a dry inspection that reports what
// processing would do without writing anything.
func newInfoCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "info <file.gcode>",
		Short: "Report layers, solid heights and modulation scaling",
		Long: `Scan a G-code file and report its layer structure: solid-infill heights,
internal-infill sections and the amplitude scaling each layer would receive.
The file is never modified.

With --interactive, browse the layers in a scrollable terminal view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0], interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse layers interactively")

	return cmd
}

func runInfo(cmd *cobra.Command, path string, interactive bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadDefaultConfig()
	if err != nil {
		return err
	}

	runner := runnerFor(ctx, cfg, true)
	opts := pipeline.Options{
		InfillMarkers: cfg.Markers.Infill,
		SolidMarkers:  cfg.Markers.Solid,
	}

	prog := newProgress(logger)
	report, err := runner.Inspect(ctx, path, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Scanned %d lines", report.Lines))

	if interactive {
		return browseLayers(report)
	}

	printKeyValue("File", report.Path)
	printKeyValue("Lines", fmt.Sprintf("%d", report.Lines))
	printKeyValue("Layers", fmt.Sprintf("%d", len(report.Layers)))
	printKeyValue("Solid", fmt.Sprintf("%d heights", len(report.SolidHeights)))
	printKeyValue("Infill", fmt.Sprintf("%d sections", report.InfillRegions))
	printNewline()

	for _, layer := range report.Layers {
		printDetail("Z %7.3f  %s  scale %.2f", layer.Z, formatBounds(layer), layer.Scaling)
	}
	return nil
}

// formatBounds renders a layer's solid bounds, eliding an unset top.
func formatBounds(l pipeline.LayerInfo) string {
	if math.IsInf(l.Top, 1) {
		return fmt.Sprintf("bounds [%.3f, none]", l.Bottom)
	}
	return fmt.Sprintf("bounds [%.3f, %.3f]", l.Bottom, l.Top)
}
