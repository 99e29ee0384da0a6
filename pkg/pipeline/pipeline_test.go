package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rdv0011/NonPlanarInfill/pkg/cache"
	"github.com/rdv0011/NonPlanarInfill/pkg/errors"
)

const sampleGCode = "G1 Z0.200 F9000\n" +
	";TYPE:Solid infill\n" +
	"G1 X0.000 Y0.000 E0.05000\n" +
	"G1 Z0.400 F9000\n" +
	";TYPE:Solid infill\n" +
	"G1 X1.000 Y0.000 E0.05000\n" +
	"G1 Z0.300 F9000\n" +
	";TYPE:Internal infill\n" +
	"G1 X0.000 Y0.000 E0.10000\n" +
	"G1 X2.000 Y0.000 E0.20000\n" +
	";TYPE:Perimeter\n" +
	"G1 X9.000 Y9.000 E0.30000\n"

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "print.gcode")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestProcessInPlace(t *testing.T) {
	path := writeSample(t, sampleGCode)
	r := NewRunner(nil, nil)

	result, err := r.Process(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Output != path {
		t.Errorf("Output = %q, want in-place rewrite of %q", result.Output, path)
	}
	if result.Stats.MovesSplit != 1 {
		t.Errorf("MovesSplit = %d, want 1", result.Stats.MovesSplit)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	content := string(data)
	// 0.3 + 0.6*0.5*sin(1.1) rounds to 0.567 at three decimals.
	if !strings.Contains(content, "G1 X1.000 Y0.000 Z0.567 E0.03333\n") {
		t.Errorf("expected modulated sub-move in output:\n%s", content)
	}
	if !strings.Contains(content, "G1 X9.000 Y9.000 E0.30000\n") {
		t.Error("perimeter move should pass through unchanged")
	}
	if strings.Contains(content, "G1 X0.000 Y0.000 E0.10000\n") {
		t.Error("paired source line should have been replaced")
	}
}

func TestProcessOutputFlag(t *testing.T) {
	path := writeSample(t, sampleGCode)
	out := filepath.Join(t.TempDir(), "modulated.gcode")
	r := NewRunner(nil, nil)

	result, err := r.Process(context.Background(), path, Options{Output: out})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Output != out {
		t.Errorf("Output = %q, want %q", result.Output, out)
	}

	original, _ := os.ReadFile(path)
	if string(original) != sampleGCode {
		t.Error("input file should be untouched when --output is set")
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestProcessNoInfillIsByteIdentical(t *testing.T) {
	content := "M104 S210\n" +
		"G1 Z0.200 F9000\n" +
		";TYPE:Perimeter\n" +
		"G1 X1.000 Y1.000 E0.05000\n" +
		"; last line without newline"
	path := writeSample(t, content)
	r := NewRunner(nil, nil)

	if _, err := r.Process(context.Background(), path, Options{}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != content {
		t.Errorf("file without internal infill changed:\n%q\nwant\n%q", data, content)
	}
}

func TestProcessMissingFile(t *testing.T) {
	r := NewRunner(nil, nil)
	_, err := r.Process(context.Background(), filepath.Join(t.TempDir(), "absent.gcode"), Options{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %q, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestProcessInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil)
	_, err := r.Process(context.Background(), "irrelevant", Options{SegmentLength: Float(-1)})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %q, want INVALID_INPUT", errors.GetCode(err))
	}
}

func TestProcessBytesZeroAmplitude(t *testing.T) {
	r := NewRunner(nil, nil)

	out, result, err := r.ProcessBytes(context.Background(), []byte(sampleGCode), Options{Amplitude: Float(0)})
	if err != nil {
		t.Fatalf("ProcessBytes: %v", err)
	}
	if result.Stats.MovesSplit != 1 {
		t.Errorf("MovesSplit = %d, want 1 (subdivision still happens at amplitude 0)", result.Stats.MovesSplit)
	}

	content := string(out)
	// Explicit zero must not fall back to the 0.6 default.
	if strings.Contains(content, "Z0.567") {
		t.Error("amplitude 0 was replaced by the default amplitude")
	}
	if !strings.Contains(content, "G1 X1.000 Y0.000 Z0.300 E0.03333\n") {
		t.Errorf("expected flat sub-move at the layer height:\n%s", content)
	}
}

func TestProcessBytesCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(fc, nil)

	first, res1, err := r.ProcessBytes(ctx, []byte(sampleGCode), Options{})
	if err != nil {
		t.Fatalf("first ProcessBytes: %v", err)
	}
	if res1.CacheHit {
		t.Error("first run should not be a cache hit")
	}

	second, res2, err := r.ProcessBytes(ctx, []byte(sampleGCode), Options{})
	if err != nil {
		t.Fatalf("second ProcessBytes: %v", err)
	}
	if !res2.CacheHit {
		t.Error("second run should be a cache hit")
	}
	if string(first) != string(second) {
		t.Error("cached result differs from computed result")
	}

	// Different amplitude misses the cache.
	_, res3, err := r.ProcessBytes(ctx, []byte(sampleGCode), Options{Amplitude: Float(0.3)})
	if err != nil {
		t.Fatalf("third ProcessBytes: %v", err)
	}
	if res3.CacheHit {
		t.Error("changed options should not hit the cache")
	}

	// Refresh bypasses the cache read.
	_, res4, err := r.ProcessBytes(ctx, []byte(sampleGCode), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh ProcessBytes: %v", err)
	}
	if res4.CacheHit {
		t.Error("refresh run should recompute")
	}
}

// TestProcessBytesCacheMarkerSensitivity: the marker vocabulary changes the
// output, so changing it must never reuse a result computed under other
// markers.
func TestProcessBytesCacheMarkerSensitivity(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(fc, nil)

	if _, _, err := r.ProcessBytes(ctx, []byte(sampleGCode), Options{}); err != nil {
		t.Fatalf("first ProcessBytes: %v", err)
	}

	// With a vocabulary that matches no region in the file, nothing is
	// internal infill and the bytes pass through untouched.
	out, res, err := r.ProcessBytes(ctx, []byte(sampleGCode),
		Options{InfillMarkers: []string{"Gyroid infill"}})
	if err != nil {
		t.Fatalf("second ProcessBytes: %v", err)
	}
	if res.CacheHit {
		t.Error("changed infill markers should not hit the cache")
	}
	if string(out) != sampleGCode {
		t.Errorf("unmatched markers should pass the file through:\n%s", out)
	}

	_, res2, err := r.ProcessBytes(ctx, []byte(sampleGCode),
		Options{SolidMarkers: []string{"Bridge infill"}})
	if err != nil {
		t.Fatalf("third ProcessBytes: %v", err)
	}
	if res2.CacheHit {
		t.Error("changed solid markers should not hit the cache")
	}
}

func TestInspect(t *testing.T) {
	path := writeSample(t, sampleGCode)
	r := NewRunner(nil, nil)

	report, err := r.Inspect(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	if len(report.SolidHeights) != 2 {
		t.Fatalf("SolidHeights = %v, want two entries", report.SolidHeights)
	}
	if report.InfillRegions != 1 {
		t.Errorf("InfillRegions = %d, want 1", report.InfillRegions)
	}
	if len(report.Layers) != 3 {
		t.Fatalf("Layers = %d, want 3 distinct heights", len(report.Layers))
	}

	mid := report.Layers[2]
	if mid.Z != 0.3 {
		t.Fatalf("third layer Z = %v, want 0.3", mid.Z)
	}
	if math.Abs(mid.Scaling-0.5) > 1e-9 {
		t.Errorf("scaling at 0.3 = %v, want 0.5", mid.Scaling)
	}

	// Inspect never modifies the file.
	data, _ := os.ReadFile(path)
	if string(data) != sampleGCode {
		t.Error("Inspect modified the file")
	}
}
