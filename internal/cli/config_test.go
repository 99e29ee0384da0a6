package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	content := `
[modulation]
amplitude = 0.4
frequency = 1.3
segment_length = 0.5

[markers]
infill = ["Internal infill"]
solid = ["Solid infill", "Top solid infill"]

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Modulation.Amplitude == nil || *cfg.Modulation.Amplitude != 0.4 {
		t.Errorf("Amplitude = %v, want 0.4", cfg.Modulation.Amplitude)
	}
	if cfg.Modulation.Frequency == nil || *cfg.Modulation.Frequency != 1.3 {
		t.Errorf("Frequency = %v, want 1.3", cfg.Modulation.Frequency)
	}
	if cfg.Modulation.SegmentLength == nil || *cfg.Modulation.SegmentLength != 0.5 {
		t.Errorf("SegmentLength = %v, want 0.5", cfg.Modulation.SegmentLength)
	}
	if len(cfg.Markers.Solid) != 2 || cfg.Markers.Solid[1] != "Top solid infill" {
		t.Errorf("Solid markers = %v", cfg.Markers.Solid)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.RedisDB != 2 {
		t.Errorf("Cache config = %+v", cfg.Cache)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing config should not error: %v", err)
	}
	if cfg.Modulation.Amplitude != nil || cfg.Cache.Backend != "" {
		t.Errorf("missing config should be zero-valued, got %+v", cfg)
	}
}

func TestLoadConfigExplicitZeroAmplitude(t *testing.T) {
	// amplitude = 0.0 in the file is a setting, not an absent key.
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[modulation]\namplitude = 0.0\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Modulation.Amplitude == nil || *cfg.Modulation.Amplitude != 0 {
		t.Errorf("Amplitude = %v, want explicit 0", cfg.Modulation.Amplitude)
	}
	if cfg.Modulation.Frequency != nil {
		t.Errorf("Frequency = %v, want nil for absent key", cfg.Modulation.Frequency)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[modulation\namplitude = "), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("invalid TOML should return an error")
	}
}
