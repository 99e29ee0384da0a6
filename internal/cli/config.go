package cli

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the optional TOML configuration loaded from
// ~/.config/nonplanar/config.toml. Flags override config values and config
// values override the built-in defaults; every section may be omitted.
//
// Example:
//
//	[modulation]
//	amplitude = 0.4
//	frequency = 1.3
//	segment_length = 0.5
//
//	[markers]
//	infill = ["Internal infill", "Sparse infill"]
//	solid = ["Solid infill", "Internal solid infill", "Top solid infill"]
//
//	[cache]
//	backend = "redis"     # "file" (default), "redis" or "none"
//	redis_addr = "localhost:6379"
type Config struct {
	// Pointers keep "key absent" distinct from an explicit 0, which is a
	// valid amplitude or frequency.
	Modulation struct {
		Amplitude     *float64 `toml:"amplitude"`
		Frequency     *float64 `toml:"frequency"`
		SegmentLength *float64 `toml:"segment_length"`
	} `toml:"modulation"`

	Markers struct {
		Infill []string `toml:"infill"`
		Solid  []string `toml:"solid"`
	} `toml:"markers"`

	Cache struct {
		Backend       string `toml:"backend"`
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
	} `toml:"cache"`
}

// loadConfig reads the config file at path. A missing file is not an
// error: the zero Config keeps every built-in default.
func loadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDefaultConfig loads the user's config file, tolerating a missing
// home directory by returning an empty config.
func loadDefaultConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return &Config{}, nil
	}
	return loadConfig(path)
}
