package pipeline

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/rdv0011/NonPlanarInfill/pkg/cache"
	"github.com/rdv0011/NonPlanarInfill/pkg/errors"
	"github.com/rdv0011/NonPlanarInfill/pkg/modulate"
)

// Runner executes processing runs with caching. It is stateless except for
// the cache and logger, so one Runner can serve many runs.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching (NullCache) and
// a nil logger falls back to the default logger.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Result describes one completed run.
type Result struct {
	// RunID correlates log lines, cache writes and HTTP responses.
	RunID string

	// InputHash is the SHA-256 of the input bytes.
	InputHash string

	// Output is the path written (empty for in-memory runs).
	Output string

	// Stats summarizes the transform. Zero when the result came from cache.
	Stats modulate.Stats

	// CacheHit reports whether the transform was skipped entirely.
	CacheHit bool

	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration
}

// Process reads the file at path, transforms it and writes the result to
// opts.Output (the input path itself when empty — in-place rewrite: the
// original content is destroyed on success). Input-access failures abort
// before any processing and the file is never partially written.
func (r *Runner) Process(ctx context.Context, path string, opts Options) (*Result, error) {
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

	out, result, err := r.ProcessBytes(ctx, data, opts)
	if err != nil {
		return nil, err
	}

	target := opts.Output
	if target == "" {
		target = path
	}
	if err := os.WriteFile(target, out, 0644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", target)
	}
	result.Output = target

	r.Logger.Info("wrote result",
		"run", result.RunID,
		"path", target,
		"bytes", len(out))
	return result, nil
}

// ProcessBytes transforms an in-memory G-code document. It backs both
// Process and the HTTP surface, which never touches the file system.
func (r *Runner) ProcessBytes(ctx context.Context, data []byte, opts Options) ([]byte, *Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(data),
	}
	logger := r.Logger.With("run", result.RunID)

	key := cache.ResultKey(result.InputHash,
		*opts.Amplitude, *opts.Frequency, *opts.SegmentLength,
		opts.InfillMarkers, opts.SolidMarkers)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			result.CacheHit = true
			result.Elapsed = time.Since(start)
			logger.Debug("cache hit", "key", key)
			return cached, result, nil
		}
	}

	opt, markers := opts.modulation()
	out, stats, err := modulate.NewTransformer(opt, markers).Transform(splitLines(data))
	if err != nil {
		return nil, nil, err
	}
	result.Stats = *stats

	logger.Info("collected solid layers",
		"heights", stats.SolidHeights,
		"duration", stats.ScanTime)
	logger.Info("modulated infill",
		"regions", stats.InfillRegions,
		"moves", stats.MovesSplit,
		"points", stats.PointsEmitted,
		"duration", stats.TransformTime)

	joined := []byte(strings.Join(out, ""))
	if err := r.Cache.Set(ctx, key, joined, cache.DefaultTTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	}

	result.Elapsed = time.Since(start)
	return joined, result, nil
}

// splitLines splits data into lines, keeping each line's terminator so
// untouched lines survive byte-identical, including a final line without
// a trailing newline.
func splitLines(data []byte) []string {
	lines := strings.SplitAfter(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
