package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/rdv0011/NonPlanarInfill/pkg/errors"
	"github.com/rdv0011/NonPlanarInfill/pkg/pipeline"
)

// maxBodyBytes caps uploaded G-code. Sliced files for large prints run to
// tens of megabytes; 256 MiB leaves generous headroom.
const maxBodyBytes = 256 << 20

// newServeCmd creates the serve command, exposing the transform over HTTP
// so slicers on other machines (or a print farm) can post files to one
// shared instance with one shared cache.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the infill transform over HTTP",
		Long: `Run an HTTP server that modulates posted G-code.

Endpoints:
  POST /v1/process   body: raw G-code, response: modulated G-code
                     query: amplitude, frequency, segment_length, refresh
  GET  /healthz      liveness check

Example:
  curl --data-binary @print.gcode \
    'localhost:8080/v1/process?amplitude=0.4' > wavy.gcode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadDefaultConfig()
	if err != nil {
		return err
	}

	runner := runnerFor(ctx, cfg, false)
	defer runner.Cache.Close()

	base := pipeline.Options{
		Amplitude:     cfg.Modulation.Amplitude,
		Frequency:     cfg.Modulation.Frequency,
		SegmentLength: cfg.Modulation.SegmentLength,
		InfillMarkers: cfg.Markers.Infill,
		SolidMarkers:  cfg.Markers.Solid,
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(runner, base),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// newRouter builds the HTTP routes. Split out from runServe so tests can
// drive the handlers through httptest without binding a port.
func newRouter(runner *pipeline.Runner, base pipeline.Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/v1/process", func(w http.ResponseWriter, req *http.Request) {
		opts, err := requestOptions(req, base)
		if err != nil {
			writeError(w, err)
			return
		}

		body, err := readBody(req)
		if err != nil {
			writeError(w, err)
			return
		}

		out, result, err := runner.ProcessBytes(req.Context(), body, opts)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Run-Id", result.RunID)
		w.Header().Set("X-Input-Hash", result.InputHash)
		if result.CacheHit {
			w.Header().Set("X-Cache", "hit")
		} else {
			w.Header().Set("X-Cache", "miss")
		}
		w.WriteHeader(http.StatusOK)
		w.Write(out)
	})

	return r
}

// requestOptions overlays query parameters on the configured defaults. A
// present parameter always counts, so ?amplitude=0 requests flat output
// rather than falling back to the default.
func requestOptions(req *http.Request, base pipeline.Options) (pipeline.Options, error) {
	opts := base
	q := req.URL.Query()

	for name, dst := range map[string]**float64{
		"amplitude":      &opts.Amplitude,
		"frequency":      &opts.Frequency,
		"segment_length": &opts.SegmentLength,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, raw)
		}
		*dst = &v
	}
	opts.Refresh = q.Get("refresh") == "true" || q.Get("refresh") == "1"

	return opts, nil
}

func readBody(req *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(nil, req.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty request body")
	}
	return data, nil
}

// writeError renders an error as JSON with a status derived from its code.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeMalformedNumeric:
		status = http.StatusBadRequest
	case errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
