// Command alignserve exposes the registration pipeline over a small JSON API.
//
//	alignserve -config alignserve.yaml
//
// Routes:
//
//	POST /api/weights  {"method","scale","shape","residuals":[...]}
//	POST /api/align    {"source":[[x,y,z]...],"target":[...],"normals":[...]}
//	GET  /api/status
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pointalign/pointalign/pkg/errors"
	"github.com/pointalign/pointalign/pkg/log"
	"github.com/pointalign/pointalign/registration"
	"github.com/pointalign/pointalign/robust"
	"github.com/pointalign/pointalign/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config failed", log.ErrAttr(err))
			os.Exit(1)
		}
		cfg = loaded
	}

	log.SetupLogger(cfg.LogLevel)

	handler := server.NewRequestHandler(map[string]server.HandlerFunc{
		"/api/status":  statusHandler(cfg),
		"/api/weights": weightsHandler(cfg),
		"/api/align":   alignHandler(cfg),
	})

	slog.Info("alignserve listening",
		"addr", cfg.Listen,
		log.KernelMethodKey, cfg.Kernel.Method.String(),
		log.KernelScaleKey, cfg.Kernel.Scale,
	)
	if err := http.ListenAndServe(cfg.Listen, handler); err != nil {
		slog.Error("server stopped", log.ErrAttr(err))
		os.Exit(1)
	}
}

func statusHandler(cfg Config) server.HandlerFunc {
	return func(_ *http.Request, _ map[string]any) any {
		return map[string]any{
			"kernel": cfg.Kernel.Method.String(),
			"scale":  cfg.Kernel.Scale,
			"shape":  cfg.Kernel.Shape,
		}
	}
}

// weightsHandler evaluates the configured (or request-overridden) robust
// kernel over a batch of residuals.
func weightsHandler(cfg Config) server.HandlerFunc {
	return func(_ *http.Request, msg map[string]any) any {
		kernel := kernelFromMessage(msg, cfg.Kernel.kernel())

		weight, err := robust.Resolve[float64](kernel)
		if err != nil {
			return map[string]any{"error": err.Error()}
		}

		residuals := floatSlice(msg["residuals"])
		weights := make([]float64, len(residuals))
		for i, r := range residuals {
			weights[i] = weight(r)
		}
		return map[string]any{
			"method":  kernel.Method.String(),
			"weights": weights,
		}
	}
}

func alignHandler(cfg Config) server.HandlerFunc {
	return func(_ *http.Request, msg map[string]any) any {
		src := pointSlice(msg["source"])
		tgt := pointSlice(msg["target"])
		normals := pointSlice(msg["normals"])
		if len(src) == 0 || len(tgt) == 0 {
			return map[string]any{"error": errors.ErrEmptyData.Error()}
		}

		result, err := registration.ICPPointToPlane(src, tgt, normals,
			registration.WithKernel(kernelFromMessage(msg, cfg.Kernel.kernel())),
			registration.WithMaxIterations(cfg.ICP.MaxIterations),
			registration.WithTolerance(cfg.ICP.Tolerance),
			registration.WithCorrespondenceDistance(cfg.ICP.MaxCorrespondenceDistance),
		)
		if err != nil {
			return map[string]any{"error": err.Error()}
		}

		flat := make([]float64, 0, 16)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				flat = append(flat, result.Transformation.At(i, j))
			}
		}
		return map[string]any{
			"transformation": flat,
			"fitness":        result.Fitness,
			"inlier_rmse":    result.InlierRMSE,
			"iterations":     result.Iterations,
			"converged":      result.Converged,
		}
	}
}

// kernelFromMessage applies per-request kernel overrides onto the configured
// default. Unknown method names fall back to the default.
func kernelFromMessage(msg map[string]any, def robust.Kernel) robust.Kernel {
	kernel := def
	if name, ok := msg["method"].(string); ok {
		if m, err := robust.ParseMethod(name); err == nil {
			kernel.Method = m
		} else {
			slog.Warn("unknown kernel method in request", "method", name)
		}
	}
	if scale, ok := msg["scale"].(float64); ok {
		kernel.Scale = scale
	}
	if shape, ok := msg["shape"].(float64); ok {
		kernel.Shape = shape
	}
	return kernel
}

func floatSlice(v any) []float64 {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, e := range raw {
		f, ok := e.(float64)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}

func pointSlice(v any) []r3.Vec {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]r3.Vec, 0, len(raw))
	for _, e := range raw {
		coords := floatSlice(e)
		if len(coords) != 3 {
			return nil
		}
		out = append(out, r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]})
	}
	return out
}
