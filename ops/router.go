// SPDX-License-Identifier: MIT

// Package ops exposes operational HTTP endpoints: health checks, Prometheus
// metrics, runtime log-level control, and a masked configuration snapshot.
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ManuGH/genutil/conf"
	"github.com/ManuGH/genutil/log"
	"github.com/ManuGH/genutil/metrics"
)

// HealthCheck probes one dependency. A non-nil error marks the service
// unhealthy.
type HealthCheck func(ctx context.Context) error

// Options configures the operational router.
type Options struct {
	// Config, when set, enables GET /config returning the masked snapshot.
	Config *conf.Config
	// Metrics, when set, serves its registry on GET /metrics. Nil falls back
	// to the default Prometheus handler.
	Metrics *metrics.Registry
	// HealthChecks run on GET /healthz, keyed by dependency name.
	HealthChecks map[string]HealthCheck
	// HealthTimeout bounds each individual check. Zero means 5s.
	HealthTimeout time.Duration
	// RateLimit caps requests per client IP per minute. Zero disables.
	RateLimit int
}

// Router builds a chi router serving the operational endpoints.
func Router(opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(AccessLog)
	if opts.RateLimit > 0 {
		r.Use(httprate.Limit(opts.RateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP)))
	}

	r.Get("/healthz", healthHandler(opts))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	} else {
		r.Method(http.MethodGet, "/metrics", metrics.DefaultHandler())
	}

	r.Get("/loglevels", listLevels)
	r.Put("/loglevels/{component}", setLevel)
	r.Delete("/loglevels/{component}", resetLevel)

	if opts.Config != nil {
		r.Get("/config", configHandler(opts.Config))
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(opts Options) http.HandlerFunc {
	timeout := opts.HealthTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if len(opts.HealthChecks) > 0 {
			resp.Checks = make(map[string]string, len(opts.HealthChecks))
		}

		code := http.StatusOK
		for name, check := range opts.HealthChecks {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			err := check(ctx)
			cancel()
			if err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
			} else {
				resp.Checks[name] = "ok"
			}
		}
		writeJSON(w, code, resp)
	}
}

func listLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, log.Levels.Snapshot())
}

type levelRequest struct {
	Level string `json:"level"`
}

func setLevel(w http.ResponseWriter, r *http.Request) {
	component := chi.URLParam(r, "component")

	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := log.Levels.Set(component, req.Level); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "ops")
	logger.Info().
		Str(log.FieldComponent, component).
		Str("level", req.Level).
		Msg("log level updated")
	writeJSON(w, http.StatusOK, log.Levels.Snapshot())
}

func resetLevel(w http.ResponseWriter, r *http.Request) {
	component := chi.URLParam(r, "component")
	log.Levels.Reset(component)
	writeJSON(w, http.StatusOK, log.Levels.Snapshot())
}

func configHandler(cfg *conf.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cfg.Snapshot())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
