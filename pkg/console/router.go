// Package console serves the admin console behind the security pipeline.
package console

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/adminguard/pkg/config"
	"github.com/rhuss/adminguard/pkg/observability"
)

// staticPrefixes are the resource directories served from Options.StaticDir.
var staticPrefixes = []string{"/images", "/scripts", "/styles"}

// Options configures the router.
type Options struct {
	Security config.SecurityConfig
	Metrics  config.MetricsConfig

	// StaticDir, when set, is served under the static prefixes.
	StaticDir string

	// Pipeline wraps every console route. Required.
	Pipeline func(http.Handler) http.Handler

	// App handles forwarded protected requests. Default: AppHandler.
	App http.Handler
}

// NewRouter creates the console router.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction so that logs carry the client address
//   - Panic recovery to prevent server crashes
//   - Request metrics
//
// Routes:
//   - GET /healthz - Liveness probe (outside the pipeline)
//   - GET <metrics path> - Prometheus exposition (outside the pipeline)
//   - <login path>, /access-denied, /page-not-found - console pages
//   - /images/*, /scripts/*, /styles/* - static resources
//   - /* - the console application
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.MetricsMiddleware("/healthz", opts.Metrics.Path))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if opts.Metrics.Enabled {
		r.Handle(opts.Metrics.Path, promhttp.Handler())
	}

	app := opts.App
	if app == nil {
		app = AppHandler()
	}

	r.Group(func(r chi.Router) {
		r.Use(opts.Pipeline)

		r.Handle(opts.Security.LoginPath, LoginPage(opts.Security))
		if opts.Security.AccessDeniedPath != "" {
			r.Handle(opts.Security.AccessDeniedPath, AccessDeniedPage())
		}
		r.Handle("/page-not-found", NotFoundPage())

		if opts.StaticDir != "" {
			files := http.FileServer(http.Dir(opts.StaticDir))
			for _, prefix := range staticPrefixes {
				r.Handle(prefix+"/*", files)
			}
		}

		r.Handle("/*", app)
	})

	return r
}
