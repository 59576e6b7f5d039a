package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

// Options carries the router-level knobs that come from configuration.
type Options struct {
	Logger          infra.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	SecureCookies   bool

	// StaticDir, when set, is served under /files for the filesystem
	// storage backend.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.Session(opts.SecureCookies),
		middleware.Logger(opts.Logger),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/presets", func(r chi.Router) {
		r.Get("/", app.ListPresets)
		r.Get("/{id}", app.GetPreset)
	})

	r.Post("/v1/enhance", app.Enhance)

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Get("/", app.ListJobs)
		r.Get("/{id}", app.GetJob)
	})

	r.Get("/v1/download", app.Download)

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/files/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/files/*", fs.ServeHTTP)
	}

	return r
}
