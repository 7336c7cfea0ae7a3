package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studio/internal/http/handlers"
	"studio/internal/infra"
	"studio/internal/middleware"
	"studio/internal/ratelimit"
)

// StaticPrefix is the path stored objects are served under.
const StaticPrefix = "/static"

type Options struct {
	Logger         infra.Logger
	Limiter        ratelimit.Limiter
	AllowedOrigins []string
	// StaticDir is served read-only under StaticPrefix when set.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Handle("/metrics", promhttp.Handler())

	if opts.StaticDir != "" {
		fs := http.StripPrefix(StaticPrefix, http.FileServer(http.Dir(opts.StaticDir)))
		r.Handle(StaticPrefix+"/*", fs)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/layouts", app.Layouts)
		r.Get("/renders/{id}", app.GetRender)
		r.Get("/campaigns/{id}", app.GetCampaign)
		r.Get("/campaigns/{id}/archive", app.CampaignArchive)

		// generation and planning spend model quota
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(middleware.RateLimit(opts.Limiter, func(string) {
					infra.RateLimitRejections.Inc()
				}))
			}
			r.Post("/generate", app.Generate)
			r.Post("/blueprints", app.Blueprints)
			r.Post("/renders/{id}/regenerate", app.Regenerate)
			r.Post("/campaigns", app.CreateCampaign)
			r.Post("/campaigns/plan", app.PlanCampaign)
		})
	})

	return r
}
