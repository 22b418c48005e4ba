package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/futamarket/market-backend/api/controllers"
	"github.com/futamarket/market-backend/api/middleware"
	"github.com/futamarket/market-backend/api/responses"
	product "github.com/futamarket/market-backend/internal/products"
	section "github.com/futamarket/market-backend/internal/sections"
	"github.com/futamarket/market-backend/pkg/auth"
	"github.com/futamarket/market-backend/pkg/config"
	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
	"github.com/futamarket/market-backend/pkg/logger"
	"github.com/futamarket/market-backend/pkg/metrics"
)

// MediaPrefix is where locally stored media is served from.
const MediaPrefix = "/media"

type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sections section.Service
	Products product.Service

	Guard    *auth.AdminGuard
	Attempts middleware.AttemptStore

	// Registry backs /metrics; nil disables metrics.
	Registry *prometheus.Registry
	// Media serves local uploads when set.
	Media http.Handler
	// Ready lists the dependencies checked by the readiness probe.
	Ready []controllers.NamedPinger
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	if cfg.App.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	if p.Registry != nil {
		r.Use(middleware.Metrics(metrics.NewHTTPMetrics(p.Registry)))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, p.Ready, logg))

	if p.Media != nil {
		r.Method(http.MethodGet, MediaPrefix+"/*", p.Media)
	}

	requireAdmin := middleware.RequireAdmin(p.Guard, p.Attempts, middleware.LockoutPolicy{
		Limit:  cfg.Admin.FailureLimit,
		Window: cfg.Admin.FailureWindow,
	}, logg)
	maxUpload := cfg.Media.MaxUploadBytes()

	r.Route("/sections", func(r chi.Router) {
		r.Get("/", controllers.ListSections(p.Sections, logg))
		r.With(requireAdmin).Post("/", controllers.CreateSection(p.Sections, logg, maxUpload))
		r.With(requireAdmin).Put("/{id}", controllers.UpdateSection(p.Sections, logg, maxUpload))
		r.With(requireAdmin).Delete("/{id}", controllers.DeleteSection(p.Sections, logg))
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(p.Products, logg))
		r.Get("/{id}", controllers.GetProduct(p.Products, logg))
		r.With(requireAdmin).Post("/", controllers.CreateProduct(p.Products, logg, maxUpload))
		r.With(requireAdmin).Put("/{id}", controllers.UpdateProduct(p.Products, logg, maxUpload))
		r.With(requireAdmin).Delete("/{id}", controllers.DeleteProduct(p.Products, logg))
	})

	return r
}
