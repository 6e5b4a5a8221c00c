// Package httpserver assembles the HTTP surface of the site: the two pages,
// static assets, the WebAssembly bundle and the /api collaborator.
package httpserver

import (
	"context"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/i18n"
	"finitefield.org/heara-web/internal/middleware"
	"finitefield.org/heara-web/internal/pages"
	"finitefield.org/heara-web/internal/platform/httpx"
	"finitefield.org/heara-web/internal/platform/observability"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

// ProductLister supplies the catalogue for the form's product select.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]api.Product, error)
}

const (
	defaultProductTimeout = 2 * time.Second
	appCacheMaxAge        = "300"
)

type routerConfig struct {
	logger         *zap.Logger
	bundle         *i18n.Bundle
	renderer       *pages.Renderer
	static         fs.FS
	app            fs.FS
	api            RouteRegistrar
	apiHandler     http.Handler
	products       ProductLister
	productTimeout time.Duration
	middlewares    []func(http.Handler) http.Handler
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

// WithLogger sets the base logger injected into every request.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *routerConfig) { cfg.logger = logger }
}

// WithBundle sets the dictionaries used for locale resolution.
func WithBundle(bundle *i18n.Bundle) Option {
	return func(cfg *routerConfig) { cfg.bundle = bundle }
}

// WithRenderer overrides the page renderer.
func WithRenderer(r *pages.Renderer) Option {
	return func(cfg *routerConfig) { cfg.renderer = r }
}

// WithStaticFS serves fsys under /static/.
func WithStaticFS(fsys fs.FS) Option {
	return func(cfg *routerConfig) { cfg.static = fsys }
}

// WithAppFS serves the WebAssembly bundle from fsys under /app/.
func WithAppFS(fsys fs.FS) Option {
	return func(cfg *routerConfig) { cfg.app = fsys }
}

// WithAPIRoutes mounts an in-process API under /api.
func WithAPIRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.api = reg }
}

// WithAPIHandler forwards /api/* to h, typically a reverse proxy.
func WithAPIHandler(h http.Handler) Option {
	return func(cfg *routerConfig) { cfg.apiHandler = h }
}

// WithProducts fills the landing page's product select from lister.
func WithProducts(lister ProductLister, timeout time.Duration) Option {
	return func(cfg *routerConfig) {
		cfg.products = lister
		if timeout > 0 {
			cfg.productTimeout = timeout
		}
	}
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// NewRouter constructs the chi router with shared middleware and every route group.
func NewRouter(opts ...Option) (chi.Router, error) {
	cfg := routerConfig{productTimeout: defaultProductTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.bundle == nil {
		bundle, err := i18n.Default()
		if err != nil {
			return nil, err
		}
		cfg.bundle = bundle
	}
	if cfg.renderer == nil {
		renderer, err := pages.New(cfg.bundle)
		if err != nil {
			return nil, err
		}
		cfg.renderer = renderer
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLoggerMiddleware(cfg.logger))
	r.Use(observability.RequestLoggerMiddleware())
	r.Use(observability.RecoveryMiddleware(cfg.logger))
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if isAPIPath(req.URL.Path) {
			httpx.WriteError(req.Context(), w, httpx.NewError("Not Found", http.StatusNotFound))
			return
		}
		http.NotFound(w, req)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("Method Not Allowed", http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", health)

	if cfg.static != nil {
		r.Handle("/static/*", middleware.AssetsWithCache("/static", cfg.static, ""))
	}
	if cfg.app != nil {
		r.Handle("/app/*", middleware.AssetsWithCache("/app", cfg.app, appCacheMaxAge))
	}

	pagesHandler := &pageHandlers{
		renderer:       cfg.renderer,
		fallback:       cfg.bundle.Fallback(),
		products:       cfg.products,
		productTimeout: cfg.productTimeout,
	}
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Locale(cfg.bundle))
		pr.Get("/", pagesHandler.landing)
		pr.With(middleware.NoStore).Get("/admin", pagesHandler.admin)
	})

	switch {
	case cfg.api != nil:
		r.Route("/api", func(ar chi.Router) {
			ar.Use(middleware.NoStore)
			cfg.api(ar)
		})
	case cfg.apiHandler != nil:
		r.Handle("/api", cfg.apiHandler)
		r.Handle("/api/*", cfg.apiHandler)
	}

	return r, nil
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
