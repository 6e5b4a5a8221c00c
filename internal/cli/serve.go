package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/devapi"
	"finitefield.org/heara-web/internal/httpserver"
	"finitefield.org/heara-web/internal/i18n"
	"finitefield.org/heara-web/internal/pages"
	"finitefield.org/heara-web/internal/platform/config"
	"finitefield.org/heara-web/internal/platform/idempotency"
	"finitefield.org/heara-web/internal/platform/observability"
	"finitefield.org/heara-web/public"
)

func newServeCommand() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page, the admin view and /api",
		Long: `Serve renders the landing page and the admin lead view, serves the
WebAssembly bundle from HEARA_APP_DIR and forwards /api to HEARA_API_UPSTREAM.
Without an upstream an in-memory API seeded with demo data is mounted instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.WithEnvFile(envFile))
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the process environment")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	baseLogger, err := observability.NewLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web")
	ctx = observability.WithLogger(ctx, logger)
	printf := observability.NewPrintfAdapter(logger)

	locales, err := i18n.Locales()
	if err != nil {
		return err
	}
	bundle, err := i18n.Load(locales, cfg.Site.DefaultLocale, cfg.Site.Locales)
	if err != nil {
		return err
	}
	if missing := bundle.Missing(); len(missing) > 0 {
		logger.Warn("dictionaries incomplete", zap.Int("missing_keys", len(missing)))
	}
	renderer, err := pages.New(bundle)
	if err != nil {
		return err
	}
	static, err := public.StaticFS()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Site.AppDir); err != nil {
		logger.Warn("webassembly bundle directory unavailable; pages will stay static",
			zap.String("dir", cfg.Site.AppDir),
			zap.Error(err),
		)
	}

	opts := []httpserver.Option{
		httpserver.WithLogger(logger),
		httpserver.WithBundle(bundle),
		httpserver.WithRenderer(renderer),
		httpserver.WithStaticFS(static),
		httpserver.WithAppFS(os.DirFS(cfg.Site.AppDir)),
	}

	if cfg.API.DevFake {
		store := devapi.NewStore()
		store.Seed()
		keys := idempotency.NewMemoryStore()
		go idempotency.RunCleanup(ctx, keys, cfg.Idempotency.CleanupInterval, printf)

		handler := devapi.NewHandler(store, devapi.WithIdempotency(keys,
			idempotency.WithTTL(cfg.Idempotency.TTL),
			idempotency.WithLogger(printf),
		))
		opts = append(opts,
			httpserver.WithAPIRoutes(handler.Routes),
			httpserver.WithProducts(store, 0),
		)
		logger.Info("serving in-memory api", zap.Int("leads", store.Len()))
	} else {
		proxy, err := httpserver.NewAPIProxy(cfg.API.Upstream, cfg.API.ProxyTimeout)
		if err != nil {
			return err
		}
		client, err := api.NewClient(cfg.API.Upstream, &http.Client{Timeout: cfg.API.ProxyTimeout})
		if err != nil {
			return err
		}
		opts = append(opts,
			httpserver.WithAPIHandler(proxy),
			httpserver.WithProducts(client, cfg.API.ProxyTimeout),
		)
		logger.Info("proxying api", zap.String("upstream", cfg.API.Upstream))
	}

	router, err := httpserver.NewRouter(opts...)
	if err != nil {
		return err
	}
	srv := httpserver.NewServer(cfg.Server, router)
	srv.ErrorLog = log.New(printf, "", 0)
	return httpserver.ListenAndServe(ctx, srv, cfg.Server.ShutdownTimeout, logger)
}
