package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/futamarket/market-backend/api/controllers"
	"github.com/futamarket/market-backend/api/middleware"
	"github.com/futamarket/market-backend/api/routes"
	"github.com/futamarket/market-backend/internal/media"
	product "github.com/futamarket/market-backend/internal/products"
	section "github.com/futamarket/market-backend/internal/sections"
	"github.com/futamarket/market-backend/pkg/auth"
	"github.com/futamarket/market-backend/pkg/config"
	"github.com/futamarket/market-backend/pkg/db"
	"github.com/futamarket/market-backend/pkg/instance"
	"github.com/futamarket/market-backend/pkg/logger"
	"github.com/futamarket/market-backend/pkg/metrics"
	"github.com/futamarket/market-backend/pkg/migrate"
	pkgmongo "github.com/futamarket/market-backend/pkg/mongo"
	"github.com/futamarket/market-backend/pkg/redis"
	"github.com/futamarket/market-backend/pkg/storage/gcs"
	"github.com/futamarket/market-backend/pkg/storage/local"
	"github.com/futamarket/market-backend/pkg/storage/s3"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ready []controllers.NamedPinger

	sectionRepo, productRepo, closeStore, storePinger := bootstrapStore(ctx, cfg, logg)
	defer closeStore()
	ready = append(ready, storePinger)

	var attempts middleware.AttemptStore
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		attempts = redisClient
		ready = append(ready, controllers.NamedPinger{Name: "redis", Pinger: redisClient})
	}

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	backend, mediaHandler, backendPinger := bootstrapMediaBackend(ctx, cfg, logg)
	ready = append(ready, backendPinger)

	uploader, err := media.NewUploader(media.UploaderParams{
		Backend: backend,
		Folder:  cfg.Media.Folder,
		Metrics: metrics.NewUploadMetrics(registry),
		Logger:  logg,
	})
	requireResource(ctx, logg, "media uploader", err)

	sectionService, err := section.NewService(sectionRepo, logg)
	requireResource(ctx, logg, "section service", err)

	productService, err := product.NewService(product.ServiceParams{
		Repo:     productRepo,
		Sections: sectionRepo,
		Media:    uploader,
		Logger:   logg,
	})
	requireResource(ctx, logg, "product service", err)

	guard, err := adminGuard(cfg.Admin)
	requireResource(ctx, logg, "admin guard", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"instance":      instance.GetID(),
		"db_driver":     cfg.DB.NormalizedDriver(),
		"media_backend": cfg.Media.NormalizedBackend(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			Sections: sectionService,
			Products: productService,
			Guard:    guard,
			Attempts: attempts,
			Registry: registry,
			Media:    mediaHandler,
			Ready:    ready,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}
}

// bootstrapStore opens the configured document store and returns its
// repositories, a close func and a readiness pinger.
func bootstrapStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (section.Repository, product.Repository, func(), controllers.NamedPinger) {
	if cfg.DB.IsMongo() {
		client, err := pkgmongo.New(ctx, cfg.Mongo, logg)
		requireResource(ctx, logg, "mongo", err)
		closeFn := func() {
			if err := client.Close(context.Background()); err != nil {
				logg.Error(context.Background(), "error closing mongo", err)
			}
		}
		return section.NewMongoRepository(client.Collection(pkgmongo.SectionsCollection)),
			product.NewMongoRepository(client.Collection(pkgmongo.ProductsCollection)),
			closeFn,
			controllers.NamedPinger{Name: "mongo", Pinger: client}
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	closeFn := func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		closeFn()
		logg.Error(ctx, "failed to prepare schema", err)
		os.Exit(1)
	}

	return section.NewGormRepository(dbClient.DB()),
		product.NewGormRepository(dbClient.DB()),
		closeFn,
		controllers.NamedPinger{Name: "database", Pinger: dbClient}
}

// bootstrapMediaBackend builds the configured object store. Only the local
// backend needs the API to serve files.
func bootstrapMediaBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (media.Backend, http.Handler, controllers.NamedPinger) {
	switch cfg.Media.NormalizedBackend() {
	case config.MediaBackendGCS:
		client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		requireResource(ctx, logg, "gcs", err)
		return client, nil, controllers.NamedPinger{Name: "gcs", Pinger: client}
	case config.MediaBackendS3:
		client, err := s3.New(ctx, cfg.S3, logg)
		requireResource(ctx, logg, "s3", err)
		return client, nil, controllers.NamedPinger{Name: "s3", Pinger: client}
	default:
		disk, err := local.New(cfg.Local.Root, cfg.Local.BaseURL)
		requireResource(ctx, logg, "local storage", err)
		requireResource(ctx, logg, "local storage", disk.Ping(ctx))
		return disk, disk.Handler(routes.MediaPrefix), controllers.NamedPinger{Name: "local_storage", Pinger: disk}
	}
}

func adminGuard(cfg config.AdminConfig) (*auth.AdminGuard, error) {
	if cfg.PasswordHash != "" {
		return auth.NewAdminGuardFromHash(cfg.PasswordHash)
	}
	return auth.NewAdminGuard(cfg.Password), nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
