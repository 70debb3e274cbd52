package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	httptransport "github.com/spec-kit/society-waste-service/internal/api/http"
	"github.com/spec-kit/society-waste-service/internal/api/http/handlers"
	"github.com/spec-kit/society-waste-service/internal/auth"
	"github.com/spec-kit/society-waste-service/internal/config"
	"github.com/spec-kit/society-waste-service/internal/demodata"
	"github.com/spec-kit/society-waste-service/internal/events"
	"github.com/spec-kit/society-waste-service/internal/geocode"
	"github.com/spec-kit/society-waste-service/internal/observability"
	"github.com/spec-kit/society-waste-service/internal/persistence"
	"github.com/spec-kit/society-waste-service/internal/repository"
	"github.com/spec-kit/society-waste-service/internal/repository/memory"
	"github.com/spec-kit/society-waste-service/internal/security"
	"github.com/spec-kit/society-waste-service/internal/service"
	"github.com/spec-kit/society-waste-service/internal/storage"
	"github.com/spec-kit/society-waste-service/internal/worker"
)

// multipartOverhead leaves room for the text fields sent alongside an image.
const multipartOverhead = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backends, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open backends", zap.Error(err))
	}
	defer backends.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	assets, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.URLPrefix)
	if err != nil {
		logger.Fatal("failed to prepare upload dir", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(
		service.NewNotificationService(logger, cfg.Notification),
		logger,
		cfg.Notification.QueueSize,
	)
	notifications.Subscribe(dispatcher)
	notifications.Start()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo:  backends.store.Accounts,
		AdminRepo:    backends.store.Admins,
		SessionStore: backends.sessions,
		Logger:       logger,
	})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:   backends.store.Issues,
		AccountRepo: backends.store.Accounts,
		HistoryRepo: backends.store.History,
		Assets:      assets,
		Sanitizer:   security.NewTextSanitizer(),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	var geocoder geocode.Geocoder
	if cfg.Geocoder.URL != "" {
		client := geocode.NewClient(&http.Client{Timeout: cfg.Geocoder.Timeout()}, logger, cfg.Geocoder.URL, cfg.Geocoder.UserAgent)
		var limiter *rate.Limiter
		if cfg.Geocoder.RatePerSecond > 0 {
			limiter = rate.NewLimiter(rate.Limit(cfg.Geocoder.RatePerSecond), 1)
		}
		geocoder = geocode.NewCachedGeocoder(client, backends.geocodeCache, limiter, logger)
	}
	societyService := service.NewSocietyService(service.SocietyDependencies{
		AccountRepo: backends.store.Accounts,
		Geocoder:    geocoder,
		MapBox:      demodata.Box{MinLat: cfg.Map.MinLat, MinLng: cfg.Map.MinLng, Span: cfg.Map.Span},
		Logger:      logger,
	})

	app := httptransport.NewApp(cfg.App.Name, cfg.Upload.MaxBytes+multipartOverhead)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, backends.pingers),
		Accounts:        handlers.NewAccountsHandler(authService),
		Sessions:        handlers.NewSessionHandler(authService),
		Issues:          handlers.NewIssuesHandler(issueService),
		Societies:       handlers.NewSocietiesHandler(societyService),
		AuthMiddleware:  auth.NewAuthMiddleware(authService),
		Metrics:         adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		UploadDir:       assets.Dir(),
		UploadURLPrefix: cfg.Upload.URLPrefix,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	notifications.Stop()
}

type backendSet struct {
	store        *repository.Store
	sessions     auth.SessionStore
	geocodeCache geocode.Cache
	pingers      map[string]handlers.Pinger
	closers      []func()
}

func (b *backendSet) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends connects the record store and the session store selected by configuration.
func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backendSet, error) {
	b := &backendSet{pingers: map[string]handlers.Pinger{}}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pg.Close)
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
				b.close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		b.store = repository.NewPostgresStore(pg.Pool)
		b.pingers["postgres"] = pg
	case config.StoreDriverMongo:
		mg, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		b.closers = append(b.closers, mg.Close)
		store, err := repository.NewMongoStore(ctx, mg.Database)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("prepare mongo collections: %w", err)
		}
		b.store = store
		b.pingers["mongo"] = mg
	default:
		logger.Warn("using in-memory store; data is lost on restart")
		b.store = memory.NewStore()
	}

	switch cfg.Store.SessionStore {
	case config.SessionStoreRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, rdb.Close)
		b.sessions = auth.NewRedisSessionStore(rdb.Client)
		b.geocodeCache = geocode.NewRedisCache(rdb.Client, cfg.Geocoder.CacheTTL())
		b.pingers["redis"] = rdb
	default:
		b.sessions = auth.NewMemorySessionStore()
		b.geocodeCache = geocode.NewMemoryCache(cfg.Geocoder.CacheTTL())
	}

	return b, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
