package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medtravel/hospitaldirectory/internal/adapters/cache"
	cmsadapter "github.com/medtravel/hospitaldirectory/internal/adapters/cms"
	"github.com/medtravel/hospitaldirectory/internal/adapters/database"
	"github.com/medtravel/hospitaldirectory/internal/adapters/events"
	"github.com/medtravel/hospitaldirectory/internal/adapters/search"
	"github.com/medtravel/hospitaldirectory/internal/api/handlers"
	"github.com/medtravel/hospitaldirectory/internal/api/middleware"
	"github.com/medtravel/hospitaldirectory/internal/api/routes"
	"github.com/medtravel/hospitaldirectory/internal/application/services"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/domain/repositories"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/cms"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/postgres"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/redis"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/typesense"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/notifications"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
	"github.com/medtravel/hospitaldirectory/internal/query/directory"
	"github.com/medtravel/hospitaldirectory/pkg/config"
)

const bootstrapTimeout = 45 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	bootCtx, bootCancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer bootCancel()

	// Redis backs every shared cache and the event bus; without it the
	// process keeps the same behaviour in memory.
	var (
		cacheProvider providers.CacheProvider
		rateLimiter   providers.RateLimiter
		eventBus      providers.EventBus
	)
	redisClient, err := redis.NewClient(bootCtx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process cache and event bus")
		memory := cache.NewMemoryAdapter()
		cacheProvider = memory
		rateLimiter = memory
		eventBus = events.NewMemoryEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		rateLimiter = cache.NewRedisRateLimiter(redisClient, "ratelimit:")
		eventBus = events.NewRedisEventBus(redisClient)
	}

	var source providers.CMSProvider
	if cfg.CMS.BaseURL != "" {
		client, err := cms.NewClient(&cfg.CMS, metrics)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize CMS client")
		}
		source = client
	} else {
		fixture, err := cmsadapter.LoadFixture(cfg.CMS.FixturePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CMS.FixturePath).Msg("Failed to load CMS fixture")
		}
		log.Info().Str("path", cfg.CMS.FixturePath).Msg("Serving content from CMS fixture")
		source = fixture
	}
	cmsCache := cmsadapter.NewCachedAdapter(source, cacheProvider, cfg.CMS.CacheTTLSeconds, metrics)

	var searchRepo repositories.DirectorySearchRepository
	if cfg.Typesense.Enabled() {
		tsClient, err := typesense.NewClient(bootCtx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, suggestions will scan the dataset")
		} else {
			searchRepo = search.NewTypesenseAdapter(tsClient)
		}
	}

	hospitalService := services.NewHospitalService(cmsCache, cfg.Directory.MaxPageSize)
	store := directory.NewStore(hospitalService.ListAll)
	directoryService := services.NewDirectoryService(store, searchRepo)
	contentService := services.NewContentService(cmsCache)

	h := routes.Handlers{
		Health:    handlers.NewHealthHandler(store),
		Hospital:  handlers.NewHospitalHandler(hospitalService),
		Directory: handlers.NewDirectoryHandler(directoryService),
		Content:   handlers.NewContentHandler(contentService),
		Webhook:   handlers.NewCMSWebhookHandler(eventBus, cfg.CMS.WebhookSecret),
	}

	pgClient, err := postgres.NewClient(bootCtx, &cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("PostgreSQL unavailable, lead capture disabled")
	} else {
		defer pgClient.Close()

		var notifier providers.LeadNotifier
		if cfg.WhatsApp.Enabled() {
			sender, err := notifications.NewWhatsAppCloudSender(&cfg.WhatsApp)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to initialize WhatsApp sender")
			} else {
				notifier = sender
			}
		}

		proxies, err := handlers.ParseTrustedProxies(cfg.Server.TrustedProxies)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid TRUSTED_PROXIES")
		}
		policy := services.DefaultLeadPolicy()
		leadService := services.NewLeadService(database.NewLeadAdapter(pgClient), rateLimiter, cacheProvider, notifier, policy)
		h.Lead = handlers.NewLeadHandler(leadService, int(policy.PerIPWindow.Seconds()), proxies)
	}
	bootCancel()

	invalidation := services.NewCacheInvalidationService(eventBus, cacheProvider, cmsCache, store.Refresh, cfg.Directory.RefreshDebounce)
	if err := invalidation.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to start cache invalidation service")
	}

	warming := services.NewCacheWarmingService(cfg.Directory.RefreshInterval,
		services.Warmer{Name: "directory", Fn: store.Refresh},
		services.Warmer{Name: "blogs", Fn: func(ctx context.Context) error {
			_, err := contentService.ListBlogs(ctx, 1, services.DefaultBlogPageSize)
			return err
		}},
	)
	warming.StartPeriodicWarming(ctx)

	router := routes.NewRouter(h, middleware.NewCacheMiddleware(cacheProvider, nil), metrics, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	cancel()
	invalidation.Stop()
	warming.Wait()
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
