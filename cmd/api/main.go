package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"age-checker-shopify-layer/internal/application"
	"age-checker-shopify-layer/internal/config"
	apiinfra "age-checker-shopify-layer/internal/infrastructure/api"
	"age-checker-shopify-layer/internal/infrastructure/cache"
	"age-checker-shopify-layer/internal/infrastructure/metrics"
	"age-checker-shopify-layer/internal/infrastructure/repository"
	shopifyinfra "age-checker-shopify-layer/internal/infrastructure/shopify"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found, reading configuration from the environment")
	}

	cfg, err := config.Load(config.New())
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger = logger.Level(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	shopRepo := repository.NewMongoShopRepository(client.Database(cfg.MongoDatabase))
	if err := shopRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create shop indexes")
	}

	ageCache, closeCache, err := cache.NewFromURL(ctx, cfg.RedisURL, cfg.AgeLimitCacheTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize age limit cache")
	}
	defer closeCache()
	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, age limit cache disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	shopifyClient := shopifyinfra.NewClient(shopifyinfra.Options{
		APIKey:     cfg.ShopifyAPIKey,
		APISecret:  cfg.ShopifyAPISecret,
		Scopes:     cfg.ShopifyScopes,
		APIVersion: cfg.ShopifyAPIVersion,
		HTTPClient: &http.Client{Timeout: cfg.HTTPClientTimeout},
		Logger:     logger,
	})

	// Initialize application services
	oauthService := application.NewOAuthService(
		shopifyClient,
		shopifyinfra.NewCallbackVerifier(cfg.ShopifyAPISecret),
		shopRepo,
		cfg.CallbackURL(),
		m.ShopUpsertFailures,
		logger,
	)
	ageService := application.NewAgeService(shopRepo, ageCache, logger)

	router := apiinfra.NewRouter(apiinfra.RouterOptions{
		OAuth:          apiinfra.NewOAuthHandler(oauthService, cfg.SecureCookies(), m.Installs, logger),
		Age:            apiinfra.NewAgeHandler(ageService, logger),
		Customers:      apiinfra.NewCustomerHandler(ageService, m.AgeVerifications, logger),
		Metrics:        m,
		Gatherer:       reg,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		SwaggerFile:    "./docs/swagger.json",
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting API server")
		logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
