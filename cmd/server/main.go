package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Adapters
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/adapter/geocoding/google"
	graphAdapter "github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/adapter/graphql"
	httpAdapter "github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/adapter/http"
	natsAdapter "github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/adapter/repository/cache"
	mongoRepo "github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/adapter/storage/s3"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/mailer"

	// Platform
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const metricsNamespace = "rental_listing_service"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting...", zap.String("service_name", cfg.ServiceName))

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	metricsManager := metrics.NewMetricsManager(metricsNamespace)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	mongoClient, err := mongoRepo.Connect(startupCtx, cfg.MongoURI, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		appLogger.Info("Disconnecting from MongoDB...")
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)

	listingRepo, err := mongoRepo.NewListingRepository(db, cfg.MongoSearchIndex, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ListingRepository", zap.Error(err))
	}
	userRepo := mongoRepo.NewUserRepository(db, appLogger)
	bookingRepo := mongoRepo.NewBookingRepository(db, appLogger)

	imageStorage, err := s3.NewS3Storage(startupCtx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	googleGeocoder, err := google.NewGeocoder(cfg.GoogleMapsAPIKey, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize geocoder", zap.Error(err))
	}
	var geocoder usecase.Geocoder = googleGeocoder
	if cfg.RedisAddress != "" {
		redisClient, err := cache.NewRedisClient(startupCtx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		geocoder = cache.NewGeocodeCache(googleGeocoder, redisClient, cfg.GeocodeCacheTTL, metricsManager, appLogger)
	} else {
		appLogger.Info("Geocode cache disabled (REDIS_ADDRESS not set).")
	}

	var publisher usecase.EventPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	} else {
		appLogger.Info("listing.created events disabled (NATS_URL not set).")
	}

	var listingMailer usecase.Mailer
	if cfg.SMTPHost != "" {
		listingMailer = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, appLogger)
	} else {
		appLogger.Info("Host notification emails disabled (SMTP_HOST not set).")
	}

	listingUsecase := usecase.NewListingUsecase(
		listingRepo,
		userRepo,
		bookingRepo,
		geocoder,
		imageStorage,
		publisher,
		listingMailer,
		metricsManager,
		appLogger,
	)

	schema, err := graphAdapter.NewSchema(graphAdapter.NewResolver(listingUsecase, metricsManager, appLogger))
	if err != nil {
		appLogger.Fatal("Failed to parse GraphQL schema", zap.Error(err))
	}
	viewers := auth.NewResolver(cfg.JWTSecret, userRepo, appLogger)
	router := httpAdapter.NewRouter(graphAdapter.NewHandler(schema, appLogger), viewers, cfg.ServiceName, appLogger)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	var metricsSrv *http.Server
	if cfg.PrometheusMetricsPort != "" {
		metricsSrv = metrics.NewMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
	} else {
		appLogger.Info("Prometheus metrics server not started (PROMETHEUS_METRICS_PORT not set).")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}

	appLogger.Info("Application shutting down...")
}
