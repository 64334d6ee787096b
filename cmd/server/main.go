package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	mongoadapter "github.com/northtrade/marketplace/ingestion-service/internal/adapter/mongo"
	"github.com/northtrade/marketplace/ingestion-service/internal/adapter/fetch"
	"github.com/northtrade/marketplace/ingestion-service/internal/adapter/geo/postal"
	"github.com/northtrade/marketplace/ingestion-service/internal/adapter/httpapi"
	natsadapter "github.com/northtrade/marketplace/ingestion-service/internal/adapter/messaging/nats"
	redisadapter "github.com/northtrade/marketplace/ingestion-service/internal/adapter/search/redis"
	minioadapter "github.com/northtrade/marketplace/ingestion-service/internal/adapter/storage/minio"
	"github.com/northtrade/marketplace/ingestion-service/internal/adapter/taxonomy"
	"github.com/northtrade/marketplace/ingestion-service/internal/config"
	"github.com/northtrade/marketplace/ingestion-service/internal/mailer"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/metrics"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/tracer"
	"github.com/northtrade/marketplace/ingestion-service/internal/usecase"
)

func main() {
	appLogger := logger.New(logger.DefaultConfig())
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := tracer.InitTracer(ctx, "ingestion-service", cfg.Tracing.Endpoint)
		if err != nil {
			appLogger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	metricsManager := metrics.NewManager("ingestion")
	go func() {
		if err := metrics.StartServer(cfg.Metrics.Port, appLogger, metricsManager.Registry); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	mongoClient, err := mongoadapter.Connect(ctx, &cfg.Mongo)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	db := mongoClient.Database(cfg.Mongo.Database)
	if err := mongoadapter.EnsureIndexes(ctx, db); err != nil {
		appLogger.Fatal("Failed to ensure MongoDB indexes", zap.Error(err))
	}

	listingRepo := mongoadapter.NewListingRepository(db)
	linkRepo := mongoadapter.NewLinkRepository(db)
	imageRepo := mongoadapter.NewImageRepository(db)
	txRunner := mongoadapter.NewSessionRunner(mongoClient)

	objectStorage, err := minioadapter.NewObjectStorage(&cfg.MinIO, appLogger.Named("minio"))
	if err != nil {
		appLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	redisClient, err := redisadapter.NewClient(&cfg.Redis, appLogger.Named("redis"))
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	searchIndex := redisadapter.NewIndex(redisClient, appLogger.Named("search"))

	geoResolver := postal.NewResolver()
	taxonomyLookup := taxonomy.NewStaticLookup()

	imageFetcher := fetch.NewHTTPFetcher(cfg.Ingest.FetchTimeout, cfg.Ingest.MaxImageBytes)
	imageIngestor := usecase.NewImageIngestor(
		imageFetcher, objectStorage, imageRepo, cfg.Environment,
		appLogger.Named("images"), metricsManager)
	reconciler := usecase.NewListingReconciler(
		listingRepo, linkRepo, imageIngestor, txRunner, appLogger.Named("reconciler"))
	batchIngestor := usecase.NewBatchIngestor(
		reconciler, cfg.Ingest.Concurrency, appLogger.Named("batch"), metricsManager)
	projector := usecase.NewSearchProjector(
		listingRepo, linkRepo, imageRepo, geoResolver, taxonomyLookup, searchIndex,
		appLogger.Named("projector"), metricsManager)

	// Without a broker the endpoint falls back to projecting inline;
	// projection failures still never fail the ingestion response.
	var syncTrigger httpapi.SyncTrigger = &httpapi.DirectSyncTrigger{Projector: projector}

	natsConn, err := natsadapter.Connect(&cfg.NATS, appLogger.Named("nats"))
	if err != nil {
		appLogger.Warn("NATS unavailable, search sync will run inline", zap.Error(err))
	} else {
		publisher := natsadapter.NewPublisher(natsConn, appLogger.Named("nats"))
		defer publisher.Close()
		syncTrigger = publisher

		alertMailer := mailer.New(&cfg.SMTP)
		var alerter natsadapter.Alerter
		if alertMailer != nil {
			alerter = alertMailer
		}
		consumer := natsadapter.NewSyncConsumer(
			natsConn, projector, cfg.Ingest.SyncRetries,
			appLogger.Named("sync"), metricsManager, alerter)
		sub, err := consumer.Start(ctx)
		if err != nil {
			appLogger.Fatal("Failed to start search sync consumer", zap.Error(err))
		}
		defer func() { _ = sub.Unsubscribe() }()
	}

	handler := httpapi.NewIngestHandler(batchIngestor, syncTrigger, taxonomyLookup, appLogger.Named("http"))
	router := httpapi.NewRouter(handler, cfg.Ingest.SharedSecret, appLogger.Named("http"))

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		appLogger.Info("Starting ingestion HTTP server", zap.String("port", cfg.HTTP.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.WriteTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
