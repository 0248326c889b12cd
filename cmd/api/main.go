package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/bvs-supply/api/internal/handlers"
	"github.com/bvs-supply/api/internal/platform/config"
	pfirestore "github.com/bvs-supply/api/internal/platform/firestore"
	"github.com/bvs-supply/api/internal/platform/gateway"
	"github.com/bvs-supply/api/internal/platform/idempotency"
	"github.com/bvs-supply/api/internal/platform/jobs"
	"github.com/bvs-supply/api/internal/platform/observability"
	firestoreRepo "github.com/bvs-supply/api/internal/repositories/firestore"
	"github.com/bvs-supply/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	location, err := time.LoadLocation(cfg.Fulfillment.Timezone)
	if err != nil {
		logger.Fatal("failed to load fulfillment timezone", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	var publisher services.OrderEventPublisher
	var pubsubClient *pubsub.Client
	var orderTopic *pubsub.Topic
	if topicName := strings.TrimSpace(cfg.PubSub.OrderTopic); topicName != "" {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		orderTopic = pubsubClient.Topic(topicName)
		defer orderTopic.Stop()

		publisher, err = jobs.NewPubSubOrderEventPublisher(orderTopic)
		if err != nil {
			logger.Fatal("failed to initialise order event publisher", zap.Error(err))
		}
	} else {
		logger.Info("order topic not configured; order events disabled")
	}

	counterRepo, err := firestoreRepo.NewCounterRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise counter repository", zap.Error(err))
	}
	orderRepo, err := firestoreRepo.NewOrderRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}
	billRepo, err := firestoreRepo.NewBillRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise bill repository", zap.Error(err))
	}
	productRepo, err := firestoreRepo.NewProductRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise product repository", zap.Error(err))
	}
	hotelRepo, err := firestoreRepo.NewHotelRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise hotel repository", zap.Error(err))
	}

	counterService, err := services.NewCounterService(services.CounterServiceDeps{
		Repository: counterRepo,
	})
	if err != nil {
		logger.Fatal("failed to initialise counter service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:      orderRepo,
		Bills:       billRepo,
		Products:    productRepo,
		Hotels:      hotelRepo,
		Counters:    counterService,
		Events:      publisher,
		Clock:       time.Now,
		BillDueDays: cfg.Billing.DueDays,
		Logger:      zapEventLogger(logger.Named("orders")),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	billingService, err := services.NewBillingService(services.BillingServiceDeps{
		Bills:  billRepo,
		Clock:  time.Now,
		Logger: zapEventLogger(logger.Named("billing")),
	})
	if err != nil {
		logger.Fatal("failed to initialise billing service", zap.Error(err))
	}

	fulfillmentService, err := services.NewFulfillmentService(services.FulfillmentServiceDeps{
		Orders:     orderRepo,
		Hotels:     hotelRepo,
		CutoffHour: cfg.Fulfillment.CutoffHour,
		Location:   location,
		Clock:      time.Now,
		Logger:     zapEventLogger(logger.Named("fulfillment")),
	})
	if err != nil {
		logger.Fatal("failed to initialise fulfillment service", zap.Error(err))
	}

	hotelHandlers := handlers.NewHotelHandlers(orderService, billingService,
		handlers.WithSubmitRateLimit(cfg.Protection.SubmitRateLimit, cfg.Protection.SubmitRateWindow))
	adminHandlers := handlers.NewAdminHandlers(orderService, billingService, fulfillmentService)
	healthHandlers := handlers.NewHealthHandlers(readinessChecks(firestoreClient, orderTopic))

	projectID := cfg.Firestore.ProjectID
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
		gateway.IdentityMiddleware,
	}

	// Hotels retry order submissions on flaky connections; replaying the
	// stored response keeps a retry from consuming a second order number.
	idempotencyStore := idempotency.NewFirestoreStore(firestoreClient)
	idempotencyMW := idempotency.Middleware(idempotencyStore,
		idempotency.WithMethods(http.MethodPost),
		idempotency.WithTTL(cfg.Protection.IdempotencyTTL),
		idempotency.WithLogger(zap.NewStdLog(logger.Named("idempotency"))),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithHotelRoutes(hotelHandlers.Routes),
		handlers.WithHotelMiddlewares(idempotencyMW),
		handlers.WithAdminRoutes(adminHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("bvs-supply api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func zapEventLogger(logger *zap.Logger) func(context.Context, string, map[string]any) {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields)+1)
		zFields = append(zFields, zap.String("event", event))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Info("service event", zFields...)
	}
}

func readinessChecks(client *firestore.Client, topic *pubsub.Topic) map[string]handlers.ReadinessCheck {
	checks := make(map[string]handlers.ReadinessCheck, 2)
	if client != nil {
		checks["firestore"] = func(ctx context.Context) error {
			checkCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
			defer cancel()
			iter := client.Collections(checkCtx)
			_, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}
	}
	if topic != nil {
		checks["pubsub"] = func(ctx context.Context) error {
			checkCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			ok, err := topic.Exists(checkCtx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("topic %s does not exist", topic.ID())
			}
			return nil
		}
	}
	return checks
}
