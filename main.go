// File: tourspot/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourspot/config"
	"tourspot/cron"
	"tourspot/database"
	reservationRepoPkg "tourspot/database/repository/reservation"
	resourceRepoPkg "tourspot/database/repository/resource"
	reviewRepoPkg "tourspot/database/repository/review"
	"tourspot/handlers"
	"tourspot/middleware"
	"tourspot/routes"
	"tourspot/services/payment"
	"tourspot/services/reservation"
	"tourspot/services/review"
	"tourspot/services/stats"
	"tourspot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(cors.Default())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	reservationRepo := reservationRepoPkg.NewMongoReservationRepo()
	resourceRepo := resourceRepoPkg.NewMongoResourceRepo()
	reviewRepo := reviewRepoPkg.NewMongoReviewRepo()

	if mongoRepo, ok := reservationRepo.(*reservationRepoPkg.MongoReservationRepo); ok {
		if err := mongoRepo.EnsureIndexes(); err != nil {
			logger.Sugar().Fatalf("main: failed to create reservation indexes: %v", err)
		}
	}

	// services.
	availability := &reservation.AvailabilityChecker{
		Reservations: reservationRepo,
		Resources:    resourceRepo,
	}

	expiryScheduler := cron.NewAsynqExpiryScheduler()
	engine := &reservation.DefaultReservationEngine{
		Reservations: reservationRepo,
		Resources:    resourceRepo,
		Availability: availability,
		Locker: &reservation.RedisLocker{
			Client: utils.GetLockClient(),
			TTL:    10 * time.Second,
		},
		Expiry:     expiryScheduler,
		LockWait:   config.LockWaitTimeout(),
		PendingTTL: config.PendingTTL(),
	}

	gateway := payment.NewStripeGateway(config.AppConfig.Currency, logger)
	statsService := &stats.Service{
		Reservations: reservationRepo,
		Cache:        utils.GetCacheClient(),
	}
	transitions := &reservation.DefaultTransitionValidator{
		Reservations: reservationRepo,
		Authz:        &reservation.OwnerRequesterPolicy{Resources: resourceRepo},
		Gateway:      gateway,
		Stats:        statsService,
	}
	reviewService := &review.DefaultReviewService{
		Reviews:      reviewRepo,
		Reservations: reservationRepo,
		Resources:    resourceRepo,
	}

	// background expiry of abandoned pending reservations.
	cron.InitExpiryWorker(reservationRepo)

	// handlers and routes.
	reservationHandler := handlers.NewReservationHandler(engine, transitions, reservationRepo, resourceRepo, logger)
	statsHandler := handlers.NewStatsHandler(statsService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	routes.RegisterReservationRoutes(router, reservationHandler, statsHandler)
	routes.RegisterReviewRoutes(router, reviewHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
