package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"train-booking/config"
	"train-booking/handlers"
	"train-booking/localdb"
	"train-booking/monitoring"
	"train-booking/security"
	"train-booking/services"
	"train-booking/utils"
)

func Start() error {
	cfg := config.LoadConfig()

	redisClient, err := utils.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	// Load both record collections up front; an unreadable collection is
	// fatal, serving a partial catalog is not an option.
	store := localdb.New(cfg.DataDir)
	catalog := services.NewTrainService(store)
	if err := catalog.Load(); err != nil {
		return err
	}
	userService := services.NewUserService(store)
	if err := userService.Load(); err != nil {
		return err
	}

	lock := utils.NewBookingLock(redisClient, cfg.BookingLockTTL)
	notifier := services.NewNotifier(pn)
	bookingService := services.NewBookingService(catalog, userService, lock, notifier)

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		code, err := utils.GenerateCode(32)
		if err != nil {
			return err
		}
		jwtSecret = []byte(code)
		slog.Warn("JWT_SECRET not set, generated an ephemeral secret; sessions will not survive a restart")
	}

	authHandler := handlers.NewAuthHandler(userService, jwtSecret, cfg.TokenTTL)
	trainHandler := handlers.NewTrainHandler(catalog)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	rateLimiter := security.NewRateLimiter(redisClient, cfg.BookingRateLimit)

	e := echo.New()

	e.POST("/api/auth/signup", authHandler.SignUp)
	e.POST("/api/auth/login", authHandler.Login)

	e.GET("/api/trains/search", trainHandler.Search)
	e.GET("/api/trains/:trainId/seats", trainHandler.GetSeats)
	e.POST("/api/trains", trainHandler.AddTrain, handlers.RequireAuth(jwtSecret))

	bookings := e.Group("/api/bookings", handlers.RequireAuth(jwtSecret), rateLimiter.BookingRateLimit())
	bookings.POST("", bookingHandler.Book)
	bookings.GET("", bookingHandler.History)
	bookings.DELETE("/:ticketId", bookingHandler.Cancel)

	e.GET("/health", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(503, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	monitor := monitoring.NewMonitor(catalog)
	defer monitor.Stop()

	if cfg.EnableMetrics {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		slog.Info("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	slog.Info("server listening", "port", cfg.Port, "data_dir", cfg.DataDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
