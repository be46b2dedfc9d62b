package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/config"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/consumer"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/gateway"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/handler"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/middleware"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/notification"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/repository"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/service"
	"github.com/Mitchkal/alx-travel-app-0x03/pkg/cache"
	"github.com/Mitchkal/alx-travel-app-0x03/pkg/database"
	"github.com/Mitchkal/alx-travel-app-0x03/pkg/rabbitmq"
	"github.com/Mitchkal/alx-travel-app-0x03/pkg/validation"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}

	// Repositories
	txm := repository.NewTransactor(db)
	listingRepo := repository.NewListingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// RabbitMQ: notifications are enqueued by the ledger and mailed by the worker.
	// Both sides redial on their own when the broker drops.
	publisher := rabbitmq.NewPublisher(cfg.RabbitURL, log)
	defer publisher.Close()

	mqConsumer := rabbitmq.NewConsumer(cfg.RabbitURL, log)
	defer mqConsumer.Close()
	worker := consumer.NewNotificationConsumer(bookingRepo, listingRepo, newMailer(cfg, log), log)
	go worker.Run(ctx, mqConsumer)

	// Services
	listingSvc := service.NewListingService(listingRepo, bookingRepo, log)
	bookingSvc := service.NewBookingService(txm, bookingRepo, listingRepo, publisher, log, time.Now)
	paymentSvc := service.NewPaymentService(
		txm, paymentRepo, bookingRepo, listingRepo,
		gateway.NewClient(cfg.Gateway()), cfg.Gateway(), log,
	)

	rdb := cache.NewRedisClient(cache.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}, log)
	if rdb != nil {
		defer rdb.Close()
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(log)
	e.Validator = validation.New()
	useMiddleware(e, cfg, log)

	handler.RegisterHealthRoutes(e)

	api := e.Group("/api/v1", middleware.WriteGuard())
	handler.NewListingHandler(listingSvc).RegisterRoutes(api.Group("/listings"))
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(api.Group("/bookings"))

	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	paymentHandler.RegisterRoutes(api.Group("/payments", middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:  cfg.RateLimitEnabled,
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
		Prefix:   "ratelimit:payments",
	}, rdb, log)))
	paymentHandler.RegisterCallback(e)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("failed to stop http server")
		}
	}()

	log.WithField("port", cfg.ServerPort).Info("travel service starting")
	if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("http server stopped")
		stop()
	}

	log.Info("travel service stopped")
}

// useMiddleware installs the global chain. The access log wraps
// authentication so rejected tokens are still logged.
func useMiddleware(e *echo.Echo, cfg *config.Config, log *logrus.Logger) {
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.JWTAuth(cfg.JWTSecret))
	e.Use(echoMw.Recover())
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func newMailer(cfg *config.Config, log *logrus.Logger) notification.Mailer {
	if cfg.SMTPHost == "" {
		return notification.LogMailer{Log: log}
	}
	return notification.NewSMTPMailer(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}
