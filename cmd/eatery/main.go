package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"eatery/internal/cache"
	"eatery/internal/config"
	"eatery/internal/database"
	"eatery/internal/handler"
	"eatery/internal/metrics"
	"eatery/internal/mw"
	"eatery/internal/notify"
	"eatery/internal/ordernum"
	"eatery/internal/service"
	"eatery/internal/store"
	"eatery/internal/sweeper"
)

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(context.Background(), db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	met := metrics.NewRegistry()
	pg := store.NewPostgres(db)
	metricCache := cache.NewRedis(redisClient)
	numbers := ordernum.NewGenerator()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			slog.Error("failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	}

	// Services
	authSvc := service.NewAuthService(pg)
	cartSvc := service.NewCartService(pg, pg)
	paymentClient := service.NewPaymentClient(cfg.PaymentProviderAddress)
	orderSvc := service.NewOrderService(pg, pg, pg, pg, paymentClient, notifier, numbers, met)
	reportSvc := service.NewReportService(pg, metricCache, met)

	// Sweeper
	sw := sweeper.New(pg, met, cfg.PaymentGrace, cfg.DeliveryGrace)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/user/register", handler.RegisterHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/user/login", handler.LoginHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/payment/notify", handler.SettlementCallbackHandler(orderSvc))
	r.Handle("/metrics", met.Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/api/user/cart", handler.AddToCartHandler(cartSvc))
		r.Post("/api/user/cart/sub", handler.SubFromCartHandler(cartSvc))
		r.Get("/api/user/cart", handler.ListCartHandler(cartSvc))
		r.Delete("/api/user/cart", handler.CleanCartHandler(cartSvc))

		r.Post("/api/user/orders", handler.SubmitOrderHandler(orderSvc))
		r.Post("/api/user/orders/payment", handler.RequestPaymentHandler(orderSvc))

		r.Get("/api/admin/report/turnover", handler.TurnoverReportHandler(reportSvc))
		r.Get("/api/admin/report/users", handler.UserReportHandler(reportSvc))
		r.Get("/api/admin/report/orders", handler.OrderReportHandler(reportSvc))
		r.Get("/api/admin/report/top10", handler.TopSalesHandler(reportSvc))
		r.Get("/api/admin/report/export", handler.ExportSnapshotHandler(reportSvc))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := sw.Run(ctx, cfg.PaymentSweepSpec, cfg.DeliverySweepSpec); err != nil {
			slog.Error("sweeper failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop sweeper
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
