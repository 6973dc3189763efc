package main // Entry point package

import (
	"context"
	"errors"
	"log" // Logging library
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // .env loading for local runs
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/trip-seat-reservation/internal/app"
	"github.com/iliyamo/trip-seat-reservation/internal/config" // Internal config loader
	"github.com/iliyamo/trip-seat-reservation/internal/handler"
	"github.com/iliyamo/trip-seat-reservation/internal/metrics"
	"github.com/iliyamo/trip-seat-reservation/internal/middleware"
	"github.com/iliyamo/trip-seat-reservation/internal/queue"
	"github.com/iliyamo/trip-seat-reservation/internal/router" // Internal router setup
	"github.com/iliyamo/trip-seat-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; real env vars win
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("env", cfg.Env)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	st, err := app.OpenStore(ctx, cfg, logger.With("component", "store"))
	if err != nil {
		log.Fatalf("open store (%s): %v", cfg.StoreDriver, err)
	}

	var pub service.EventPublisher
	if cfg.EventsEnabled {
		pub = queue.NewPublisher(cfg.RabbitURL, logger.With("component", "publisher"))
	}
	core := app.New(st, app.Options{
		Prefix:     cfg.StorePrefix,
		BcryptCost: cfg.BcryptCost,
		MaxSeats:   cfg.MaxSeatsPerBooking,
		Logger:     logger,
		Publisher:  pub,
	})
	defer func() { _ = core.Close() }()
	if err := core.Initialize(ctx); err != nil {
		log.Fatalf("initialize: %v", err)
	}

	if cfg.ConsumerEnabled {
		c := &queue.Consumer{URL: cfg.RabbitURL, LogDir: cfg.LogDir, Logger: logger.With("component", "booking-consumer")}
		go func() { _ = c.Run(ctx) }()
	}

	// Redis is optional: without it rate limiting and caching pass through.
	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Printf("redis unavailable, rate limit and cache disabled: %v", err)
	} else {
		defer func() { _ = rdb.Close() }()
	}
	cacheCfg := config.LoadCacheConfig()
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	purge := handler.Purger(func(ctx context.Context) error {
		return middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix)
	})

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.Any("error", v.Error),
			)
			return nil
		},
	}))

	router.RegisterRoutes(e, core.Ready)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, core.Identity), cfg.JWTSecret, limit)
	router.RegisterTrips(e, handler.NewTripHandler(core.Catalog), limit, cache)
	router.RegisterBooking(e, handler.NewBookingHandler(core.Ledger, core.Identity, purge), cfg.JWTSecret, limit)
	router.RegisterAdmin(e, handler.NewAdminTripHandler(core.Catalog, core.Ledger, purge), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
