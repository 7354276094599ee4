package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/citycommute/backend/internal/config"
	httpdelivery "github.com/citycommute/backend/internal/delivery/http"
	"github.com/citycommute/backend/internal/domain"
	"github.com/citycommute/backend/internal/metrics"
	"github.com/citycommute/backend/internal/provider/kakao"
	"github.com/citycommute/backend/internal/provider/odsay"
	"github.com/citycommute/backend/internal/publisher"
	"github.com/citycommute/backend/internal/repository/postgres"
	"github.com/citycommute/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		lg := zerolog.New(os.Stderr)
		lg.Fatal().Err(err).Msg("config error")
	}

	logger := newLogger(cfg.LogLevel)

	// Database connection; fall back to the in-memory repository when no DSN
	// is configured or the pool cannot be reached.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo domain.DataRepository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr != nil {
				err = pingErr
			}
		}
		if err != nil {
			logger.Warn().Err(err).Msg("could not connect to database, running with in-memory data")
			repo = postgres.NewMockRepository()
		} else {
			defer pool.Close()
			logger.Info().Msg("connected to PostgreSQL")
			repo = postgres.NewPostgresRepository(pool, logger)
		}
	} else {
		logger.Info().Msg("no DATABASE_URL configured, running with in-memory data")
		repo = postgres.NewMockRepository()
	}

	// Metrics
	var mcol *metrics.Collector
	var metricsSrvShutdown func()
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(logger)
		srv := mcol.Serve(cfg.MetricsAddr)
		metricsSrvShutdown = func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}
	}
	var svcMetrics service.Metrics
	if mcol != nil {
		svcMetrics = mcol
	}

	// Trip event publisher (optional)
	var events service.TripPublisher
	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, logger, pubMetrics(mcol))
		if err != nil {
			logger.Warn().Err(err).Msg("could not connect to NATS, trip events disabled")
		} else {
			defer pub.Close()
			events = pub
		}
	}

	// Providers
	routeSearch := odsay.NewClient(cfg.ODsayAPIKey, logger)
	geocoder := kakao.NewClient(cfg.KakaoAPIKey, logger)
	if cfg.ODsayAPIKey == "" {
		logger.Warn().Msg("no ODSAY_API_KEY configured, serving offline demo itineraries")
	}

	// Services
	crowdSvc := service.NewCrowdService(repo, logger, svcMetrics)
	segmentSvc := service.NewSegmentService(crowdSvc, logger)
	plannerSvc := service.NewPlannerService(routeSearch, geocoder, segmentSvc, repo, repo, events, logger, svcMetrics)
	learnerSvc := service.NewLearnerService(repo, cfg.LearningRate, logger, svcMetrics)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "CommutePlanner API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	handler := httpdelivery.NewHandler(plannerSvc, learnerSvc, repo)
	httpdelivery.SetupRoutes(app, handler)

	// Graceful shutdown
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	plannerSvc.WaitBackground()
	if metricsSrvShutdown != nil {
		metricsSrvShutdown()
	}
	logger.Info().Msg("server exited gracefully")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

// requestLogger emits one structured line per request.
func requestLogger(logger zerolog.Logger) fiber.Handler {
	lg := logger.With().Str("component", "http").Logger()
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		lg.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}

// pubMetrics avoids handing the publisher a non-nil interface wrapping a nil
// collector.
func pubMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return c
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
