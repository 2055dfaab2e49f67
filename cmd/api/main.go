package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rsvp-reader/internal/infra/cache"
	"rsvp-reader/internal/infra/extractor"
	"rsvp-reader/internal/infra/fetcher"
	"rsvp-reader/internal/infra/worker"
	"rsvp-reader/internal/observability/logging"
	"rsvp-reader/internal/observability/tracing"
	"rsvp-reader/internal/usecase/fetch"
	"rsvp-reader/pkg/config"
	"rsvp-reader/pkg/ratelimit"

	hhttp "rsvp-reader/internal/handler/http"
	"rsvp-reader/internal/handler/http/fetchurl"
	"rsvp-reader/internal/handler/http/middleware"
	"rsvp-reader/internal/handler/http/requestid"
)

// @title           RSVP Reader Fetch API
// @version         1.0
// @description     Fetches a web page and returns its readable text for the speed reader.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

const maxRequestBody = 64 << 10

func main() {
	logger := initLogger()
	version := getVersion()

	shutdownTracing := tracing.Setup(tracingSampleRatio(logger))

	components := setupServer(logger, version)
	runServer(logger, components, version)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracer provider shutdown failed", slog.Any("error", err))
	}
}

// initLogger installs the JSON logger as the slog default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

func tracingSampleRatio(logger *slog.Logger) float64 {
	ratio := config.GetEnvFloat("TRACING_SAMPLE_RATIO", 1.0)
	if err := config.ValidateRatio(ratio); err != nil {
		logger.Warn("invalid TRACING_SAMPLE_RATIO, using default",
			slog.Float64("value", ratio),
			slog.String("error", err.Error()))
		return 1.0
	}
	return ratio
}

// ServerComponents holds what runServer needs besides the handler.
type ServerComponents struct {
	Handler http.Handler
	Sweeper *worker.Scheduler
}

// setupServer builds the fetch pipeline, the routes and the sweep scheduler.
// Any configuration error is fatal.
func setupServer(logger *slog.Logger, version string) *ServerComponents {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		fatal(logger, "failed to load fetch configuration", err)
	}
	if err := fetchCfg.Validate(); err != nil {
		fatal(logger, "invalid fetch configuration", err)
	}

	if fetchCfg.FallbackEnabled {
		logger.Info("fallback proxy enabled", slog.String("url", fetchCfg.FallbackURL))
	} else {
		logger.Warn("fallback proxy is DISABLED - sites that block direct requests will fail")
	}

	extractCfg, err := extractor.LoadConfigFromEnv()
	if err != nil {
		fatal(logger, "failed to load extractor configuration", err)
	}

	cacheCfg, err := cache.LoadConfigFromEnv()
	if err != nil {
		fatal(logger, "failed to load cache configuration", err)
	}
	resultCache := cache.New(cacheCfg)

	contentFetcher := fetcher.New(fetchCfg, fetcher.Guard{})
	svc := fetch.NewService(
		fetcher.Guard{},
		contentFetcher,
		extractor.New(extractCfg),
		resultCache,
		cache.NormalizeURL,
	)

	rateLimitConfig, err := config.LoadRateLimitConfig()
	if err != nil {
		fatal(logger, "failed to load rate limit configuration", err)
	}
	rateMetrics := ratelimit.NewPrometheusMetrics()
	limiter := ratelimit.NewLimiter("fetch", *rateLimitConfig, ratelimit.WithMetrics(rateMetrics))

	extractorID, err := middleware.NewIdentifierExtractor(rateLimitConfig)
	if err != nil {
		fatal(logger, "failed to build client identifier extractor", err)
	}
	if rateLimitConfig.Enabled {
		logger.Info("rate limiting initialized",
			slog.Int("limit", rateLimitConfig.Limit),
			slog.Duration("window", rateLimitConfig.Window),
			slog.Int("max_keys", rateLimitConfig.MaxActiveKeys),
			slog.String("identifier_mode", rateLimitConfig.IdentifierMode))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	sweepRegistry := prometheus.NewRegistry()
	sweeper := setupSweeper(logger, sweepRegistry, resultCache, limiter)

	mux := http.NewServeMux()
	fetchurl.Register(mux,
		fetchurl.Handler{Svc: svc, Debug: config.GetEnvString("APP_ENV", "production") == "development"},
		middleware.RateLimit(limiter, extractorID))

	health := &hhttp.HealthHandler{Version: version, Cache: resultCache, Limiter: limiter}
	if fetchCfg.FallbackEnabled {
		health.Fallback = contentFetcher
	}
	mux.Handle("GET /health", health)
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler(rateMetrics.Registry(), sweepRegistry))

	return &ServerComponents{
		Handler: applyMiddleware(logger, mux),
		Sweeper: sweeper,
	}
}

// setupSweeper registers the cache and rate-limit sweeps on one schedule.
func setupSweeper(logger *slog.Logger, reg prometheus.Registerer, c *cache.Cache, limiter *ratelimit.Limiter) *worker.Scheduler {
	metrics := worker.NewSweepMetrics(reg)
	cfg := worker.LoadConfigFromEnv(logger, metrics)

	sched, err := worker.NewScheduler(cfg, metrics, logger)
	if err != nil {
		fatal(logger, "failed to create sweep scheduler", err)
	}

	sched.Register(worker.Job{
		Name: "fetch-cache",
		Run: func(context.Context) (int, error) {
			expired, evicted := c.Sweep()
			return expired + evicted, nil
		},
	})
	sched.Register(worker.Job{
		Name: "rate-limit",
		Run:  limiter.Cleanup,
	})

	logger.Info("sweep scheduler configured",
		slog.String("schedule", cfg.Schedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("job_timeout", cfg.JobTimeout))
	return sched
}

// applyMiddleware wraps the mux with the middleware chain.
// Order: CORS → Request ID → Tracing → Recovery → Logging → Metrics → Timeout → Input validation
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	corsConfig := middleware.LoadCORSConfigFromEnv()
	logger.Info("CORS configured",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	requestTimeout := config.GetEnvDuration("HTTP_REQUEST_TIMEOUT", 60*time.Second)
	if err := config.ValidateDurationRange(requestTimeout, time.Second, 5*time.Minute); err != nil {
		logger.Warn("invalid HTTP_REQUEST_TIMEOUT, using default", slog.String("error", err.Error()))
		requestTimeout = 60 * time.Second
	}

	return hhttp.Chain(handler,
		middleware.CORS(corsConfig),
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
		hhttp.Timeout(requestTimeout),
		hhttp.InputValidation(maxRequestBody),
	)
}

// runServer serves until SIGINT or SIGTERM, then drains in-flight requests
// and stops the sweep scheduler.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := components.Sweeper.Start(); err != nil {
		fatal(logger, "failed to start sweep scheduler", err)
	}

	addr := ":" + config.GetEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()

	if err := components.Sweeper.Stop(shutdownCtx); err != nil {
		logger.Warn("sweep scheduler did not stop cleanly", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
