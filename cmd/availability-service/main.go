package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/calhq/freebusy/internal/handlers"
	"github.com/calhq/freebusy/internal/provider"
	"github.com/calhq/freebusy/internal/refresh"
	"github.com/calhq/freebusy/libs/config"
	"github.com/calhq/freebusy/libs/db"
	"github.com/calhq/freebusy/libs/httpx"
	"github.com/calhq/freebusy/libs/kafkax"
	otelx "github.com/calhq/freebusy/libs/otel"
	"github.com/calhq/freebusy/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "availability-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	scheduleProvider, cleanup, readyChecks, err := buildProvider(ctx)
	if err != nil {
		logger.Error("provider init failed", "err", err)
		panic(err)
	}
	defer cleanup()

	refresher := refresh.New(scheduleProvider, logger)
	buildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = refresher.Rebuild(buildCtx)
	cancel()
	if err != nil {
		logger.Error("initial schedule load failed", "err", err)
		panic(err)
	}

	if brokers := strings.TrimSpace(config.String("KAFKA_BROKERS", "")); brokers != "" {
		consumer := refresh.NewConsumer(logger, refresher, refresh.ConsumerConfig{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", "availability-service"),
			Topic:   config.String("KAFKA_CONSUME_TOPIC", "schedule.updated.v1"),
		})
		go consumer.Run(ctx)
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	availability := handlers.NewAvailabilityHandler(refresher, logger)
	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.HandleFunc("/api/v1/availability/busy", availability.Busy)
	mux.HandleFunc("/api/v1/availability/free", availability.Free)
	mux.HandleFunc("/api/v1/availability/check", availability.Check)
	mux.HandleFunc("/api/v1/availability/find", availability.Find)
	mux.HandleFunc("/api/v1/availability/refresh", availability.Refresh)

	requestTimeout := time.Duration(config.Int("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second
	bodyLimit := int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS")),
			AllowedHeaders: parseList(config.String("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id")),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		rateLimitMiddleware(logger),
		httpx.WithBodyLimit(bodyLimit),
		httpx.WithTimeout(requestTimeout),
	)
	handler = otelhttp.NewHandler(handler, "availability")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// buildProvider selects the schedule source from PROVIDER: an HTTP
// endpoint (the default), a Postgres database, or a local SQLite file.
func buildProvider(ctx context.Context) (provider.Provider, func(), []runtime.ReadyCheck, error) {
	noop := func() {}

	switch kind := config.String("PROVIDER", "http"); kind {
	case "http":
		url, err := config.RequiredString("SCHEDULE_URL")
		if err != nil {
			return nil, noop, nil, err
		}
		return provider.NewHTTP(url), noop, nil, nil

	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			return nil, noop, nil, err
		}
		pool, err := db.Open(ctx, dbURL)
		if err != nil {
			return nil, noop, nil, err
		}
		checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
		return provider.NewPostgres(pool), pool.Close, checks, nil

	case "sqlite":
		path, err := config.RequiredString("SQLITE_PATH")
		if err != nil {
			return nil, noop, nil, err
		}
		p, err := provider.OpenSQLite(path)
		if err != nil {
			return nil, noop, nil, err
		}
		return p, func() { _ = p.Close() }, nil, nil

	default:
		return nil, noop, nil, fmt.Errorf("unknown PROVIDER %q (want http, postgres, or sqlite)", kind)
	}
}

func rateLimitMiddleware(logger *slog.Logger) httpx.Middleware {
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}

	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
		return rl.Middleware(logger, isTruthy(config.String("RATE_LIMIT_FAIL_OPEN", "true")))
	}

	rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
	logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	return rl.Middleware()
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
