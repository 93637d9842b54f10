package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/ObjCodingDevMart/storefront/internal/api"
	"github.com/ObjCodingDevMart/storefront/internal/cache"
	"github.com/ObjCodingDevMart/storefront/internal/config"
	h "github.com/ObjCodingDevMart/storefront/internal/http"
	"github.com/ObjCodingDevMart/storefront/internal/review"
	"github.com/ObjCodingDevMart/storefront/internal/session"
	"github.com/ObjCodingDevMart/storefront/pkg/circuitbreaker"
	"github.com/ObjCodingDevMart/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New("storefront", cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// traceparent flows from incoming requests to backend calls
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	client := api.New(api.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.RequestTimeout,
		Breaker: circuitbreaker.Config{
			MaxFailures:      uint32(cfg.Backend.MaxFailures),
			OpenTimeout:      cfg.Backend.OpenTimeout,
			HalfOpenRequests: 1,
		},
	}, zl)

	// Review lists are served uncached when redis is unreachable.
	var reviewCache cache.ReviewCache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		zl.Warn("redis unavailable, review cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	} else {
		reviewCache = cache.NewRedisCache(redisClient, cfg.Redis.ReviewCacheTTL)
		zl.Info("redis ping succeeded", zap.String("addr", cfg.Redis.Addr))
	}
	cancelPing()

	browser := review.NewBrowser(client, reviewCache, zl)
	registry := session.NewRegistry(
		func(token string) session.Backend { return client.WithToken(token) },
		session.Config{IdleTimeout: cfg.Session.IdleTimeout, Invalidator: browser},
		zl,
	)
	defer registry.Close()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go registry.Run(sweepCtx, cfg.Session.SweepInterval)

	handler := h.NewHandler(registry, browser, cfg.Backend.RequestTimeout, zl)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.Backend.RequestTimeout + 5*time.Second))
	r.Use(middleware.RequestSize(cfg.Server.MaxRequestBodySize))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Route("/api/v1", handler.Routes)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("storefront starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Backend.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exited")
}
