package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-resolver/internal/api/http"
	"github.com/i474232898/weather-resolver/internal/config"
	"github.com/i474232898/weather-resolver/internal/scheduler"
	"github.com/i474232898/weather-resolver/internal/store"
	"github.com/i474232898/weather-resolver/internal/weather"
	"github.com/i474232898/weather-resolver/internal/weather/providers"
)

func main() {
	// Load configuration (.env, optional YAML file, environment).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Exactly one upstream adapter is live.
	source, err := providers.New(cfg.Provider, providers.Options{
		HTTP: providers.HTTPClientConfig{
			Client: httpClient,
			Breaker: providers.BreakerConfig{
				MaxFailures: uint32(cfg.BreakerMaxFailures),
				Interval:    cfg.BreakerInterval,
				Timeout:     cfg.BreakerTimeout,
			},
		},
		GoogleAPIKey:  cfg.GoogleAPIKey,
		GoogleCountry: cfg.GoogleCountry,
	})
	if err != nil {
		log.Fatalf("failed to configure provider: %v", err)
	}
	log.Printf("INFO: using weather provider %s", source.Name())

	// Mode and API key are re-read from the environment on every resolve.
	resolver := weather.NewResolver(source, config.RuntimeSettings(cfg.DefaultSettings))

	// Upstream probe history with configured retention.
	probeStore := store.NewMemoryStore(cfg.ProbeMaxHistory, cfg.ProbeMaxAge)

	sched := scheduler.New(cfg.ProbeCities, cfg.ProbeInterval, cfg.HTTPTimeout, resolver, probeStore)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-resolver",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: httpapi.RequestIDKey,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Resolver: resolver,
		Probes:   probeStore,
		Timeout:  cfg.HTTPTimeout,
	})

	// Web client with SPA fallback.
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
		index := filepath.Join(cfg.StaticDir, "index.html")
		app.Get("*", func(c *fiber.Ctx) error {
			return c.SendFile(index)
		})
	}

	go func() {
		log.Printf("INFO: server running on http://localhost:%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
