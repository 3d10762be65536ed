package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/Ayuoyi/AsiliConnect/api/routes"
	"github.com/Ayuoyi/AsiliConnect/internal/assistant"
	"github.com/Ayuoyi/AsiliConnect/internal/cart"
	"github.com/Ayuoyi/AsiliConnect/internal/notifications"
	"github.com/Ayuoyi/AsiliConnect/internal/products"
	"github.com/Ayuoyi/AsiliConnect/pkg/ai"
	"github.com/Ayuoyi/AsiliConnect/pkg/bus"
	"github.com/Ayuoyi/AsiliConnect/pkg/config"
	"github.com/Ayuoyi/AsiliConnect/pkg/kv"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
	"github.com/Ayuoyi/AsiliConnect/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := kv.New(context.Background(), cfg.Store, cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap state store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	busMetrics := metrics.NewBusMetrics(registry)
	assistantMetrics := metrics.NewAssistantMetrics(registry)

	broadcast := bus.New(bus.Options{OnPublish: busMetrics.IncPublish})

	cartService, err := cart.NewService(store, broadcast)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	feedService, err := notifications.NewService(store, broadcast, cfg.Notifications.Retention)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	// The completion provider is optional; without credentials the API
	// runs with the assistant and AI proxy routes disabled.
	var provider *ai.Provider
	var assistantManager *assistant.Manager
	var describer products.Describer
	if cfg.AI.APIKey != "" {
		provider, err = ai.NewProvider(cfg.AI)
		if err != nil {
			logg.Error(context.Background(), "failed to create completion provider", err)
			os.Exit(1)
		}
		describer = provider

		assistantManager, err = assistant.NewManager(assistant.Config{
			MaxRequests:    cfg.Assistant.MaxRequests,
			RetryThreshold: cfg.Assistant.RetryThreshold,
			HistoryWindow:  cfg.Assistant.HistoryWindow,
		}, provider, assistantMetrics)
		if err != nil {
			logg.Error(context.Background(), "failed to create assistant manager", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "no AI api key configured, assistant routes disabled")
	}

	productsService, err := products.NewService(store, broadcast, describer, feedService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"store_driver": cfg.Store.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			store,
			cartService,
			feedService,
			productsService,
			assistantManager,
			provider,
			registry,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down")
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		teardown := multierr.Combine(
			server.Shutdown(drainCtx),
			store.Close(),
		)
		if teardown != nil {
			logg.Error(ctx, "shutdown finished with errors", teardown)
			os.Exit(1)
		}
	}
}
