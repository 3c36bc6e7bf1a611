// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"assistant-workers/internal/api"
	"assistant-workers/internal/app"
	"assistant-workers/internal/common/camunda"
	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/observability"
	"assistant-workers/internal/workers/assistant"
	"assistant-workers/pkg/registry"
)

const serviceName = "assistant-workers"

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager",
		zap.String("environment", cfg.App.Environment),
		zap.String("restaurantSource", cfg.Assistant.RestaurantSource),
	)

	obs := observability.New(serviceName)
	defer obs.Shutdown()
	if cfg.Tracing.Enabled {
		if err := obs.EnableTracing(serviceName, cfg.Tracing.JaegerEndpoint); err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		}
	}

	ctx := context.Background()

	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            camunda.DefaultRetryConfig,
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	core, err := app.Build(ctx, cfg, log, app.Options{})
	if err != nil {
		zapLog.Fatal("failed to assemble assistant", zap.Error(err))
	}

	handlers := core.Handlers(inputSchemas(cfg.Assistant.RegistryPath, zapLog))

	workers := camunda.NewRegistry(zeebe.GetClient(), log)
	for _, taskType := range assistant.TaskTypes() {
		handle := handlers.JobHandlers()[taskType]
		workers.Start(taskType, config.GetWorkerConfig(cfg, taskType), instrument(obs, taskType, handle))
	}
	zapLog.Info("Workers registered", zap.Strings("taskTypes", workers.TaskTypes()))

	checks := map[string]api.ReadinessCheck{"zeebe": zeebe.HealthCheck}
	for name, check := range core.ReadinessChecks() {
		checks[name] = check
	}
	server := api.NewServer(api.Handlers{
		Classify: handlers.Classify,
		Extract:  handlers.Extract,
		Plan:     handlers.Plan,
		Confirm:  handlers.Confirm,
	}, checks, log).HTTPServer(cfg.Server.Port)

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	workers.Close()
	if err := core.Close(); err != nil {
		zapLog.Error("Error closing assistant dependencies", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

// inputSchemas loads the activity registry. A missing or invalid registry only
// disables input-schema checks.
func inputSchemas(path string, log *zap.Logger) map[string]map[string]interface{} {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded, input schemas disabled", zap.String("path", path), zap.Error(err))
		return nil
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry invalid, input schemas disabled", zap.String("path", path), zap.Error(err))
		return nil
	}
	return reg.InputSchemas()
}

// instrument records job counts and durations through OpenTelemetry around a handler.
func instrument(obs *observability.Observability, taskType string, next worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		next(client, job)
		ctx := context.Background()
		obs.RecordJobProcessed(ctx, taskType, "handled")
		obs.RecordJobDuration(ctx, taskType, time.Since(start), "handled")
	}
}
