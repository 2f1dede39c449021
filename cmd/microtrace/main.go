// Entrypoint for the MicroTrace service.
//
// Startup sequence: load the environment (.env supported), configure the
// structured logger, build the metrics registry, configure tracing if
// enabled, assemble the router and serve until SIGINT/SIGTERM. Shutdown
// drains the HTTP server first, then flushes buffered spans.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/microtrace/microtrace/internal/api"
	"github.com/microtrace/microtrace/internal/config"
	"github.com/microtrace/microtrace/internal/logging"
	"github.com/microtrace/microtrace/internal/metrics"
	"github.com/microtrace/microtrace/internal/tracing"
	"github.com/microtrace/microtrace/internal/worker"
)

func main() {
	// A missing .env file is fine; the environment itself is authoritative.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.LogLevel)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting microtrace",
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.ServiceVersion),
		zap.String("environment", cfg.Environment),
		zap.Bool("chaos_enabled", cfg.ChaosEnabled),
		zap.Bool("tracing_enabled", cfg.TracingEnabled))

	registry := metrics.NewRegistry()
	metrics.RegisterSystemMetrics(cfg.MetricsNamespace, registry, metrics.SystemMetricsConfig{})
	requestMetrics := metrics.NewRequestMetrics(cfg.MetricsNamespace, registry)

	var tr *tracing.Tracing
	if cfg.TracingEnabled {
		tr = tracing.New(tracing.Options{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Environment:    cfg.Environment,
			Endpoint:       cfg.OTLPEndpoint,
			SamplingRate:   cfg.TraceSamplingRate,
			ExcludedPaths:  []string{"/metrics", "/health"},
		})
		if _, err := tr.Configure(context.Background()); err != nil {
			log.Fatal("failed to configure tracing", zap.Error(err))
		}
		log.Info("tracing_initialized",
			zap.String("endpoint", cfg.OTLPEndpoint),
			zap.Float64("sampling_rate", cfg.TraceSamplingRate))
	}

	workerService := worker.New(worker.Config{
		BaseDelay:        cfg.WorkerBaseDelay,
		ChaosEnabled:     cfg.ChaosEnabled,
		ChaosProbability: cfg.ChaosProbability,
		ChaosMinDelay:    cfg.ChaosMinDelay,
		ChaosMaxDelay:    cfg.ChaosMaxDelay,
	})

	router := api.NewRouter(cfg, workerService, requestMetrics, tr)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Startup self-check through the instrumented client: exercises the
	// outbound span path and confirms the listener came up.
	go selfCheck(log, cfg.HTTPAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("HTTP server failed", zap.Error(err))
	case sig := <-quit:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		_ = server.Close()
	}

	if tr != nil {
		flushCtx, cancelFlush := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelFlush()
		if err := tr.Shutdown(flushCtx); err != nil {
			log.Error("failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Info("server exited gracefully")
}

// selfCheck probes the local /health endpoint once the listener is up.
func selfCheck(log *zap.Logger, addr string) {
	time.Sleep(250 * time.Millisecond)

	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}

	client := tracing.NewHTTPClient()
	client.Timeout = 2 * time.Second

	resp, err := client.Get("http://" + host + "/health")
	if err != nil {
		log.Warn("startup self-check failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	log.Info("startup self-check ok", zap.Int("status", resp.StatusCode))
}
