// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/gatekeeper"
	"github.com/blinklabs-io/gatekeeper/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Open starts a node without the metrics listener, for one-shot commands
func Open(cfg *config.Config, logger *slog.Logger) (*gatekeeper.Node, error) {
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, err
	}
	n, err := gatekeeper.New(
		gatekeeper.NewConfig(
			gatekeeper.WithLogger(logger),
			gatekeeper.WithDatabasePath(cfg.DatabasePath),
			gatekeeper.WithBlobPlugin(cfg.BlobPlugin),
			gatekeeper.WithMetadataPlugin(cfg.MetadataPlugin),
			gatekeeper.WithShutdownTimeout(shutdownTimeout),
			gatekeeper.WithDisableJournal(cfg.DisableJournal),
		),
	)
	if err != nil {
		return nil, err
	}
	if err := n.Start(); err != nil {
		_ = n.Stop()
		return nil, err
	}
	return n, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	n, err := gatekeeper.New(
		gatekeeper.NewConfig(
			gatekeeper.WithLogger(logger),
			gatekeeper.WithDatabasePath(cfg.DatabasePath),
			gatekeeper.WithBlobPlugin(cfg.BlobPlugin),
			gatekeeper.WithMetadataPlugin(cfg.MetadataPlugin),
			gatekeeper.WithShutdownTimeout(shutdownTimeout),
			gatekeeper.WithDisableJournal(cfg.DisableJournal),
			// Enable metrics with default prometheus registry
			gatekeeper.WithPrometheusRegistry(prometheus.DefaultRegisterer),
			gatekeeper.WithTracing(cfg.Tracing),
			gatekeeper.WithTracingStdout(cfg.TracingStdout),
			gatekeeper.WithTracingEndpoint(cfg.TracingEndpoint),
			gatekeeper.WithAsyncEvents(cfg.AsyncEvents),
		),
	)
	if err != nil {
		return err
	}
	if err := n.Start(); err != nil {
		if stopErr := n.Stop(); stopErr != nil {
			logger.Error("shutdown errors occurred", "error", stopErr)
		}
		return err
	}
	// Metrics listener
	metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info(
		"serving prometheus metrics on "+metricsAddr,
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", "node",
			)
			os.Exit(1)
		}
	}()
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	<-signalCtx.Done()
	logger.Info("signal received, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
