// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/adxyz/adinci/pkg/analytics"
	"github.com/adxyz/adinci/pkg/copygen"
	"github.com/adxyz/adinci/pkg/log"
	"github.com/adxyz/adinci/pkg/marketplace"
	"github.com/adxyz/adinci/pkg/metric"
	"github.com/adxyz/adinci/pkg/storage"
)

var (
	port      = flag.String("port", "8080", "API server port")
	adminPort = flag.String("admin-port", "9090", "Admin/metrics server port")
	dataDir   = flag.String("data-dir", "/tmp/adincid", "Data directory")
	dbType    = flag.String("db", "badger", "Database backend: badger or memory")
	logLevel  = flag.String("log-level", "info", "Log level")
	env       = flag.String("env", "development", "Environment (development/production)")
	seed      = flag.Bool("seed", true, "Seed the Dubai demo dataset when empty")

	// Version info
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	flag.Parse()

	fmt.Printf("Adinci Daemon (adincid) %s (commit: %s)\n", Version, GitCommit)

	logger := log.NewWithLevel(*logLevel)
	defer logger.Sync()

	store, err := storage.NewStorage(*dbType, *dataDir)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close()

	metrics, err := metric.NewMetrics()
	if err != nil {
		logger.Fatal("failed to create metrics", zap.Error(err))
	}

	tracker := analytics.NewTracker()

	market, err := marketplace.New(marketplace.Config{
		Store:     store,
		Metrics:   metrics,
		Analytics: tracker,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("failed to restore marketplace", zap.Error(err))
	}
	if *seed {
		market.Seed()
	}

	generator := copygen.New(os.Getenv("ANTHROPIC_API_KEY"), logger)

	api := &apiServer{
		market:    market,
		generator: generator,
		stats:     tracker,
		log:       logger,
	}

	srv := &http.Server{
		Addr:    ":" + *port,
		Handler: api.router(),
	}
	adminSrv := &http.Server{
		Addr:    ":" + *adminPort,
		Handler: adminRouter(metrics),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()
	go func() {
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("admin server failed", zap.Error(err))
		}
	}()

	logger.Info("adincid started",
		zap.String("port", *port),
		zap.String("admin_port", *adminPort),
		zap.String("env", *env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("API server forced to shutdown", zap.Error(err))
	}
	if err := adminSrv.Shutdown(ctx); err != nil {
		logger.Error("admin server forced to shutdown", zap.Error(err))
	}
}

// adminRouter serves health and Prometheus metrics on the admin port
func adminRouter(metrics *metric.Metrics) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods("GET")

	r.Handle("/metrics", promhttp.HandlerFor(
		metrics.GetGatherer(),
		promhttp.HandlerOpts{},
	)).Methods("GET")

	return r
}

func corsConfig() cors.Config {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	return config
}

func ginMode() string {
	if *env == "production" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
