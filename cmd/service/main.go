package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/breatheaware/aqi-service/internal/client"
	"github.com/breatheaware/aqi-service/internal/config"
	"github.com/breatheaware/aqi-service/internal/engine"
	httphandler "github.com/breatheaware/aqi-service/internal/http"
	"github.com/breatheaware/aqi-service/internal/model"
	"github.com/breatheaware/aqi-service/internal/observability"
	"github.com/breatheaware/aqi-service/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	// A missing model is not fatal: the server keeps serving health and
	// structured errors while every inference call fails fast.
	artifacts, loadErr := model.Load(cfg.ModelDir)
	if loadErr != nil {
		logger.Error("model artifacts failed to load; inference disabled",
			zap.String("dir", cfg.ModelDir), zap.Error(loadErr))
	} else {
		logger.Info("model artifacts loaded",
			zap.String("dir", cfg.ModelDir),
			zap.Int("trees", len(artifacts.Forest.Trees)),
			zap.Int("classes", artifacts.Forest.NumClasses))
	}
	inferenceEngine := engine.New(artifacts, loadErr, logger)

	if cfg.AirPollutionAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY not configured; /live-aqi will return upstream errors")
	}
	airClient := client.NewOpenWeatherClient(
		cfg.AirPollutionAPIKey,
		cfg.AirPollutionAPIURL,
		cfg.Latitude,
		cfg.Longitude,
		cfg.AirPollutionTimeout,
	)
	liveService := service.NewLiveAQIService(inferenceEngine, airClient)

	handler := httphandler.NewHandler(inferenceEngine, liveService, logger, cfg.AirPollutionAPIKey != "")

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.Use(httphandler.CORSMiddleware)
	router.HandleFunc("/", handler.GetHome).Methods("GET")
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	router.HandleFunc("/predict", handler.PostPredict).Methods("POST")
	liveRouter := router.PathPrefix("/live-aqi").Subrouter()
	liveRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	liveRouter.HandleFunc("", handler.GetLiveAQI).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", ":"+cfg.ServerPort),
			zap.Float64("lat", cfg.Latitude),
			zap.Float64("lon", cfg.Longitude))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	handler.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
