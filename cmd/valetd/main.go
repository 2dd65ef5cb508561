package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"valet-parking-backend/config"
	"valet-parking-backend/internal/api"
	"valet-parking-backend/internal/customer"
	"valet-parking-backend/internal/db"
	"valet-parking-backend/internal/events"
	"valet-parking-backend/internal/layout"
	"valet-parking-backend/internal/logging"
	"valet-parking-backend/internal/monitor"
	"valet-parking-backend/internal/mw"
	"valet-parking-backend/internal/occupancy"
	"valet-parking-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	logger.WithField("path", configPath).Info("configuration loaded")

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}
	logger.WithField("driver", cfg.Database.Driver).Info("database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	// Live events: websocket hub always, AMQP when configured.
	hub := events.NewHub(logger)
	go hub.Run(ctx)
	sinks := []events.Sink{hub}
	if cfg.Events.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.AMQPExchange, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to message broker")
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
		logger.WithField("exchange", cfg.Events.AMQPExchange).Info("publishing events to broker")
	}
	pool := events.NewWorkerPool(cfg.Events.WorkerPoolSize, cfg.Events.QueueSize, logger, sinks...)
	pool.Start(ctx)

	engine := occupancy.NewEngine(appStore, pool, logger)
	layouts := layout.NewService(appStore, pool, logger, cfg.Parking.MaxImportSpots)
	customers := customer.NewService(appStore, logger)

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	if cfg.Monitor.Enabled {
		go monitor.NewService(engine, limiter, cfg.Monitor.Lots, cfg.Monitor.Interval, logger).Run(ctx)
	}

	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(engine, layouts, customers, hub, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		Limiter:  limiter,
		Cache:    cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL),
		CacheTTL: cfg.Server.CacheTTL,
		Log:      logger,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server ListenAndServe")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown")
	}
	cancel()

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server gracefully stopped")
}
