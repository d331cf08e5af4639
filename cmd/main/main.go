package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"market-simulator/src/config"
	"market-simulator/src/grpc_control"
	"market-simulator/src/logger"
	"market-simulator/src/server"
)

// -----------------------------------------------------------------------------

const (
	shutdownTimeout        = 5 * time.Second
	retentionSweepInterval = time.Hour
)

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// 2. Setup Components
	journal, err := setupJournal(conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}

	market := setupEngine(conf.MConfig)
	registry, factChecker := setupAgents(conf.MConfig)
	controller := setupController(conf.MConfig, market, factChecker)

	// 3. API Server (REST + WebSocket hub)
	srv := server.NewAPIServer(conf.MConfig, appLogger, market, controller, registry, factChecker, journal)
	controller.SetSink(srv)

	// 4. Broadcast Loop
	caster := setupBroadcaster(conf.MConfig, market, srv, journal, factChecker, market.Symbols())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if err := caster.Start(ctx, &wg); err != nil {
		appLogger.Critical("Failed to start broadcaster: %v", err)
	}

	// 5. gRPC Control Server (health + reflection)
	grpcLogger := logger.NewLogger(conf.LogLevel, "ControlServer")
	probe := grpc_control.NewControlServer(conf.MConfig, grpcLogger)
	if err := probe.Start(); err != nil {
		appLogger.Critical("Failed to start gRPC control server: %v", err)
	}

	// 6. HTTP Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	appLogger.Info("Market simulator up. REST on %s:%d", conf.Host, conf.Port)

	// 7. Wait for shutdown signal, sweeping journal retention on the side
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	retention := time.NewTicker(retentionSweepInterval)
	defer retention.Stop()

loop:
	for {
		select {
		case <-retention.C:
			if journal != nil {
				if err := journal.CleanupOldData(); err != nil {
					appLogger.Warning("Journal cleanup failed: %v", err)
				}
			}
		case <-quit:
			break loop
		}
	}

	appLogger.Info("Shutting down...")

	// Stop accepting probes first, then wind down in dependency order
	probe.SetNotServing()
	controller.StopAll()

	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed: %v", err)
	}

	probe.Stop()

	if journal != nil {
		if err := journal.Close(); err != nil {
			appLogger.Error("Journal close failed: %v", err)
		}
	}

	appLogger.Info("Shutdown complete.")
}
