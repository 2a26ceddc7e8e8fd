package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nba-stats-explorer/src/config"
	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/server"
	"nba-stats-explorer/src/utils"
)

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf, conf.Name)

	// 4. Memory Manager
	memManager := utils.NewMemoryManager(helpers.RecommendedMemoryLimit(conf.MemoryMB), appLogger)
	memManager.Apply()

	// 5. Setup Components
	store, err := setupStore(conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer store.Close()

	networkManager := setupNetwork(conf.MConfig)
	analyzer := setupAnalysis(conf.MConfig)
	cache := setupSeasonCache(conf.MConfig, store, networkManager, analyzer)

	serverLogger := logger.NewLogger(conf, "DashboardServer")
	srv := server.NewDashboardServer(conf.MConfig, cache, analyzer, serverLogger)

	// Lifecycle Management
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go memManager.Run(ctx, time.Minute)

	// 6. Start Servers
	grpcServer := startServers(srv, cache, analyzer, conf.MConfig, appLogger)

	// 7. Bootstrap (Initial Load)
	go warmDefaultSeason(ctx, cache, conf.MConfig, appLogger)

	// 8. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := srv.Stop(); err != nil {
		appLogger.Error("Dashboard shutdown failed: %v", err)
	}
	appLogger.Info("Shutdown complete.")
}
