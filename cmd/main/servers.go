package main

import (
	"context"
	"fmt"
	"time"

	"nba-stats-explorer/src/analysis"
	datasource "nba-stats-explorer/src/data_source"
	pb "nba-stats-explorer/src/grpc_control"
	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startServers orchestrates the startup of all server components. The
// returned gRPC server is nil when the control service is disabled.
func startServers(
	srv interfaces.IDataExchanger,
	cache *datasource.SeasonCache,
	analyzer *analysis.AnalysisFacade,
	config *models.MConfig,
	appLogger *logger.Logger,
) *grpc.Server {

	// 1. Dashboard
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	if config.GrpcPort == 0 {
		appLogger.Info("gRPC Control Server disabled")
		return nil
	}
	grpcLogger := logger.NewLogger(config, "ControlService")
	controlService := pb.NewControlService(config, cache, analyzer, srv, grpcLogger)
	grpcServer := pb.NewGRPCServer(controlService, grpcLogger)

	go func() {
		addr := fmt.Sprintf("%s:%d", config.GrpcHost, config.GrpcPort)
		if err := pb.Serve(grpcServer, addr, grpcLogger); err != nil {
			appLogger.Critical("failed to serve gRPC: %v", err)
		}
	}()
	return grpcServer
}

// -----------------------------------------------------------------------------

// warmDefaultSeason loads the default season so the first page view does not
// wait on the scraper. A failure is only logged; the page retries.
func warmDefaultSeason(ctx context.Context, cache *datasource.SeasonCache, config *models.MConfig, appLogger *logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(config.Network.RequestTimeout)*time.Second)
	defer cancel()

	season := config.Source.DefaultSeason
	table, err := cache.Get(ctx, season)
	if err != nil {
		appLogger.Warning("Warm-up of season %d failed: %v", season, err)
		return
	}
	appLogger.Info("Season %d warmed (%d players)", season, len(table.Rows))
}
