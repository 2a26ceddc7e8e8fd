package main

import (
	"time"

	"nba-stats-explorer/src/analysis"
	datasource "nba-stats-explorer/src/data_source"
	"nba-stats-explorer/src/data_source/bbref"
	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
	"nba-stats-explorer/src/network"
	"nba-stats-explorer/src/storage"
)

// -----------------------------------------------------------------------------

// setupStore initializes the season store based on config
func setupStore(config *models.MConfig, appLogger *logger.Logger) (interfaces.ISeasonStore, error) {
	store, err := storage.NewSeasonStore(config)
	if err != nil {
		appLogger.Error("Failed to init store: %v", err)
		return nil, err
	}
	if err := store.Initialize(); err != nil {
		appLogger.Error("Failed to initialize %s store: %v", config.Storage.DBType, err)
		store.Close()
		return nil, err
	}
	appLogger.Info("Season store ready (%s)", config.Storage.DBType)
	return store, nil
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(config *models.MConfig) interfaces.INetworkManager {
	networkLogger := logger.NewLogger(config, "NetworkManager")
	return network.NewNetworkManager(config, networkLogger)
}

// -----------------------------------------------------------------------------

// setupAnalysis initializes the analysis facade
func setupAnalysis(config *models.MConfig) *analysis.AnalysisFacade {
	analysisLogger := logger.NewLogger(config, "Analysis")
	return analysis.NewAnalysisFacade(config, analysisLogger)
}

// -----------------------------------------------------------------------------

// setupSeasonCache wires the scraper, cleaner and store together
func setupSeasonCache(
	config *models.MConfig,
	store interfaces.ISeasonStore,
	networkManager interfaces.INetworkManager,
	analyzer *analysis.AnalysisFacade,
) *datasource.SeasonCache {
	source := bbref.NewBBRefSource(config, networkManager)
	cacheLogger := logger.NewLogger(config, "SeasonCache")
	cache := datasource.NewSeasonCache(store, source, analyzer.Cleaner, cacheLogger)
	cache.FetchTimeout = time.Duration(config.Network.RequestTimeout) * time.Second
	return cache
}
