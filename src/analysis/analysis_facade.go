package analysis

import (
	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
)

// AnalysisFacade bundles the cleaning and aggregation stages built from one
// configuration.
type AnalysisFacade struct {
	Config     *models.MConfig
	Cleaner    *Cleaner
	Aggregator *Aggregator
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	return &AnalysisFacade{
		Config:     cfg,
		Cleaner:    NewCleaner(cfg, log),
		Aggregator: NewAggregator(cfg),
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// NewPipeline returns a reactive pipeline for one dashboard session.
func (a *AnalysisFacade) NewPipeline(tables interfaces.ITableProvider, render ChartRenderer) *Pipeline {
	return NewPipeline(tables, a.Aggregator, render, a.Logger)
}

// -----------------------------------------------------------------------------

// Analyze runs filter and aggregation once over table, without charts.
// It is used by callers that hold no session (export, admin service).
func (a *AnalysisFacade) Analyze(table *models.MPlayerSeasonTable, sel models.MFilterSelection) *PipelineResult {
	resolved := ResolveSelection(table, sel)
	resolved.Season = table.Season
	filtered := Filter(table.Rows, resolved.Teams, resolved.Positions)

	return &PipelineResult{
		Table:     table,
		Selection: resolved,
		Filtered:  filtered,
		Views:     a.Aggregator.Views(filtered),
		Metrics: models.MPipelineMetrics{
			StagesRecomputed: []string{StageFilter, StageAggregate},
			TableRows:        len(table.Rows),
			FilteredRows:     len(filtered),
		},
	}
}
