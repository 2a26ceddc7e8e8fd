package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
)

// Stage names reported in MPipelineMetrics.
const (
	StageTable     = "table"
	StageFilter    = "filter"
	StageAggregate = "aggregate"
	StageCharts    = "charts"
)

// ChartRenderer turns one view into an SVG document.
type ChartRenderer func(view models.MAggregateView) (string, error)

// PipelineResult is the output of one Update.
type PipelineResult struct {
	Table     *models.MPlayerSeasonTable
	Selection models.MFilterSelection
	Filtered  []models.MPlayerSeasonRow
	Views     []models.MAggregateView
	Charts    map[string]string
	Metrics   models.MPipelineMetrics
}

// Pipeline is the per-session dependency graph
// table(season) -> filter(teams, positions) -> aggregate -> charts.
// Each stage remembers the key it was computed for and only runs again when
// that key changes.
type Pipeline struct {
	Tables     interfaces.ITableProvider
	Aggregator *Aggregator
	Render     ChartRenderer
	Logger     *logger.Logger

	mu sync.Mutex

	// Read by the session hub without taking mu
	loadedSeason atomic.Int64
	stale        atomic.Bool

	table      *models.MPlayerSeasonTable
	tableKey   int
	tableValid bool

	filtered  []models.MPlayerSeasonRow
	filterKey string

	views     []models.MAggregateView
	viewsKey  string
	charts    map[string]string
	chartsKey string
}

// -----------------------------------------------------------------------------

func NewPipeline(tables interfaces.ITableProvider, agg *Aggregator, render ChartRenderer, log *logger.Logger) *Pipeline {
	return &Pipeline{
		Tables:     tables,
		Aggregator: agg,
		Render:     render,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// Update brings every stage up to date with sel and returns the current
// outputs. ShowTable is not an input of any stage.
func (p *Pipeline) Update(ctx context.Context, sel models.MFilterSelection) (*PipelineResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	var ran []string

	if p.stale.Swap(false) {
		p.reset()
	}

	// 1. Table
	if !p.tableValid || p.tableKey != sel.Season {
		table, err := p.Tables.Get(ctx, sel.Season)
		if err != nil {
			p.reset()
			return nil, err
		}
		p.table = table
		p.tableKey = sel.Season
		p.tableValid = true
		p.loadedSeason.Store(int64(sel.Season))
		ran = append(ran, StageTable)
	}

	resolved := ResolveSelection(p.table, sel)
	key := selectionKey(resolved)

	// 2. Filter
	if len(ran) > 0 || p.filterKey != key {
		p.filtered = Filter(p.table.Rows, resolved.Teams, resolved.Positions)
		p.filterKey = key
		ran = append(ran, StageFilter)
	}

	// 3. Aggregate
	if p.viewsKey != p.filterKey || p.views == nil {
		p.views = p.Aggregator.Views(p.filtered)
		p.viewsKey = p.filterKey
		ran = append(ran, StageAggregate)
	}

	// 4. Charts
	if p.Render != nil && (p.chartsKey != p.viewsKey || p.charts == nil) {
		charts, err := p.renderCharts()
		if err != nil {
			return nil, err
		}
		p.charts = charts
		p.chartsKey = p.viewsKey
		ran = append(ran, StageCharts)
	}

	result := &PipelineResult{
		Table:     p.table,
		Selection: resolved,
		Filtered:  p.filtered,
		Views:     p.views,
		Charts:    p.charts,
		Metrics: models.MPipelineMetrics{
			StagesRecomputed: ran,
			TableRows:        len(p.table.Rows),
			FilteredRows:     len(p.filtered),
			ElapsedSeconds:   time.Since(start).Seconds(),
		},
	}
	if result.Metrics.StagesRecomputed == nil {
		result.Metrics.StagesRecomputed = []string{}
	}

	if len(ran) > 0 {
		p.Logger.Debug("Season %d: recomputed %v (%d/%d rows)", sel.Season, ran, len(p.filtered), len(p.table.Rows))
	}
	return result, nil
}

// -----------------------------------------------------------------------------

// Invalidate forces the table stage, and so every later stage, to run on
// the next Update.
func (p *Pipeline) Invalidate() {
	p.stale.Store(true)
	p.loadedSeason.Store(0)
}

// Season returns the season of the loaded table, or 0 when none is loaded.
func (p *Pipeline) Season() int {
	return int(p.loadedSeason.Load())
}

// -----------------------------------------------------------------------------

func (p *Pipeline) reset() {
	p.loadedSeason.Store(0)
	p.tableValid = false
	p.table = nil
	p.filtered = nil
	p.filterKey = ""
	p.views = nil
	p.viewsKey = ""
	p.charts = nil
	p.chartsKey = ""
}

// -----------------------------------------------------------------------------

func (p *Pipeline) renderCharts() (map[string]string, error) {
	charts := make(map[string]string, len(p.views))
	for _, view := range p.views {
		svg, err := p.Render(view)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", view.Name, err)
		}
		charts[view.Name] = svg
	}
	return charts, nil
}

// -----------------------------------------------------------------------------

// selectionKey identifies a filter input; the order of codes inside a set
// does not matter.
func selectionKey(sel models.MFilterSelection) string {
	teams := append([]string(nil), sel.Teams...)
	positions := append([]string(nil), sel.Positions...)
	sort.Strings(teams)
	sort.Strings(positions)
	return fmt.Sprintf("%d|%s|%s", sel.Season, strings.Join(teams, ","), strings.Join(positions, ","))
}
