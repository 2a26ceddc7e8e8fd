package analysis

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
)

type fakeTables struct {
	calls int
	err   error
}

func (f *fakeTables) Get(ctx context.Context, season int) (*models.MPlayerSeasonTable, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	table := scenarioTable()
	table.Season = season
	return table, nil
}

func newTestPipeline(tables *fakeTables) (*Pipeline, *int) {
	renders := 0
	render := func(view models.MAggregateView) (string, error) {
		renders++
		return "<svg>" + view.Name + "</svg>", nil
	}
	return NewPipeline(tables, newTestAggregator(), render, logger.NewLogger(nil, "PipelineTest")), &renders
}

func TestPipelineFirstUpdateRunsEveryStage(t *testing.T) {
	tables := &fakeTables{}
	p, renders := newTestPipeline(tables)

	res, err := p.Update(context.Background(), models.MFilterSelection{Season: 2023})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	want := []string{StageTable, StageFilter, StageAggregate, StageCharts}
	if !reflect.DeepEqual(res.Metrics.StagesRecomputed, want) {
		t.Errorf("Stages = %v, want %v", res.Metrics.StagesRecomputed, want)
	}
	if len(res.Filtered) != 3 || res.Metrics.TableRows != 3 {
		t.Errorf("Expected default selection to keep all 3 rows, got %d", len(res.Filtered))
	}
	if len(res.Charts) != 5 || *renders != 5 {
		t.Errorf("Expected 5 charts rendered, got %d (%d renders)", len(res.Charts), *renders)
	}
}

func TestPipelineToggleRecomputesNothing(t *testing.T) {
	tables := &fakeTables{}
	p, renders := newTestPipeline(tables)
	ctx := context.Background()

	if _, err := p.Update(ctx, models.MFilterSelection{Season: 2023}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	res, err := p.Update(ctx, models.MFilterSelection{Season: 2023, ShowTable: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if len(res.Metrics.StagesRecomputed) != 0 {
		t.Errorf("Toggling the table recomputed %v", res.Metrics.StagesRecomputed)
	}
	if tables.calls != 1 || *renders != 5 {
		t.Errorf("Expected 1 table load and 5 renders, got %d and %d", tables.calls, *renders)
	}
}

func TestPipelineTeamChangeKeepsTable(t *testing.T) {
	tables := &fakeTables{}
	p, _ := newTestPipeline(tables)
	ctx := context.Background()

	if _, err := p.Update(ctx, models.MFilterSelection{Season: 2023}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	res, err := p.Update(ctx, models.MFilterSelection{Season: 2023, Teams: []string{"BOS"}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	want := []string{StageFilter, StageAggregate, StageCharts}
	if !reflect.DeepEqual(res.Metrics.StagesRecomputed, want) {
		t.Errorf("Stages = %v, want %v", res.Metrics.StagesRecomputed, want)
	}
	if tables.calls != 1 {
		t.Errorf("Team change reloaded the table (%d loads)", tables.calls)
	}
	if len(res.Filtered) != 2 {
		t.Errorf("Expected 2 BOS rows, got %d", len(res.Filtered))
	}

	// Same set in another order is the same input.
	res, err = p.Update(ctx, models.MFilterSelection{Season: 2023, Teams: []string{"BOS"}, Positions: []string{"C", "PG"}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(res.Metrics.StagesRecomputed) != 0 {
		t.Errorf("Reordered selection recomputed %v", res.Metrics.StagesRecomputed)
	}
}

func TestPipelineSeasonChangeAndInvalidate(t *testing.T) {
	tables := &fakeTables{}
	p, _ := newTestPipeline(tables)
	ctx := context.Background()

	p.Update(ctx, models.MFilterSelection{Season: 2023})
	p.Update(ctx, models.MFilterSelection{Season: 2022})
	if tables.calls != 2 || p.Season() != 2022 {
		t.Fatalf("Expected a reload for the new season, got %d loads (season %d)", tables.calls, p.Season())
	}

	p.Invalidate()
	if p.Season() != 0 {
		t.Errorf("Expected no season after Invalidate, got %d", p.Season())
	}
	res, err := p.Update(ctx, models.MFilterSelection{Season: 2022})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if tables.calls != 3 || res.Metrics.StagesRecomputed[0] != StageTable {
		t.Errorf("Expected Invalidate to force a reload, got %d loads, stages %v", tables.calls, res.Metrics.StagesRecomputed)
	}
}

func TestPipelineEmptySelection(t *testing.T) {
	p, _ := newTestPipeline(&fakeTables{})

	res, err := p.Update(context.Background(), models.MFilterSelection{Season: 2023, Teams: []string{}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(res.Filtered) != 0 {
		t.Errorf("Expected no rows, got %d", len(res.Filtered))
	}
	for _, view := range res.Views {
		if !view.Empty() {
			t.Errorf("View %s should be empty", view.Name)
		}
		if res.Charts[view.Name] == "" {
			t.Errorf("View %s should still have a chart", view.Name)
		}
	}
}

func TestPipelineTableError(t *testing.T) {
	boom := errors.New("boom")
	tables := &fakeTables{err: boom}
	p, _ := newTestPipeline(tables)

	if _, err := p.Update(context.Background(), models.MFilterSelection{Season: 2023}); !errors.Is(err, boom) {
		t.Fatalf("Expected table error, got %v", err)
	}

	tables.err = nil
	if _, err := p.Update(context.Background(), models.MFilterSelection{Season: 2023}); err != nil {
		t.Fatalf("Expected recovery after a failed load, got %v", err)
	}
	if tables.calls != 2 {
		t.Errorf("Expected the failed load to be retried on the next update, got %d loads", tables.calls)
	}
}
