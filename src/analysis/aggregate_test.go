package analysis

import (
	"math"
	"reflect"
	"testing"

	"nba-stats-explorer/src/config"
	"nba-stats-explorer/src/models"
)

func scenarioTable() *models.MPlayerSeasonTable {
	row := func(player, tm, pos string, pts, g float64) models.MPlayerSeasonRow {
		return models.MPlayerSeasonRow{
			Player: player, Tm: tm, Pos: pos,
			Stats: map[string]float64{"PTS": pts, "G": g},
		}
	}
	return &models.MPlayerSeasonTable{
		Season:         2023,
		Columns:        []string{"Player", "Pos", "Tm", "G", "PTS"},
		NumericColumns: []string{"G", "PTS"},
		Rows: []models.MPlayerSeasonRow{
			row("A", "BOS", "PG", 10, 5),
			row("B", "BOS", "PG", 20, 2),
			row("C", "LAL", "C", 15, 8),
		},
	}
}

func newTestAggregator() *Aggregator {
	return NewAggregator(config.Defaults())
}

func TestFilterScenario(t *testing.T) {
	table := scenarioTable()

	rows := Filter(table.Rows, []string{"BOS", "LAL"}, []string{"PG", "C"})
	if len(rows) != 3 {
		t.Fatalf("Expected all 3 rows, got %d", len(rows))
	}
	for i, name := range []string{"A", "B", "C"} {
		if rows[i].Player != name {
			t.Errorf("Row order changed: position %d is %s, want %s", i, rows[i].Player, name)
		}
	}

	empty := Filter(table.Rows, []string{"BOS"}, []string{"C"})
	if len(empty) != 0 {
		t.Fatalf("Expected empty subset, got %d rows", len(empty))
	}
	for _, view := range newTestAggregator().Views(empty) {
		if !view.Empty() {
			t.Errorf("View %s should be empty, got %v", view.Name, view.Entries)
		}
	}
}

func TestFilterEmptySets(t *testing.T) {
	table := scenarioTable()
	if got := Filter(table.Rows, []string{}, []string{"PG", "C"}); len(got) != 0 {
		t.Errorf("Empty teams should select nothing, got %d rows", len(got))
	}
	if got := Filter(table.Rows, []string{"BOS", "LAL"}, nil); len(got) != 0 {
		t.Errorf("Empty positions should select nothing, got %d rows", len(got))
	}
}

func TestFilterIdempotent(t *testing.T) {
	table := scenarioTable()
	teams, positions := []string{"BOS"}, []string{"PG", "C"}

	once := Filter(table.Rows, teams, positions)
	twice := Filter(once, teams, positions)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Filter is not idempotent: %v vs %v", once, twice)
	}
}

func TestResolveSelectionDefaults(t *testing.T) {
	table := scenarioTable()

	sel := ResolveSelection(table, models.MFilterSelection{Season: 2023})
	if !reflect.DeepEqual(sel.Teams, []string{"BOS", "LAL"}) {
		t.Errorf("Expected all teams in first-seen order, got %v", sel.Teams)
	}
	if !reflect.DeepEqual(sel.Positions, []string{"PG", "C"}) {
		t.Errorf("Expected all positions in first-seen order, got %v", sel.Positions)
	}

	none := ResolveSelection(table, models.MFilterSelection{Teams: []string{}})
	if len(none.Teams) != 0 {
		t.Errorf("An explicit empty team list must stay empty, got %v", none.Teams)
	}
}

func TestAggregateScenario(t *testing.T) {
	agg := newTestAggregator()
	rows := scenarioTable().Rows

	sum := agg.PointsSum(rows)
	if len(sum.Entries) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(sum.Entries))
	}
	if e := sum.Entries[0]; e.Team != "BOS" || e.Pos != "PG" || e.Value != 30 {
		t.Errorf("Expected (BOS, PG) = 30, got %+v", e)
	}

	games := agg.GamesMax(rows)
	if len(games.Entries) != 2 {
		t.Fatalf("Expected 2 teams, got %d", len(games.Entries))
	}
	if games.Entries[0].Team != "BOS" || games.Entries[0].Row.Player != "A" {
		t.Errorf("Expected BOS max games row A, got %+v", games.Entries[0])
	}
	if games.Entries[1].Team != "LAL" || games.Entries[1].Row.Player != "C" {
		t.Errorf("Expected LAL max games row C, got %+v", games.Entries[1])
	}

	if e := agg.PointsMin(rows).Entries[0]; e.Row.Player != "A" || e.Value != 10 {
		t.Errorf("Expected BOS/PG min row A, got %+v", e)
	}
	if e := agg.PointsMax(rows).Entries[0]; e.Row.Player != "B" || e.Value != 20 {
		t.Errorf("Expected BOS/PG max row B, got %+v", e)
	}
	if e := agg.PointsMean(rows).Entries[0]; e.Value != 15 || e.Row != nil {
		t.Errorf("Expected BOS/PG mean 15 without a row, got %+v", e)
	}
}

func TestPointsSumConservation(t *testing.T) {
	agg := newTestAggregator()
	rows := append(scenarioTable().Rows, models.MPlayerSeasonRow{
		Player: "D", Tm: "BOS", Pos: "C",
		Stats: map[string]float64{"PTS": 7.3, "G": 1},
	})

	total := 0.0
	for _, row := range rows {
		total += row.Stat("PTS")
	}
	grouped := 0.0
	for _, e := range agg.PointsSum(rows).Entries {
		grouped += e.Value
	}
	if math.Abs(total-grouped) > 1e-9 {
		t.Errorf("Group sums %v do not add up to %v", grouped, total)
	}
}

func TestExtremumTieBreakFirstOccurrence(t *testing.T) {
	rows := []models.MPlayerSeasonRow{
		{Player: "X", Tm: "MIA", Pos: "SF", Stats: map[string]float64{"PTS": 12, "G": 70}},
		{Player: "Y", Tm: "MIA", Pos: "SF", Stats: map[string]float64{"PTS": 12, "G": 70}},
	}
	agg := newTestAggregator()
	if got := agg.PointsMax(rows).Entries[0].Row.Player; got != "X" {
		t.Errorf("Max tie should pick the first row, got %s", got)
	}
	if got := agg.PointsMin(rows).Entries[0].Row.Player; got != "X" {
		t.Errorf("Min tie should pick the first row, got %s", got)
	}
	if got := agg.GamesMax(rows).Entries[0].Row.Player; got != "X" {
		t.Errorf("Games tie should pick the first row, got %s", got)
	}
}

func TestGroupsSortedByTeamThenPosition(t *testing.T) {
	rows := []models.MPlayerSeasonRow{
		{Player: "1", Tm: "LAL", Pos: "SG", Stats: map[string]float64{"PTS": 1}},
		{Player: "2", Tm: "BOS", Pos: "SG", Stats: map[string]float64{"PTS": 1}},
		{Player: "3", Tm: "BOS", Pos: "C", Stats: map[string]float64{"PTS": 1}},
	}
	var got [][2]string
	for _, e := range newTestAggregator().PointsSum(rows).Entries {
		got = append(got, [2]string{e.Team, e.Pos})
	}
	want := [][2]string{{"BOS", "C"}, {"BOS", "SG"}, {"LAL", "SG"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Group order = %v, want %v", got, want)
	}
}
