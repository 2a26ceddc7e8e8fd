package analysis

import (
	"errors"
	"math"
	"testing"

	"nba-stats-explorer/src/config"
	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
)

func newTestCleaner() *Cleaner {
	cfg := config.Defaults()
	return NewCleaner(cfg, logger.NewLogger(nil, "CleanerTest"))
}

func rawSeason() *models.MRawTable {
	return &models.MRawTable{
		Season:  2023,
		Columns: []string{"Rk", "Player", "Pos", "Age", "Tm", "G", "FG%", "PTS", "Awards"},
		Rows: [][]string{
			{"1", "Player A", "PG", "25", "BOS", "5", "0.5", "10.0", "MVP-3"},
			{"2", "Player B", "PG", "27", "BOS", "2", "", "20.0", ""},
			{"Rk", "Player", "Pos", "Age", "Tm", "G", "FG%", "PTS", "Awards"},
			{"3", "Player C", "C", "31", "LAL", "8", "0.3", "15.0", ""},
			{"", "League Average", "", "26.5", "", "", "0.46", "11.2", ""},
		},
	}
}

func TestCleanProducesCompleteNumericTable(t *testing.T) {
	raw := rawSeason()
	table, err := newTestCleaner().Clean(raw)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if len(table.Rows) > len(raw.Rows) {
		t.Fatalf("Clean added rows: %d > %d", len(table.Rows), len(raw.Rows))
	}
	if len(table.Rows) != 3 {
		t.Fatalf("Expected 3 player rows, got %d", len(table.Rows))
	}

	for _, col := range table.Columns {
		if col == "Rk" {
			t.Error("Rank column should have been dropped")
		}
	}

	wantNumeric := []string{"Age", "G", "FG%", "PTS"}
	if len(table.NumericColumns) != len(wantNumeric) {
		t.Fatalf("Expected numeric columns %v, got %v", wantNumeric, table.NumericColumns)
	}
	for i, col := range wantNumeric {
		if table.NumericColumns[i] != col {
			t.Errorf("NumericColumns[%d] = %q, want %q", i, table.NumericColumns[i], col)
		}
	}

	for _, row := range table.Rows {
		if row.Pos == "" || row.Tm == "" {
			t.Errorf("Row %q has empty identifier", row.Player)
		}
		for _, col := range table.NumericColumns {
			v, ok := row.Stats[col]
			if !ok || math.IsNaN(v) {
				t.Errorf("Row %q has missing %s", row.Player, col)
			}
		}
	}

	if table.Rows[0].Text["Awards"] != "MVP-3" {
		t.Errorf("Expected passthrough Awards to stay text, got %q", table.Rows[0].Text["Awards"])
	}
}

func TestCleanImputesColumnMean(t *testing.T) {
	table, err := newTestCleaner().Clean(rawSeason())
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if len(table.ImputedColumns) != 1 || table.ImputedColumns[0] != "FG%" {
		t.Fatalf("Expected only FG%% imputed, got %v", table.ImputedColumns)
	}

	// Mean of the present values 0.5 and 0.3.
	got := table.Rows[1].Stats["FG%"]
	if math.Abs(got-0.4) > 1e-12 {
		t.Errorf("Imputed FG%% = %v, want 0.4", got)
	}

	// Recomputing the mean over the non-imputed cells gives the same value.
	observed := (table.Rows[0].Stats["FG%"] + table.Rows[2].Stats["FG%"]) / 2
	if math.Abs(observed-got) > 1e-12 {
		t.Errorf("Imputed value %v differs from observed mean %v", got, observed)
	}
}

func TestCleanAllMissingColumnImputesZero(t *testing.T) {
	raw := &models.MRawTable{
		Season:  2000,
		Columns: []string{"Rk", "Player", "Pos", "Age", "Tm", "3P%"},
		Rows: [][]string{
			{"1", "Player A", "C", "30", "NYK", ""},
			{"2", "Player B", "PF", "22", "NYK", ""},
		},
	}
	table, err := newTestCleaner().Clean(raw)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	for _, row := range table.Rows {
		if row.Stats["3P%"] != 0 {
			t.Errorf("Expected 0 for an all-missing column, got %v", row.Stats["3P%"])
		}
	}
}

func TestCleanSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  *models.MRawTable
	}{
		{
			name: "missing rank column",
			raw: &models.MRawTable{
				Columns: []string{"Player", "Pos", "Age", "Tm", "PTS"},
				Rows:    [][]string{{"A", "PG", "25", "BOS", "10"}},
			},
		},
		{
			name: "missing age column",
			raw: &models.MRawTable{
				Columns: []string{"Rk", "Player", "Pos", "Tm", "PTS"},
				Rows:    [][]string{{"1", "A", "PG", "BOS", "10"}},
			},
		},
		{
			name: "non numeric token",
			raw: &models.MRawTable{
				Columns: []string{"Rk", "Player", "Pos", "Age", "Tm", "PTS"},
				Rows:    [][]string{{"1", "A", "PG", "25", "BOS", "ten"}},
			},
		},
		{
			name: "nil table",
			raw:  nil,
		},
	}

	cleaner := newTestCleaner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cleaner.Clean(tt.raw)
			var schema *helpers.SchemaError
			if !errors.As(err, &schema) {
				t.Fatalf("Expected SchemaError, got %v", err)
			}
		})
	}
}

func TestCleanEmptyTable(t *testing.T) {
	raw := &models.MRawTable{
		Season:  1991,
		Columns: []string{"Rk", "Player", "Pos", "Age", "Tm", "PTS"},
	}
	table, err := newTestCleaner().Clean(raw)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(table.Rows))
	}
	if len(table.NumericColumns) != 2 {
		t.Errorf("Expected Age and PTS numeric, got %v", table.NumericColumns)
	}
}

func TestCleanOnlyHeaderRows(t *testing.T) {
	raw := &models.MRawTable{
		Columns: []string{"Rk", "Player", "Pos", "Age", "Tm", "PTS"},
		Rows:    [][]string{{"Rk", "Player", "Pos", "Age", "Tm", "PTS"}},
	}
	table, err := newTestCleaner().Clean(raw)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("Expected header rows to be removed, got %d rows", len(table.Rows))
	}
}
