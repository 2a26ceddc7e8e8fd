package analysis

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"nba-stats-explorer/src/analysis/core"
	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// missingTokens are the raw cell values read as missing.
var missingTokens = []string{"", "NA", "NaN", "<nil>"}

// Cleaner turns a scraped table into a typed season table.
type Cleaner struct {
	Source models.MSourceConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCleaner(cfg *models.MConfig, log *logger.Logger) *Cleaner {
	return &Cleaner{
		Source: cfg.Source,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Clean applies, in order: drop the rank column; drop rows whose marker
// column holds the header text (the page repeats its header every ~20
// rows) and rows without a team or position code; note the columns with
// missing cells; coerce every non-text column to float; fill missing
// cells with the column mean of the coerced values.
//
// The header-row test is exact string equality on one column. It depends
// on the source repeating its header verbatim and stops matching if that
// layout changes.
func (c *Cleaner) Clean(raw *models.MRawTable) (*models.MPlayerSeasonTable, error) {
	if raw == nil {
		return nil, helpers.NewSchemaError("no table to clean")
	}
	src := c.Source

	for _, col := range append([]string{src.RankColumn, src.HeaderMarkerColumn}, src.IdentifierColumns()...) {
		if !hasColumn(raw.Columns, col) {
			return nil, helpers.NewSchemaError("season %d: missing column %q", raw.Season, col)
		}
	}
	if len(raw.Rows) == 0 {
		return c.emptyTable(raw.Season, withoutColumn(raw.Columns, src.RankColumn)), nil
	}

	records := make([][]string, 0, len(raw.Rows)+1)
	records = append(records, raw.Columns)
	for _, row := range raw.Rows {
		records = append(records, fitRow(row, len(raw.Columns)))
	}

	df := dataframe.LoadRecords(
		records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, helpers.NewSchemaError("season %d: load table: %v", raw.Season, df.Err)
	}

	// 1. Rank column
	df = df.Drop(src.RankColumn)
	if df.Err != nil {
		return nil, helpers.NewSchemaError("season %d: drop %q: %v", raw.Season, src.RankColumn, df.Err)
	}
	columns := df.Names()

	// 2. Repeated header rows, rows without team/position
	keep := c.keptRows(df)
	if len(keep) == 0 {
		return c.emptyTable(raw.Season, columns), nil
	}
	if len(keep) < df.Nrow() {
		df = df.Subset(keep)
		if df.Err != nil {
			return nil, helpers.NewSchemaError("season %d: subset rows: %v", raw.Season, df.Err)
		}
	}

	// 3. Columns with missing values, recorded before coercion
	var withMissing []string
	for _, col := range columns {
		for _, missing := range df.Col(col).IsNaN() {
			if missing {
				withMissing = append(withMissing, col)
				break
			}
		}
	}

	// 4. Coercion
	text := c.textColumns(columns)
	numeric := make(map[string][]float64)
	var numericColumns []string
	for _, col := range columns {
		if text[col] {
			continue
		}
		values, err := coerceColumn(df.Col(col))
		if err != nil {
			return nil, helpers.NewSchemaError("season %d: column %q: %v", raw.Season, col, err)
		}
		numeric[col] = values
		numericColumns = append(numericColumns, col)
	}

	// 5. Imputation
	var imputed []string
	for _, col := range withMissing {
		values, ok := numeric[col]
		if !ok {
			continue
		}
		mean, n := core.MeanIgnoringNaN(values)
		if n == 0 {
			mean = 0
		}
		filled, replaced := core.ReplaceNaN(values, mean)
		numeric[col] = filled
		imputed = append(imputed, col)
		c.Logger.Debug("Season %d: imputed %d cells of %s with %.4f", raw.Season, replaced, col, mean)
	}

	table := &models.MPlayerSeasonTable{
		Season:         raw.Season,
		Columns:        columns,
		NumericColumns: numericColumns,
		ImputedColumns: imputed,
		Rows:           make([]models.MPlayerSeasonRow, df.Nrow()),
		FetchedAt:      time.Now().UTC(),
	}

	textValues := make(map[string][]string)
	for col := range text {
		textValues[col] = textRecords(df.Col(col))
	}

	for i := range table.Rows {
		row := models.MPlayerSeasonRow{
			Player: textValues[src.PlayerColumn][i],
			Pos:    textValues[src.PositionColumn][i],
			Tm:     textValues[src.TeamColumn][i],
			Stats:  make(map[string]float64, len(numericColumns)),
		}
		for _, col := range numericColumns {
			row.Stats[col] = numeric[col][i]
		}
		for col, values := range textValues {
			if col == src.PlayerColumn || col == src.PositionColumn || col == src.TeamColumn {
				continue
			}
			if row.Text == nil {
				row.Text = make(map[string]string)
			}
			row.Text[col] = values[i]
		}
		table.Rows[i] = row
	}

	c.Logger.Info("Season %d cleaned: %d -> %d rows, %d numeric columns, %d imputed",
		raw.Season, len(raw.Rows), len(table.Rows), len(numericColumns), len(imputed))
	return table, nil
}

// -----------------------------------------------------------------------------

func (c *Cleaner) keptRows(df dataframe.DataFrame) []int {
	src := c.Source
	marker := textRecords(df.Col(src.HeaderMarkerColumn))
	teams := textRecords(df.Col(src.TeamColumn))
	positions := textRecords(df.Col(src.PositionColumn))

	keep := make([]int, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		if marker[i] == src.HeaderMarkerColumn {
			continue
		}
		if teams[i] == "" || positions[i] == "" {
			continue
		}
		keep = append(keep, i)
	}
	return keep
}

// -----------------------------------------------------------------------------

func (c *Cleaner) textColumns(columns []string) map[string]bool {
	text := make(map[string]bool)
	for _, col := range c.Source.IdentifierColumns() {
		text[col] = true
	}
	for _, col := range c.Source.PassthroughColumns {
		if hasColumn(columns, col) {
			text[col] = true
		}
	}
	return text
}

// -----------------------------------------------------------------------------

func (c *Cleaner) emptyTable(season int, columns []string) *models.MPlayerSeasonTable {
	text := c.textColumns(columns)
	numericColumns := make([]string, 0, len(columns))
	for _, col := range columns {
		if !text[col] {
			numericColumns = append(numericColumns, col)
		}
	}
	return &models.MPlayerSeasonTable{
		Season:         season,
		Columns:        columns,
		NumericColumns: numericColumns,
		Rows:           []models.MPlayerSeasonRow{},
		FetchedAt:      time.Now().UTC(),
	}
}

// -----------------------------------------------------------------------------

// textRecords returns the cells of s with missing cells as "".
func textRecords(s series.Series) []string {
	records := s.Records()
	for i, missing := range s.IsNaN() {
		if missing {
			records[i] = ""
		}
	}
	return records
}

// -----------------------------------------------------------------------------

// coerceColumn parses every present cell as float64; missing cells are NaN.
func coerceColumn(s series.Series) ([]float64, error) {
	records := s.Records()
	missing := s.IsNaN()
	out := make([]float64, len(records))
	for i, rec := range records {
		if missing[i] {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(rec, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %q is not a number", i, rec)
		}
		out[i] = v
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

func withoutColumn(columns []string, name string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != name {
			out = append(out, c)
		}
	}
	return out
}

// fitRow pads or truncates row to width cells.
func fitRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
