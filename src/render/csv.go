package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"nba-stats-explorer/src/models"
)

// CSVExporter writes filtered tables as comma separated text.
type CSVExporter struct {
	Source models.MSourceConfig
}

// -----------------------------------------------------------------------------

func NewCSVExporter(cfg *models.MConfig) *CSVExporter {
	return &CSVExporter{Source: cfg.Source}
}

// -----------------------------------------------------------------------------

// Write emits a header row of columns followed by one record per row, in
// row order and without an index column. Numbers use the shortest
// representation that parses back to the same value.
func (e *CSVExporter) Write(w io.Writer, columns []string, rows []models.MPlayerSeasonRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		if err := cw.Write(e.Record(row, columns)); err != nil {
			return fmt.Errorf("write csv row %q: %w", row.Player, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// -----------------------------------------------------------------------------

// Record returns the cells of row in column order.
func (e *CSVExporter) Record(row models.MPlayerSeasonRow, columns []string) []string {
	record := make([]string, len(columns))
	for i, col := range columns {
		record[i] = e.cell(row, col)
	}
	return record
}

func (e *CSVExporter) cell(row models.MPlayerSeasonRow, col string) string {
	switch col {
	case e.Source.PlayerColumn:
		return row.Player
	case e.Source.PositionColumn:
		return row.Pos
	case e.Source.TeamColumn:
		return row.Tm
	}
	if v, ok := row.Stats[col]; ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return row.Text[col]
}
