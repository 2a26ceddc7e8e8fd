package render

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"nba-stats-explorer/src/config"
	"nba-stats-explorer/src/models"
)

func TestRenderBars(t *testing.T) {
	view := models.MAggregateView{
		Name:  models.ViewPointsSum,
		Title: "Points scored in each position by team",
		Entries: []models.MAggregateEntry{
			{Team: "BOS", Pos: "PG", Value: 30},
			{Team: "LAL", Pos: "C", Value: 15},
		},
	}
	svg, err := NewChartRenderer().Render(view)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(svg), "<svg") {
		t.Errorf("Expected an SVG document, got %.40q", svg)
	}
	if !strings.Contains(svg, "BOS PG") {
		t.Error("Expected bar labels in the chart")
	}
}

func TestRenderFlatValues(t *testing.T) {
	for _, v := range []float64{0, 12} {
		view := models.MAggregateView{
			Name:    models.ViewGamesMax,
			Title:   "flat",
			Entries: []models.MAggregateEntry{{Team: "BOS", Value: v}, {Team: "NYK", Value: v}},
		}
		if _, err := NewChartRenderer().Render(view); err != nil {
			t.Errorf("Render of flat value %v failed: %v", v, err)
		}
	}
}

func TestRenderEmptyView(t *testing.T) {
	view := models.MAggregateView{Name: models.ViewPointsMin, Title: "Minimum <points>"}
	svg, err := NewChartRenderer().Render(view)
	if err != nil {
		t.Fatalf("Empty view must not fail: %v", err)
	}
	if !strings.Contains(svg, "Minimum &lt;points&gt;") {
		t.Errorf("Expected escaped title in the empty frame, got %s", svg)
	}
}

func TestRenderEscapesScrapedText(t *testing.T) {
	view := models.MAggregateView{
		Name:   models.ViewPointsMax,
		Title:  "Max points & more",
		YLabel: "PTS",
		Entries: []models.MAggregateEntry{{
			Team:  "BOS",
			Pos:   "PG",
			Value: 30,
			Row:   &models.MPlayerSeasonRow{Player: "Tom & <b>Jerry</b>", Tm: "BOS", Pos: "PG"},
		}},
	}
	svg, err := NewChartRenderer().Render(view)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(svg, "<b>") {
		t.Error("Player markup leaked into the SVG")
	}

	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("SVG is not well-formed XML: %v", err)
		}
	}
}

func TestBarLabel(t *testing.T) {
	row := &models.MPlayerSeasonRow{Player: "A"}
	tests := []struct {
		entry models.MAggregateEntry
		want  string
	}{
		{models.MAggregateEntry{Team: "BOS", Pos: "PG"}, "BOS PG"},
		{models.MAggregateEntry{Team: "BOS", Row: row}, "BOS (A)"},
		{models.MAggregateEntry{Team: "LAL", Pos: "C", Row: row}, "LAL C (A)"},
	}
	for _, tt := range tests {
		if got := BarLabel(tt.entry); got != tt.want {
			t.Errorf("BarLabel = %q, want %q", got, tt.want)
		}
	}
}

func TestCSVExport(t *testing.T) {
	exporter := NewCSVExporter(config.Defaults())
	columns := []string{"Player", "Pos", "Age", "Tm", "PTS", "Awards"}
	rows := []models.MPlayerSeasonRow{
		{Player: "A, Jr.", Pos: "PG", Tm: "BOS", Stats: map[string]float64{"Age": 25, "PTS": 10.25}},
		{Player: "C", Pos: "C", Tm: "LAL", Stats: map[string]float64{"Age": 31, "PTS": 15}, Text: map[string]string{"Awards": "AS"}},
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, columns, rows); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d records", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(columns, ",") {
		t.Errorf("Unexpected header %v", records[0])
	}
	if got := strings.Join(records[1], "|"); got != "A, Jr.|PG|25|BOS|10.25|" {
		t.Errorf("Unexpected first row %q", got)
	}
	if got := strings.Join(records[2], "|"); got != "C|C|31|LAL|15|AS" {
		t.Errorf("Unexpected second row %q", got)
	}
}

func TestCSVExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(config.Defaults()).Write(&buf, []string{"Player", "Tm"}, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.String() != "Player,Tm\n" {
		t.Errorf("Expected only the header, got %q", buf.String())
	}
}
