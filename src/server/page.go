package server

import (
	"context"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/models"
)

// -----------------------------------------------------------------------------
// Page model
// -----------------------------------------------------------------------------

type option struct {
	Value    string
	Selected bool
}

type glossaryEntry struct {
	Term        string
	Description string
}

type pageData struct {
	Title      string
	SourceName string
	SourceURL  string
	Seasons    []int
	Selection  models.MFilterSelection
	Teams      []option
	Positions  []option
	Glossary   []glossaryEntry

	Columns      []string
	Rows         [][]string
	FilteredRows int
	TableRows    int
	ExportURL    string

	LeftCharts  []template.HTML
	RightCharts []template.HTML
	GamesChart  template.HTML

	Error string
}

var glossary = []glossaryEntry{
	{"Rk", "Rank"},
	{"Pos", "Position"},
	{"Tm", "Team"},
	{"G", "Games"},
	{"GS", "Games started"},
	{"MP", "Minutes Played"},
	{"FG", "Field goals per game"},
	{"FGA", "Field goal attempts per game"},
	{"FG%", "Field goal %"},
	{"3P", "3 point field goals per game"},
	{"3PA", "3 point field goal attempts per game"},
	{"3P%", "3 point field goal %"},
	{"eFG%", "effective field goal %"},
	{"FT", "Free throws per game"},
	{"FTA", "Free throws attempts per game"},
	{"FT%", "Free throws %"},
	{"DRB", "Defensive Rebounds Per Game"},
	{"TRB", "Total Rebounds Per Game"},
	{"AST", "Assists Per Game"},
	{"STL", "Steals Per Game"},
	{"BLK", "Blocks Per Game"},
	{"TOV", "Turnovers Per Game"},
	{"PF", "Personal Fouls Per Game"},
	{"PTS", "Points Per Game"},
}

var pageFuncs = template.FuncMap{
	"selectedSeason": func(sel models.MFilterSelection, season int) bool { return sel.Season == season },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) basePage() pageData {
	return pageData{
		Title:      "NBA Player Stats Explorer",
		SourceName: "Basketball-reference.com",
		SourceURL:  "https://www.basketball-reference.com/",
		Seasons:    s.Cache.Seasons(),
		Selection:  models.MFilterSelection{Season: s.Config.Source.DefaultSeason},
		Glossary:   glossary,
	}
}

// -----------------------------------------------------------------------------

// fillPage loads the season and computes everything the page shows.
func (s *DashboardServer) fillPage(ctx context.Context, data *pageData, sel models.MFilterSelection) error {
	table, err := s.Cache.Get(ctx, sel.Season)
	if err != nil {
		return err
	}

	result := s.Analysis.Analyze(table, sel)
	charts, err := s.renderCharts(result.Views)
	if err != nil {
		return err
	}

	data.Selection = result.Selection
	data.Selection.ShowTable = sel.ShowTable
	data.Teams = options(result.Table, result.Selection.Teams, func(r models.MPlayerSeasonRow) string { return r.Tm })
	data.Positions = options(result.Table, result.Selection.Positions, func(r models.MPlayerSeasonRow) string { return r.Pos })
	data.FilteredRows = len(result.Filtered)
	data.TableRows = len(table.Rows)
	data.ExportURL = exportURL(result.Selection)

	if sel.ShowTable {
		data.Columns = table.Columns
		data.Rows = make([][]string, len(result.Filtered))
		for i, row := range result.Filtered {
			data.Rows[i] = s.CSV.Record(row, table.Columns)
		}
	}

	// Two per column, then the per-team chart across the page
	data.LeftCharts = []template.HTML{
		template.HTML(charts[models.ViewPointsSum]),
		template.HTML(charts[models.ViewPointsMax]),
	}
	data.RightCharts = []template.HTML{
		template.HTML(charts[models.ViewPointsMean]),
		template.HTML(charts[models.ViewPointsMin]),
	}
	data.GamesChart = template.HTML(charts[models.ViewGamesMax])
	return nil
}

// -----------------------------------------------------------------------------

func options(table *models.MPlayerSeasonTable, selected []string, key func(models.MPlayerSeasonRow) string) []option {
	chosen := make(map[string]bool, len(selected))
	for _, v := range selected {
		chosen[v] = true
	}

	var out []option
	seen := make(map[string]bool)
	for _, row := range table.Rows {
		k := key(row)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, option{Value: k, Selected: chosen[k]})
	}
	return out
}

// -----------------------------------------------------------------------------

func exportURL(sel models.MFilterSelection) string {
	q := url.Values{}
	q.Set("season", strconv.Itoa(sel.Season))
	q.Set("teams", strings.Join(sel.Teams, ","))
	q.Set("positions", strings.Join(sel.Positions, ","))
	return "/export.csv?" + q.Encode()
}

// -----------------------------------------------------------------------------

func parseSeason(raw string) (int, error) {
	season, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, helpers.NewValidationError("invalid season %q", raw)
	}
	return season, nil
}

// splitCodes flattens repeated and comma separated values, dropping blanks.
// The result is never nil.
func splitCodes(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, code := range strings.Split(v, ",") {
			if code = strings.TrimSpace(code); code != "" {
				out = append(out, code)
			}
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Template
// -----------------------------------------------------------------------------

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: sans-serif; display: flex; }
aside { width: 260px; padding: 16px; background: #f3f4f6; min-height: 100vh; box-sizing: border-box; }
aside select { width: 100%; }
main { flex: 1; padding: 16px 32px; overflow-x: auto; }
.charts { display: flex; gap: 32px; }
.charts > div { flex: 1; }
.error { color: #b00020; border: 1px solid #b00020; padding: 12px; }
table { border-collapse: collapse; font-size: 12px; }
th, td { border: 1px solid #ddd; padding: 2px 6px; text-align: right; }
hr { border: 0; border-top: 1px solid #ddd; }
</style>
</head>
<body>
<aside>
<form method="get" action="/">
<input type="hidden" name="prev_season" value="{{.Selection.Season}}">
<h3>Filter by</h3>
<label>Year<br>
<select name="season" onchange="this.form.submit()">
{{range .Seasons}}<option value="{{.}}"{{if selectedSeason $.Selection .}} selected{{end}}>{{.}}</option>
{{end}}</select></label>
<p><label>Teams<br>
<input type="hidden" name="teams" value="">
<select name="teams" multiple size="8">
{{range .Teams}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
{{end}}</select></label></p>
<p><label>Positions<br>
<input type="hidden" name="positions" value="">
<select name="positions" multiple size="6">
{{range .Positions}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
{{end}}</select></label></p>
<p><label><input type="checkbox" name="show" value="1"{{if .Selection.ShowTable}} checked{{end}}> Show Player Data for the selected teams.</label></p>
<button type="submit">Apply</button>
</form>
<hr>
<h3>Glossary of Terms</h3>
<ul>
{{range .Glossary}}<li><b>{{.Term}}</b> -- {{.Description}}</li>
{{end}}</ul>
</aside>
<main>
<h1>{{.Title}}</h1>
<p>This app performs simple webscraping of NBA player stats data!</p>
<ul><li><b>Data source:</b> <a href="{{.SourceURL}}">{{.SourceName}}</a>.</li></ul>
<hr>
{{if .Error}}
<div class="error"><b>Error:</b> {{.Error}}</div>
{{else}}
<h2>Player Data Of Selected Teams</h2>
<p>{{.FilteredRows}} of {{.TableRows}} players selected. <a href="{{.ExportURL}}">Download CSV</a></p>
{{if .Selection.ShowTable}}
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{end}}
<hr>
<div class="charts">
<div>{{range .LeftCharts}}{{.}}<hr>{{end}}</div>
<div>{{range .RightCharts}}{{.}}<hr>{{end}}</div>
</div>
<h2>Maximum Games played by a player in every team</h2>
{{.GamesChart}}
{{end}}
</main>
</body>
</html>
`
