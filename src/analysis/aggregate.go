package analysis

import (
	"sort"

	"nba-stats-explorer/src/analysis/core"
	"nba-stats-explorer/src/models"
)

// Aggregator computes the grouped views shown as charts.
type Aggregator struct {
	PointsColumn string
	GamesColumn  string
}

type group struct {
	team string
	pos  string
	rows []int
}

// -----------------------------------------------------------------------------

func NewAggregator(cfg *models.MConfig) *Aggregator {
	return &Aggregator{
		PointsColumn: cfg.Source.PointsColumn,
		GamesColumn:  cfg.Source.GamesColumn,
	}
}

// -----------------------------------------------------------------------------

// Views returns the five views in display order: sum, max, mean and min of
// points by (team, position), then the max-games row per team.
func (a *Aggregator) Views(rows []models.MPlayerSeasonRow) []models.MAggregateView {
	return []models.MAggregateView{
		a.PointsSum(rows),
		a.PointsMax(rows),
		a.PointsMean(rows),
		a.PointsMin(rows),
		a.GamesMax(rows),
	}
}

// -----------------------------------------------------------------------------

func (a *Aggregator) PointsSum(rows []models.MPlayerSeasonRow) models.MAggregateView {
	view := a.teamPosView(models.ViewPointsSum, "Points scored in each position by team", "Points Scored", models.ReduceSum)
	for _, g := range groupRows(rows, true) {
		values := columnValues(rows, g.rows, a.PointsColumn)
		view.Entries = append(view.Entries, models.MAggregateEntry{
			Team: g.team, Pos: g.pos, Value: core.Sum(values), Count: len(values),
		})
	}
	return view
}

func (a *Aggregator) PointsMean(rows []models.MPlayerSeasonRow) models.MAggregateView {
	view := a.teamPosView(models.ViewPointsMean, "Average points scored in each position in every team", "Points", models.ReduceMean)
	for _, g := range groupRows(rows, true) {
		values := columnValues(rows, g.rows, a.PointsColumn)
		mean, _ := core.MeanIgnoringNaN(values)
		view.Entries = append(view.Entries, models.MAggregateEntry{
			Team: g.team, Pos: g.pos, Value: mean, Count: len(values),
		})
	}
	return view
}

func (a *Aggregator) PointsMin(rows []models.MPlayerSeasonRow) models.MAggregateView {
	view := a.teamPosView(models.ViewPointsMin, "Minimum points scored in each position in every team", "Points", models.ReduceMin)
	view.Entries = extremumRows(rows, true, a.PointsColumn, core.ArgMin)
	return view
}

func (a *Aggregator) PointsMax(rows []models.MPlayerSeasonRow) models.MAggregateView {
	view := a.teamPosView(models.ViewPointsMax, "Maximum points scored in each position in every team", "Points", models.ReduceMax)
	view.Entries = extremumRows(rows, true, a.PointsColumn, core.ArgMax)
	return view
}

// -----------------------------------------------------------------------------

func (a *Aggregator) GamesMax(rows []models.MPlayerSeasonRow) models.MAggregateView {
	return models.MAggregateView{
		Name:      models.ViewGamesMax,
		Title:     "Maximum Games played by a player in every team",
		Metric:    a.GamesColumn,
		YLabel:    "Maximum Games played",
		GroupBy:   []string{"Tm"},
		Reduction: models.ReduceMax,
		Entries:   extremumRows(rows, false, a.GamesColumn, core.ArgMax),
	}
}

// -----------------------------------------------------------------------------

func (a *Aggregator) teamPosView(name, title, yLabel, reduction string) models.MAggregateView {
	return models.MAggregateView{
		Name:      name,
		Title:     title,
		Metric:    a.PointsColumn,
		YLabel:    yLabel,
		GroupBy:   []string{"Tm", "Pos"},
		Reduction: reduction,
		Entries:   []models.MAggregateEntry{},
	}
}

// -----------------------------------------------------------------------------

// extremumRows selects, per group, the row picked by pick. Ties resolve to
// the row that comes first in table order.
func extremumRows(rows []models.MPlayerSeasonRow, byPos bool, column string, pick func([]float64) int) []models.MAggregateEntry {
	entries := []models.MAggregateEntry{}
	for _, g := range groupRows(rows, byPos) {
		idx := pick(columnValues(rows, g.rows, column))
		if idx < 0 {
			continue
		}
		row := rows[g.rows[idx]]
		entries = append(entries, models.MAggregateEntry{
			Team:  g.team,
			Pos:   g.pos,
			Value: row.Stat(column),
			Count: len(g.rows),
			Row:   &row,
		})
	}
	return entries
}

// -----------------------------------------------------------------------------

// groupRows buckets row indexes by team, or by (team, position) when byPos
// is set. Groups come back sorted by key; indexes inside a group keep table
// order.
func groupRows(rows []models.MPlayerSeasonRow, byPos bool) []group {
	index := make(map[[2]string]int)
	var groups []group
	for i, row := range rows {
		key := [2]string{row.Tm, ""}
		if byPos {
			key[1] = row.Pos
		}
		at, ok := index[key]
		if !ok {
			at = len(groups)
			index[key] = at
			groups = append(groups, group{team: key[0], pos: key[1]})
		}
		groups[at].rows = append(groups[at].rows, i)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].team != groups[j].team {
			return groups[i].team < groups[j].team
		}
		return groups[i].pos < groups[j].pos
	})
	return groups
}

func columnValues(rows []models.MPlayerSeasonRow, idx []int, column string) []float64 {
	values := make([]float64, len(idx))
	for i, at := range idx {
		values[i] = rows[at].Stat(column)
	}
	return values
}
