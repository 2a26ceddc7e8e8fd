package models

// View names
const (
	ViewPointsSum  = "points_sum"
	ViewPointsMin  = "points_min"
	ViewPointsMax  = "points_max"
	ViewPointsMean = "points_mean"
	ViewGamesMax   = "games_max"
)

// Reductions
const (
	ReduceSum  = "sum"
	ReduceMin  = "min"
	ReduceMax  = "max"
	ReduceMean = "mean"
)

// MAggregateEntry is one group of an aggregate view. Row is set when the
// view selects a whole row (min/max), nil for sum and mean.
type MAggregateEntry struct {
	Team  string            `json:"team"`
	Pos   string            `json:"pos,omitempty"`
	Value float64           `json:"value"`
	Count int               `json:"count"`
	Row   *MPlayerSeasonRow `json:"row,omitempty"`
}

// MAggregateView is a grouped reduction over filtered rows.
type MAggregateView struct {
	Name      string            `json:"name"`
	Title     string            `json:"title"`
	Metric    string            `json:"metric"`
	YLabel    string            `json:"y_label"`
	GroupBy   []string          `json:"group_by"`
	Reduction string            `json:"reduction"`
	Entries   []MAggregateEntry `json:"entries"`
}

// Empty reports whether the view has no groups.
func (v MAggregateView) Empty() bool {
	return len(v.Entries) == 0
}
