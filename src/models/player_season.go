package models

import "time"

// MPlayerSeasonRow is one player's per-game line for a season.
type MPlayerSeasonRow struct {
	Player string             `json:"player"`
	Pos    string             `json:"pos"`
	Tm     string             `json:"tm"`
	Stats  map[string]float64 `json:"stats"`
	Text   map[string]string  `json:"text,omitempty"`
}

// Stat returns the numeric value of column, or 0 when absent.
func (r MPlayerSeasonRow) Stat(column string) float64 {
	return r.Stats[column]
}

// MPlayerSeasonTable is a cleaned season table. It is never mutated after
// the cleaner returns it; filtering produces new slices.
type MPlayerSeasonTable struct {
	Season         int                `json:"season"`
	Columns        []string           `json:"columns"`
	NumericColumns []string           `json:"numeric_columns"`
	ImputedColumns []string           `json:"imputed_columns"`
	Rows           []MPlayerSeasonRow `json:"rows"`
	FetchedAt      time.Time          `json:"fetched_at"`
}

// MFilterSelection is the user's current widget state.
// A nil Teams/Positions slice selects every code present in the season;
// an empty non-nil slice selects nothing.
type MFilterSelection struct {
	Season    int      `json:"season"`
	Teams     []string `json:"teams"`
	Positions []string `json:"positions"`
	ShowTable bool     `json:"show_table"`
}
