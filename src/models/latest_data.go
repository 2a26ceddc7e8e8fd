package models

// -----------------------------------------------------------------------------
// Dashboard state sent to clients
// -----------------------------------------------------------------------------

type MDashboardState struct {
	Type               string             `json:"type"` // "STATE", "ERROR" or "INVALIDATED"
	SessionID          string             `json:"session_id,omitempty"`
	Season             int                `json:"season"`
	AvailableTeams     []string           `json:"available_teams"`
	AvailablePositions []string           `json:"available_positions"`
	Selection          MFilterSelection   `json:"selection"`
	Columns            []string           `json:"columns,omitempty"`
	Rows               []MPlayerSeasonRow `json:"rows,omitempty"`
	Views              []MAggregateView   `json:"views"`
	Charts             map[string]string  `json:"charts,omitempty"` // view name -> SVG
	Metrics            MPipelineMetrics   `json:"metrics"`
	Error              string             `json:"error,omitempty"`
	Timestamp          int64              `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// SelectionCommand for client messages
// -----------------------------------------------------------------------------

type MSelectionCommand struct {
	Command   string   `json:"command"` // "select" or "refresh"
	Season    int      `json:"season"`
	Teams     []string `json:"teams"`
	Positions []string `json:"positions"`
	ShowTable bool     `json:"show_table"`
	Charts    bool     `json:"charts"`
}

// MCacheEvent is broadcast to every session when a season is evicted.
type MCacheEvent struct {
	Type   string `json:"type"`
	Season int    `json:"season"`
}
