package models

// MPipelineMetrics describes one reactive pipeline update.
type MPipelineMetrics struct {
	StagesRecomputed []string `json:"stages_recomputed"`
	TableRows        int      `json:"table_rows"`
	FilteredRows     int      `json:"filtered_rows"`
	ElapsedSeconds   float64  `json:"elapsed_seconds"`
}

// MCacheStats are the season cache counters.
type MCacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Fetches int64 `json:"fetches"`
	Errors  int64 `json:"errors"`
	Seasons []int `json:"seasons"`
}
