package models

// MRawTable is the first HTML table of a season page, as text.
// An empty cell means the value is missing.
type MRawTable struct {
	Season  int        `json:"season"`
	Source  string     `json:"source"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}
