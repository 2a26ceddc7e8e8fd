package analysis

import "nba-stats-explorer/src/models"

// -----------------------------------------------------------------------------

// Filter keeps the rows whose team is in teams and whose position is in
// positions, in table order. An empty set on either side selects nothing.
func Filter(rows []models.MPlayerSeasonRow, teams, positions []string) []models.MPlayerSeasonRow {
	out := make([]models.MPlayerSeasonRow, 0)
	if len(teams) == 0 || len(positions) == 0 {
		return out
	}

	teamSet := toSet(teams)
	posSet := toSet(positions)
	for _, row := range rows {
		if teamSet[row.Tm] && posSet[row.Pos] {
			out = append(out, row)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// Teams returns the distinct team codes in first-seen order.
func Teams(table *models.MPlayerSeasonTable) []string {
	return distinct(table, func(r models.MPlayerSeasonRow) string { return r.Tm })
}

// Positions returns the distinct position codes in first-seen order.
func Positions(table *models.MPlayerSeasonTable) []string {
	return distinct(table, func(r models.MPlayerSeasonRow) string { return r.Pos })
}

// -----------------------------------------------------------------------------

// ResolveSelection fills a nil team or position list with every code
// present in the table. Non-nil lists, empty ones included, are kept.
func ResolveSelection(table *models.MPlayerSeasonTable, sel models.MFilterSelection) models.MFilterSelection {
	if sel.Teams == nil {
		sel.Teams = Teams(table)
	}
	if sel.Positions == nil {
		sel.Positions = Positions(table)
	}
	return sel
}

// -----------------------------------------------------------------------------

func distinct(table *models.MPlayerSeasonTable, key func(models.MPlayerSeasonRow) string) []string {
	out := make([]string, 0)
	if table == nil {
		return out
	}
	seen := make(map[string]bool)
	for _, row := range table.Rows {
		k := key(row)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
