package utils

// -----------------------------------------------------------------------------

// Season range offered by the reference dashboard.
const (
	DefaultMinSeason = 1991
	DefaultMaxSeason = 2023
)

// -----------------------------------------------------------------------------

// SeasonRange lists seasons from max down to min, newest first.
func SeasonRange(min, max int) []int {
	if max < min {
		return nil
	}
	out := make([]int, 0, max-min+1)
	for s := max; s >= min; s-- {
		out = append(out, s)
	}
	return out
}

// -----------------------------------------------------------------------------

// InSeasonRange reports whether season lies within [min, max].
func InSeasonRange(season, min, max int) bool {
	return season >= min && season <= max
}
