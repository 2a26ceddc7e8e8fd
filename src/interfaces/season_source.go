package interfaces

import (
	"context"

	"nba-stats-explorer/src/models"
)

// -----------------------------------------------------------------------------
// ISeasonSource fetches the raw per-game table of one season.
// -----------------------------------------------------------------------------

type ISeasonSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Seasons returns the supported seasons, newest first.
	Seasons() []int

	// -----------------------------------------------------------------------------

	// Fetch performs one request and parses the first table of the page.
	Fetch(ctx context.Context, season int) (*models.MRawTable, error)
}

// -----------------------------------------------------------------------------
// ITableProvider hands out cleaned season tables (the season cache).
// -----------------------------------------------------------------------------

type ITableProvider interface {
	Get(ctx context.Context, season int) (*models.MPlayerSeasonTable, error)
}

// -----------------------------------------------------------------------------
// ISeasonCache is the season cache as seen by the dashboard and admin surfaces.
// -----------------------------------------------------------------------------

type ISeasonCache interface {
	ITableProvider

	// Evict drops a season so the next Get fetches it again.
	Evict(ctx context.Context, season int) error

	// Seasons returns the supported seasons, newest first.
	Seasons() []int

	// Cached returns the seasons currently stored, ascending.
	Cached(ctx context.Context) ([]int, error)

	// Stats returns a snapshot of the cache counters.
	Stats(ctx context.Context) models.MCacheStats
}
