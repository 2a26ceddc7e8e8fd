package interfaces

import (
	"context"

	"nba-stats-explorer/src/models"
)

// -----------------------------------------------------------------------------
// ISeasonStore holds cleaned season tables for the season cache.
// -----------------------------------------------------------------------------

type ISeasonStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the backend and wipes entries of earlier runs.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Get returns the table of season; found is false on a miss.
	Get(ctx context.Context, season int) (table *models.MPlayerSeasonTable, found bool, err error)

	// -----------------------------------------------------------------------------

	// Put stores (or replaces) the table of its season.
	Put(ctx context.Context, table *models.MPlayerSeasonTable) error

	// -----------------------------------------------------------------------------

	// Delete removes the table of season. Deleting a missing season is not an error.
	Delete(ctx context.Context, season int) error

	// -----------------------------------------------------------------------------

	// List returns the stored seasons in ascending order.
	List(ctx context.Context) ([]int, error)

	// -----------------------------------------------------------------------------

	// Close the backend connection
	Close() error
}
