package datasource

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"nba-stats-explorer/src/analysis"
	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"

	"golang.org/x/sync/singleflight"
)

// SeasonCache hands out cleaned season tables. A miss fetches, cleans and
// stores the season; concurrent misses on one season share a single fetch.
// Failures are returned to every waiter and nothing is stored.
type SeasonCache struct {
	Store   interfaces.ISeasonStore
	Source  interfaces.ISeasonSource
	Cleaner *analysis.Cleaner
	Logger  *logger.Logger

	// Upper bound of one shared fetch + clean + store; 0 means none
	FetchTimeout time.Duration

	group singleflight.Group

	hits    atomic.Int64
	misses  atomic.Int64
	fetches atomic.Int64
	errors  atomic.Int64
}

// -----------------------------------------------------------------------------

func NewSeasonCache(store interfaces.ISeasonStore, source interfaces.ISeasonSource, cleaner *analysis.Cleaner, log *logger.Logger) *SeasonCache {
	return &SeasonCache{
		Store:   store,
		Source:  source,
		Cleaner: cleaner,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Get returns the cleaned table of season.
func (c *SeasonCache) Get(ctx context.Context, season int) (*models.MPlayerSeasonTable, error) {
	if !c.supported(season) {
		return nil, helpers.NewValidationError("season %d is not supported", season)
	}

	if table, found, err := c.Store.Get(ctx, season); err != nil {
		c.Logger.Warning("Store lookup for season %d failed: %v", season, err)
	} else if found {
		c.hits.Add(1)
		return table, nil
	}
	c.misses.Add(1)

	// The shared load outlives any single waiter; each waiter still stops
	// at its own deadline.
	ch := c.group.DoChan(strconv.Itoa(season), func() (interface{}, error) {
		loadCtx, cancel := c.detach(ctx)
		defer cancel()
		return c.load(loadCtx, season)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("season %d: %w", season, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.Logger.Debug("Season %d: joined an in-flight fetch", season)
		}
		return res.Val.(*models.MPlayerSeasonTable), nil
	}
}

// detach drops the cancellation of ctx, keeping its values, and bounds the
// load by FetchTimeout when set.
func (c *SeasonCache) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	loadCtx := context.WithoutCancel(ctx)
	if c.FetchTimeout > 0 {
		return context.WithTimeout(loadCtx, c.FetchTimeout)
	}
	return context.WithCancel(loadCtx)
}

// -----------------------------------------------------------------------------

func (c *SeasonCache) load(ctx context.Context, season int) (*models.MPlayerSeasonTable, error) {
	// A waiter that lost the race may find the season already stored.
	if table, found, err := c.Store.Get(ctx, season); err == nil && found {
		return table, nil
	}

	c.fetches.Add(1)
	log := c.Logger.With("season", season)
	log.Info("Fetching from %s", c.Source.Name())

	raw, err := c.Source.Fetch(ctx, season)
	if err != nil {
		c.errors.Add(1)
		return nil, fmt.Errorf("season %d: %w", season, err)
	}

	table, err := c.Cleaner.Clean(raw)
	if err != nil {
		c.errors.Add(1)
		return nil, fmt.Errorf("season %d: %w", season, err)
	}

	if err := c.Store.Put(ctx, table); err != nil {
		log.Error("Failed to store table: %v", err)
	}
	log.Info("Cached %d players", len(table.Rows))
	return table, nil
}

// -----------------------------------------------------------------------------

// Evict drops season from the store so the next Get fetches it again.
func (c *SeasonCache) Evict(ctx context.Context, season int) error {
	if err := c.Store.Delete(ctx, season); err != nil {
		return err
	}
	c.Logger.Info("Evicted season %d", season)
	return nil
}

// -----------------------------------------------------------------------------

// Seasons returns the supported seasons, newest first.
func (c *SeasonCache) Seasons() []int {
	return c.Source.Seasons()
}

// Cached returns the seasons currently held by the store.
func (c *SeasonCache) Cached(ctx context.Context) ([]int, error) {
	return c.Store.List(ctx)
}

// -----------------------------------------------------------------------------

// Stats returns a snapshot of the cache counters.
func (c *SeasonCache) Stats(ctx context.Context) models.MCacheStats {
	seasons, err := c.Store.List(ctx)
	if err != nil {
		c.Logger.Warning("Failed to list cached seasons: %v", err)
	}
	if seasons == nil {
		seasons = []int{}
	}
	return models.MCacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Fetches: c.fetches.Load(),
		Errors:  c.errors.Load(),
		Seasons: seasons,
	}
}

// -----------------------------------------------------------------------------

func (c *SeasonCache) supported(season int) bool {
	for _, s := range c.Source.Seasons() {
		if s == season {
			return true
		}
	}
	return false
}
