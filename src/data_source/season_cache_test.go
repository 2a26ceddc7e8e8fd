package datasource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nba-stats-explorer/src/analysis"
	"nba-stats-explorer/src/config"
	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
	"nba-stats-explorer/src/storage"
)

type countingSource struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Seasons() []int { return []int{2023, 2022, 2021} }

func (s *countingSource) Fetch(ctx context.Context, season int) (*models.MRawTable, error) {
	s.calls.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &models.MRawTable{
		Season:  season,
		Columns: []string{"Rk", "Player", "Pos", "Age", "Tm", "G", "PTS"},
		Rows: [][]string{
			{"1", "A", "PG", "25", "BOS", "5", "10.0"},
			{"2", "B", "PG", "27", "BOS", "2", "20.0"},
			{"3", "C", "C", "31", "LAL", "8", "15.0"},
		},
	}, nil
}

func newTestCache(source *countingSource) *SeasonCache {
	cfg := config.Defaults()
	log := logger.NewLogger(nil, "SeasonCacheTest")
	store := storage.NewMemoryStore(log)
	store.Initialize()
	return NewSeasonCache(store, source, analysis.NewCleaner(cfg, log), log)
}

func TestSeasonCacheSecondGetDoesNotFetch(t *testing.T) {
	source := &countingSource{}
	cache := newTestCache(source)
	ctx := context.Background()

	first, err := cache.Get(ctx, 2023)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := cache.Get(ctx, 2023)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if source.calls.Load() != 1 {
		t.Errorf("Expected 1 fetch, got %d", source.calls.Load())
	}
	if first != second {
		t.Error("Expected the cached table to be returned")
	}
	if len(first.Rows) != 3 {
		t.Errorf("Expected 3 cleaned rows, got %d", len(first.Rows))
	}

	stats := cache.Stats(ctx)
	if stats.Hits != 1 || stats.Misses != 1 || stats.Fetches != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if len(stats.Seasons) != 1 || stats.Seasons[0] != 2023 {
		t.Errorf("Expected season 2023 cached, got %v", stats.Seasons)
	}
}

func TestSeasonCacheConcurrentGetsShareFetch(t *testing.T) {
	source := &countingSource{release: make(chan struct{})}
	cache := newTestCache(source)

	const callers = 8
	var wg sync.WaitGroup
	tables := make([]*models.MPlayerSeasonTable, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i], errs[i] = cache.Get(context.Background(), 2022)
		}(i)
	}

	// Let every caller reach the in-flight fetch before it completes.
	time.Sleep(100 * time.Millisecond)
	close(source.release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("Caller %d failed: %v", i, errs[i])
		}
	}
	if got := source.calls.Load(); got != 1 {
		t.Errorf("Expected a single shared fetch, got %d", got)
	}
}

func TestSeasonCacheErrorsAreNotCached(t *testing.T) {
	boom := helpers.NewFetchError(errors.New("503"), "upstream down")
	source := &countingSource{err: boom}
	cache := newTestCache(source)
	ctx := context.Background()

	if _, err := cache.Get(ctx, 2021); !errors.Is(err, boom) {
		t.Fatalf("Expected fetch error, got %v", err)
	}

	source.err = nil
	if _, err := cache.Get(ctx, 2021); err != nil {
		t.Fatalf("Expected success after the source recovered, got %v", err)
	}
	if source.calls.Load() != 2 {
		t.Errorf("Expected 2 fetches, got %d", source.calls.Load())
	}
	if stats := cache.Stats(ctx); stats.Errors != 1 {
		t.Errorf("Expected 1 error counted, got %d", stats.Errors)
	}
}

func TestSeasonCacheEvict(t *testing.T) {
	source := &countingSource{}
	cache := newTestCache(source)
	ctx := context.Background()

	cache.Get(ctx, 2023)
	if err := cache.Evict(ctx, 2023); err != nil {
		t.Fatalf("Evict failed: %v", err)
	}
	cache.Get(ctx, 2023)
	if source.calls.Load() != 2 {
		t.Errorf("Expected a refetch after Evict, got %d fetches", source.calls.Load())
	}
}

func TestSeasonCacheUnsupportedSeason(t *testing.T) {
	source := &countingSource{}
	cache := newTestCache(source)

	_, err := cache.Get(context.Background(), 1950)
	var validation *helpers.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if source.calls.Load() != 0 {
		t.Error("Unsupported season should not be fetched")
	}
}

func TestSeasonCacheCancelledCallerDoesNotFailOthers(t *testing.T) {
	source := &countingSource{release: make(chan struct{})}
	cache := newTestCache(source)
	cache.FetchTimeout = 5 * time.Second

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := cache.Get(leaderCtx, 2023)
		leaderErr <- err
	}()

	// Wait for the fetch to start
	for source.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	type result struct {
		table *models.MPlayerSeasonTable
		err   error
	}
	follower := make(chan result, 1)
	go func() {
		table, err := cache.Get(context.Background(), 2023)
		follower <- result{table, err}
	}()

	cancelLeader()
	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected the leader to see its own cancellation, got %v", err)
	}

	close(source.release)
	res := <-follower
	if res.err != nil {
		t.Fatalf("Follower should get the table, got %v", res.err)
	}
	if len(res.table.Rows) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(res.table.Rows))
	}
	if source.calls.Load() != 1 {
		t.Errorf("Expected a single fetch, got %d", source.calls.Load())
	}
}
