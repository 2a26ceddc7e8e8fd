package storage

import (
	"context"
	"sort"
	"sync"

	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
)

// -----------------------------------------------------------------------------

// MemoryStore keeps season tables in process memory.
type MemoryStore struct {
	Logger *logger.Logger

	mu     sync.RWMutex
	tables map[int]*models.MPlayerSeasonTable
}

// -----------------------------------------------------------------------------

func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		Logger: log,
		tables: make(map[int]*models.MPlayerSeasonTable),
	}
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[int]*models.MPlayerSeasonTable)
	s.Logger.Info("MemoryStore initialized")
	return nil
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) Get(ctx context.Context, season int) (*models.MPlayerSeasonTable, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.tables[season]
	return table, ok, nil
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) Put(ctx context.Context, table *models.MPlayerSeasonTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table.Season] = table
	return nil
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) Delete(ctx context.Context, season int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, season)
	return nil
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) List(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seasons := make([]int, 0, len(s.tables))
	for season := range s.tables {
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)
	return seasons, nil
}

// -----------------------------------------------------------------------------

func (s *MemoryStore) Close() error {
	return nil
}
