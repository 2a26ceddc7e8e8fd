package storage

import (
	"fmt"

	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
)

// -----------------------------------------------------------------------------

// NewSeasonStore builds the store named by storage.db_type. The store is not
// initialized.
func NewSeasonStore(cfg *models.MConfig) (interfaces.ISeasonStore, error) {
	switch cfg.Storage.DBType {
	case "", "memory":
		return NewMemoryStore(logger.NewLogger(cfg, "MemoryStore")), nil
	case "sqlite":
		return NewSQLiteDB(cfg, logger.NewLogger(cfg, "SQLiteDB"))
	case "postgres":
		return NewPostgresDB(cfg, logger.NewLogger(cfg, "PostgresDB"))
	case "redis":
		return NewRedisStore(cfg, logger.NewLogger(cfg, "RedisStore"))
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Storage.DBType)
	}
}
