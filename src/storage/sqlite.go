package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewStoreError(err, "failed to open sqlite %s", dsn)
	}

	// One connection so an in-memory database is shared by every call.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStoreError(err, "failed to reach sqlite %s", dsn)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// Recreate Tables
	if err := d.recreateTables(); err != nil {
		return err
	}

	d.Logger.Info("SQLiteDB initialized (%s)", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) recreateTables() error {
	if _, err := d.DB.Exec("DROP TABLE IF EXISTS season_tables"); err != nil {
		return fmt.Errorf("failed to drop season_tables: %w", err)
	}

	query := `
		CREATE TABLE season_tables (
			season INTEGER PRIMARY KEY,
			row_count INTEGER,
			fetched_at INTEGER,
			payload TEXT
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create season_tables: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Get(ctx context.Context, season int) (*models.MPlayerSeasonTable, bool, error) {
	var payload string
	err := d.DB.QueryRowContext(ctx, "SELECT payload FROM season_tables WHERE season = ?", season).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, helpers.NewStoreError(err, "failed to read season %d", season)
	}

	table, err := decodeTable([]byte(payload))
	if err != nil {
		return nil, false, helpers.NewStoreError(err, "season %d", season)
	}
	return table, true, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Put(ctx context.Context, table *models.MPlayerSeasonTable) error {
	payload, err := encodeTable(table)
	if err != nil {
		return helpers.NewStoreError(err, "season %d", table.Season)
	}

	_, err = d.DB.ExecContext(ctx, `
		INSERT INTO season_tables (season, row_count, fetched_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (season) DO UPDATE SET
			row_count = excluded.row_count,
			fetched_at = excluded.fetched_at,
			payload = excluded.payload
	`, table.Season, len(table.Rows), table.FetchedAt.Unix(), string(payload))
	if err != nil {
		return helpers.NewStoreError(err, "failed to write season %d", table.Season)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Delete(ctx context.Context, season int) error {
	if _, err := d.DB.ExecContext(ctx, "DELETE FROM season_tables WHERE season = ?", season); err != nil {
		return helpers.NewStoreError(err, "failed to delete season %d", season)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) List(ctx context.Context) ([]int, error) {
	rows, err := d.DB.QueryContext(ctx, "SELECT season FROM season_tables ORDER BY season")
	if err != nil {
		return nil, helpers.NewStoreError(err, "failed to list seasons")
	}
	defer rows.Close()

	seasons := []int{}
	for rows.Next() {
		var season int
		if err := rows.Scan(&season); err != nil {
			return nil, helpers.NewStoreError(err, "failed to scan season")
		}
		seasons = append(seasons, season)
	}
	return seasons, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
