package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Schema is named after the executable so several tools can share a database
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}

	return &PostgresDB{
		Config: cfg,
		Schema: schemaName(exe),
		Logger: log,
	}, nil
}

// schemaName derives a schema identifier from an executable path.
func schemaName(exe string) string {
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(name, `"`, "")
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewStoreError(err, "failed to open postgres")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStoreError(err, "failed to reach postgres")
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.recreateTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table() string {
	return fmt.Sprintf(`"%s"."season_tables"`, d.Schema)
}

func (d *PostgresDB) recreateTables() error {
	if _, err := d.DB.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, d.table())); err != nil {
		return fmt.Errorf("failed to drop season_tables: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE %s (
			season INTEGER PRIMARY KEY,
			row_count INTEGER,
			fetched_at TIMESTAMPTZ,
			payload JSONB
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create season_tables: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Get(ctx context.Context, season int) (*models.MPlayerSeasonTable, bool, error) {
	var payload []byte
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE season = $1`, d.table())
	err := d.DB.QueryRowContext(ctx, query, season).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, helpers.NewStoreError(err, "failed to read season %d", season)
	}

	table, err := decodeTable(payload)
	if err != nil {
		return nil, false, helpers.NewStoreError(err, "season %d", season)
	}
	return table, true, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Put(ctx context.Context, table *models.MPlayerSeasonTable) error {
	payload, err := encodeTable(table)
	if err != nil {
		return helpers.NewStoreError(err, "season %d", table.Season)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (season, row_count, fetched_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (season) DO UPDATE SET
			row_count = EXCLUDED.row_count,
			fetched_at = EXCLUDED.fetched_at,
			payload = EXCLUDED.payload
	`, d.table())
	if _, err := d.DB.ExecContext(ctx, query, table.Season, len(table.Rows), table.FetchedAt, string(payload)); err != nil {
		return helpers.NewStoreError(err, "failed to write season %d", table.Season)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Delete(ctx context.Context, season int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE season = $1`, d.table())
	if _, err := d.DB.ExecContext(ctx, query, season); err != nil {
		return helpers.NewStoreError(err, "failed to delete season %d", season)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) List(ctx context.Context) ([]int, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf(`SELECT season FROM %s ORDER BY season`, d.table()))
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

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
