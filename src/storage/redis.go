package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"

	"github.com/redis/go-redis/v9"
)

// -----------------------------------------------------------------------------

// RedisStore keeps one JSON value per season under "<prefix>:season:<year>".
type RedisStore struct {
	Config *models.MConfig
	Client *redis.Client
	Logger *logger.Logger
	prefix string
	ttl    time.Duration
}

// -----------------------------------------------------------------------------

func NewRedisStore(cfg *models.MConfig, log *logger.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.RedisAddr,
		Password: cfg.Storage.RedisPassword,
		DB:       cfg.Storage.RedisDB,
	})
	return NewRedisStoreWithClient(cfg, client, log), nil
}

func NewRedisStoreWithClient(cfg *models.MConfig, client *redis.Client, log *logger.Logger) *RedisStore {
	prefix := cfg.Storage.KeyPrefix
	if prefix == "" {
		prefix = cfg.Name
	}
	return &RedisStore{
		Config: cfg,
		Client: client,
		Logger: log,
		prefix: prefix,
		ttl:    time.Duration(cfg.Storage.TTLSeconds) * time.Second,
	}
}

// -----------------------------------------------------------------------------

// Initialize checks the connection and deletes the keys of earlier runs.
func (s *RedisStore) Initialize() error {
	ctx := context.Background()
	if err := s.Client.Ping(ctx).Err(); err != nil {
		return helpers.NewStoreError(err, "failed to reach redis %s", s.Config.Storage.RedisAddr)
	}

	keys, err := s.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := s.Client.Del(ctx, keys...).Err(); err != nil {
			return helpers.NewStoreError(err, "failed to clear %d stale keys", len(keys))
		}
	}

	s.Logger.Info("RedisStore initialized (prefix %s, %d stale keys removed)", s.prefix, len(keys))
	return nil
}

// -----------------------------------------------------------------------------

func (s *RedisStore) key(season int) string {
	return fmt.Sprintf("%s:season:%d", s.prefix, season)
}

func (s *RedisStore) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.Client.Scan(ctx, 0, s.prefix+":season:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, helpers.NewStoreError(err, "failed to scan keys")
	}
	return keys, nil
}

// -----------------------------------------------------------------------------

func (s *RedisStore) Get(ctx context.Context, season int) (*models.MPlayerSeasonTable, bool, error) {
	data, err := s.Client.Get(ctx, s.key(season)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, helpers.NewStoreError(err, "failed to read season %d", season)
	}

	table, err := decodeTable(data)
	if err != nil {
		return nil, false, helpers.NewStoreError(err, "season %d", season)
	}
	return table, true, nil
}

// -----------------------------------------------------------------------------

func (s *RedisStore) Put(ctx context.Context, table *models.MPlayerSeasonTable) error {
	data, err := encodeTable(table)
	if err != nil {
		return helpers.NewStoreError(err, "season %d", table.Season)
	}
	if err := s.Client.Set(ctx, s.key(table.Season), data, s.ttl).Err(); err != nil {
		return helpers.NewStoreError(err, "failed to write season %d", table.Season)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *RedisStore) Delete(ctx context.Context, season int) error {
	if err := s.Client.Del(ctx, s.key(season)).Err(); err != nil {
		return helpers.NewStoreError(err, "failed to delete season %d", season)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *RedisStore) List(ctx context.Context) ([]int, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}

	seasons := make([]int, 0, len(keys))
	for _, k := range keys {
		season, err := strconv.Atoi(k[strings.LastIndex(k, ":")+1:])
		if err != nil {
			s.Logger.Warning("Ignoring unexpected key %s", k)
			continue
		}
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)
	return seasons, nil
}

// -----------------------------------------------------------------------------

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
