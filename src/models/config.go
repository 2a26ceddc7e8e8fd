package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	GrpcHost string         `yaml:"grpc_host"`
	GrpcPort int            `yaml:"grpc_port"`
	MemoryMB int            `yaml:"memory_limit_mb"` // 0 derives the limit from total RAM
	Storage  MStorageConfig `yaml:"storage"`
	Network  MNetworkConfig `yaml:"network"`
	Source   MSourceConfig  `yaml:"source"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // memory, sqlite, postgres, redis
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RedisAddr          string `yaml:"redis_addr"`
	RedisPassword      string `yaml:"redis_password"`
	RedisDB            int    `yaml:"redis_db"`
	KeyPrefix          string `yaml:"key_prefix"`
	TTLSeconds         int    `yaml:"ttl_seconds"` // 0 keeps entries until eviction
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	UserAgent      string   `yaml:"user_agent"`
}

// MSourceConfig describes where season tables come from and how their
// columns are interpreted.
type MSourceConfig struct {
	Name               string            `yaml:"name"`
	URLTemplate        string            `yaml:"url_template"` // %d is replaced by the season
	MinSeason          int               `yaml:"min_season"`
	MaxSeason          int               `yaml:"max_season"`
	DefaultSeason      int               `yaml:"default_season"`
	RankColumn         string            `yaml:"rank_column"`
	HeaderMarkerColumn string            `yaml:"header_marker_column"`
	PlayerColumn       string            `yaml:"player_column"`
	PositionColumn     string            `yaml:"position_column"`
	TeamColumn         string            `yaml:"team_column"`
	PassthroughColumns []string          `yaml:"passthrough_columns"`
	HeaderAliases      map[string]string `yaml:"header_aliases"`
	PointsColumn       string            `yaml:"points_column"`
	GamesColumn        string            `yaml:"games_column"`
}

// IdentifierColumns returns the three text columns that are never coerced.
func (s MSourceConfig) IdentifierColumns() []string {
	return []string{s.PlayerColumn, s.PositionColumn, s.TeamColumn}
}

// GetLogLevel lets the logger read the level without importing config.
func (c *MConfig) GetLogLevel() string {
	if c == nil {
		return ""
	}
	return c.LogLevel
}
