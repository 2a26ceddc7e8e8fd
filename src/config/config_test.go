package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShippedConfig(t *testing.T) {
	conf, err := NewConfig("../../config/default.yaml")
	if err != nil {
		t.Fatalf("default.yaml should load: %v", err)
	}
	if conf.Source.DefaultSeason != 2023 || conf.Source.HeaderAliases["Team"] != "Tm" {
		t.Errorf("Unexpected source section: %+v", conf.Source)
	}
	if conf.Storage.DBType != "memory" {
		t.Errorf("Expected memory store, got %s", conf.Storage.DBType)
	}
}

func TestParseFillsDefaults(t *testing.T) {
	conf, err := Parse([]byte("port: 9000\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if conf.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", conf.Port)
	}
	if conf.Source.PointsColumn != "PTS" || conf.Network.RequestTimeout != 30 {
		t.Error("Absent keys should keep their defaults")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad port", "port: 80", "invalid server port"},
		{"sqlite without path", "storage:\n  db_type: sqlite", "database path"},
		{"redis without address", "storage:\n  db_type: redis", "redis address"},
		{"unknown store", "storage:\n  db_type: mongo", "unsupported database type"},
		{"template without season", "source:\n  url_template: https://example.com/", "%d"},
		{"default outside range", "source:\n  default_season: 1980", "default season"},
		{"empty column", "source:\n  team_column: \"\"", "column names"},
		{"negative memory", "memory_limit_mb: -1", "memory limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	conf, err := Parse([]byte("grpc_port: 50051\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := conf.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	reloaded, err := Parse(data)
	if err != nil {
		t.Fatalf("Saved config should parse: %v", err)
	}
	if reloaded.GrpcPort != 50051 || reloaded.Source.URLTemplate != conf.Source.URLTemplate {
		t.Error("Saved config lost values")
	}
}
