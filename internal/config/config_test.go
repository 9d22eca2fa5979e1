package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.DayBatchSize != 25 {
		t.Errorf("Expected batch size 25, got %d", cfg.DayBatchSize)
	}
	if cfg.Timezone != "Asia/Seoul" {
		t.Errorf("Expected Asia/Seoul, got %s", cfg.Timezone)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DAY_BATCH_SIZE", "10")
	t.Setenv("COLLECT_INTERVAL", "30s")
	t.Setenv("SCYLLA_HOSTS", "10.0.0.1,10.0.0.2")
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg := Load()
	if cfg.DayBatchSize != 10 {
		t.Errorf("Expected batch size 10, got %d", cfg.DayBatchSize)
	}
	if cfg.CollectInterval != 30*time.Second {
		t.Errorf("Expected 30s, got %v", cfg.CollectInterval)
	}
	if len(cfg.ScyllaHosts) != 2 {
		t.Errorf("Expected 2 scylla hosts, got %v", cfg.ScyllaHosts)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("Expected default port for a bad value, got %d", cfg.HTTPPort)
	}
}

func TestLocation_Fallback(t *testing.T) {
	if loc := (Config{Timezone: "Nowhere/Nothing"}).Location(); loc != time.UTC {
		t.Errorf("Expected UTC, got %v", loc)
	}
}

func TestLoadRoomNames(t *testing.T) {
	rooms, err := LoadRoomNames("")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	if len(rooms) != 3 {
		t.Errorf("Expected 3 default rooms, got %d", len(rooms))
	}

	path := filepath.Join(t.TempDir(), "rooms.yaml")
	body := "rooms:\n  - vendor: \"4번 스터디룸\"\n    display: \"6인 세미나룸\"\n  - vendor: \"1번 스터디룸\"\n    display: \"VIP 오피스룸\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	rooms, err = LoadRoomNames(path)
	if err != nil {
		t.Fatalf("Failed to load file: %v", err)
	}
	if len(rooms) != 4 {
		t.Errorf("Expected 4 rooms, got %d", len(rooms))
	}
	if rooms["1번 스터디룸"] != "VIP 오피스룸" {
		t.Errorf("Expected override, got %q", rooms["1번 스터디룸"])
	}

	if _, err := LoadRoomNames(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
