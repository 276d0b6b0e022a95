package config

import (
	"testing"
	"time"
)

func TestResolvedStoreMode(t *testing.T) {
	bunny := BunnyConfig{StorageZone: "sweety", StorageKey: "key", Endpoint: "https://storage.bunnycdn.com"}
	mysql := MySQLConfig{Host: "db", Port: "3306"}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"auto falls back to file", Config{Store: StoreConfig{Mode: StoreAuto}}, StoreFile},
		{"empty mode is auto", Config{}, StoreFile},
		{"auto prefers bunny", Config{Store: StoreConfig{Mode: StoreAuto}, Bunny: bunny, MySQL: mysql}, StoreBunny},
		{"auto picks mysql", Config{Store: StoreConfig{Mode: StoreAuto}, MySQL: mysql}, StoreMySQL},
		{"auto picks postgres", Config{Store: StoreConfig{Mode: StoreAuto, PostgresURL: "postgres://x"}}, StorePostgres},
		{"explicit file ignores credentials", Config{Store: StoreConfig{Mode: StoreFile}, Bunny: bunny}, StoreFile},
		{"explicit remote kept without credentials", Config{Store: StoreConfig{Mode: "Bunny"}}, StoreBunny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ResolvedStoreMode(); got != tt.want {
				t.Errorf("ResolvedStoreMode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SYNC_KEY", "  sync-secret ")
	t.Setenv("MENU_STORE", "SQLite")
	t.Setenv("SYNC_MAX_BODY_BYTES", "not-a-number")
	t.Setenv("BUNNY_TIMEOUT_SECONDS", "12")
	t.Setenv("DB_HOST", "")

	cfg := Load()

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.SyncKey != "sync-secret" {
		t.Errorf("SyncKey = %q, want trimmed value", cfg.SyncKey)
	}
	if cfg.Store.Mode != StoreSQLite {
		t.Errorf("Store.Mode = %q, want %q", cfg.Store.Mode, StoreSQLite)
	}
	if cfg.SyncMaxBodyBytes != 32<<20 {
		t.Errorf("SyncMaxBodyBytes = %d, want default", cfg.SyncMaxBodyBytes)
	}
	if cfg.Bunny.Timeout != 12*time.Second {
		t.Errorf("Bunny.Timeout = %v, want 12s", cfg.Bunny.Timeout)
	}
	if cfg.MySQL.Configured() {
		t.Errorf("MySQL.Configured() = true without DB_HOST")
	}
	if cfg.Store.DocumentKey != "menu-data" {
		t.Errorf("Store.DocumentKey = %q, want menu-data", cfg.Store.DocumentKey)
	}
}
