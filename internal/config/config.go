package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreAuto     = "auto"
	StoreFile     = "file"
	StoreBunny    = "bunny"
	StoreMySQL    = "mysql"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type MySQLConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// Configured reports whether a MySQL host was provided. The other fields have
// usable defaults.
func (c MySQLConfig) Configured() bool {
	return strings.TrimSpace(c.Host) != ""
}

type BunnyConfig struct {
	StorageZone string
	StorageKey  string
	Endpoint    string
	Timeout     time.Duration
}

func (c BunnyConfig) Configured() bool {
	return strings.TrimSpace(c.StorageKey) != "" && strings.TrimSpace(c.StorageZone) != "" && strings.TrimSpace(c.Endpoint) != ""
}

type StoreConfig struct {
	Mode        string
	DocumentKey string
	FilePath    string
	SQLitePath  string
	PostgresURL string
}

type NATSConfig struct {
	URL     string
	Subject string
}

type Config struct {
	Addr             string
	CORSAllowOrigins string
	SyncKey          string
	AppPassword      string
	SyncMaxBodyBytes int64
	Store            StoreConfig
	Bunny            BunnyConfig
	MySQL            MySQLConfig
	NATS             NATSConfig
}

// Load reads the process environment, after merging a local .env file when
// one exists.
func Load() Config {
	_ = godotenv.Load()

	port := getenv("PORT", "8080")

	return Config{
		Addr:             ":" + port,
		CORSAllowOrigins: os.Getenv("CORS_ALLOW_ORIGINS"),
		SyncKey:          strings.TrimSpace(os.Getenv("SYNC_KEY")),
		AppPassword:      os.Getenv("APP_PASSWORD"),
		SyncMaxBodyBytes: int64(getenvInt("SYNC_MAX_BODY_BYTES", 32<<20, 1024, 512<<20)),
		Store: StoreConfig{
			Mode:        strings.ToLower(getenv("MENU_STORE", StoreAuto)),
			DocumentKey: getenv("MENU_DOCUMENT_KEY", "menu-data"),
			FilePath:    getenv("MENU_DATA_PATH", "menu-data.json"),
			SQLitePath:  getenv("SQLITE_PATH", "menu.db"),
			PostgresURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		},
		Bunny: BunnyConfig{
			StorageZone: os.Getenv("BUNNY_STORAGE_ZONE"),
			StorageKey:  os.Getenv("BUNNY_STORAGE_ACCESS_KEY"),
			Endpoint:    getenv("BUNNY_STORAGE_ENDPOINT", "https://storage.bunnycdn.com"),
			Timeout:     time.Duration(getenvInt("BUNNY_TIMEOUT_SECONDS", 30, 1, 300)) * time.Second,
		},
		MySQL: MySQLConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getenv("DB_PORT", "3306"),
			User:     getenv("DB_USER", "sweety"),
			Password: getenv("DB_PASSWORD", "sweety"),
			DBName:   getenv("DB_NAME", "sweety"),
		},
		NATS: NATSConfig{
			URL:     strings.TrimSpace(os.Getenv("NATS_URL")),
			Subject: getenv("NATS_SUBJECT", "menu.updated"),
		},
	}
}

// ResolvedStoreMode turns "auto" into a concrete backend: a remote store whose
// credentials are present wins over the local file.
func (c Config) ResolvedStoreMode() string {
	mode := strings.ToLower(strings.TrimSpace(c.Store.Mode))
	if mode != "" && mode != StoreAuto {
		return mode
	}
	switch {
	case c.Bunny.Configured():
		return StoreBunny
	case c.MySQL.Configured():
		return StoreMySQL
	case c.Store.PostgresURL != "":
		return StorePostgres
	default:
		return StoreFile
	}
}

func getenv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getenvInt(key string, fallback int, min int, max int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if min > 0 && v < min {
		return fallback
	}
	if max > 0 && v > max {
		return fallback
	}
	return v
}
