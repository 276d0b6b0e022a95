package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetyshop/internal/config"
)

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()
	base := config.Config{Store: config.StoreConfig{
		Mode:        config.StoreAuto,
		DocumentKey: "menu-data",
		FilePath:    filepath.Join(dir, "menu-data.json"),
		SQLitePath:  filepath.Join(dir, "menu.db"),
	}}

	t.Run("auto without remote credentials uses the file", func(t *testing.T) {
		s, err := Open(context.Background(), base)
		require.NoError(t, err)
		assert.Equal(t, "file", s.Name())
	})

	t.Run("auto with bunny credentials uses bunny", func(t *testing.T) {
		cfg := base
		cfg.Bunny = config.BunnyConfig{StorageZone: "z", StorageKey: "k", Endpoint: "https://storage.bunnycdn.com"}
		s, err := Open(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, "bunny", s.Name())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := base
		cfg.Store.Mode = config.StoreSQLite
		s, err := Open(context.Background(), cfg)
		require.NoError(t, err)
		defer s.Close()
		assert.Equal(t, "sqlite", s.Name())

		snap, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.False(t, snap.Found)
	})

	t.Run("unknown mode", func(t *testing.T) {
		cfg := base
		cfg.Store.Mode = "s3"
		_, err := Open(context.Background(), cfg)
		assert.Error(t, err)
	})
}

func TestOpen_ExplicitRemoteWithoutConfigFailsFast(t *testing.T) {
	for _, mode := range []string{config.StoreBunny, config.StoreMySQL, config.StorePostgres} {
		t.Run(mode, func(t *testing.T) {
			cfg := config.Config{Store: config.StoreConfig{
				Mode:     mode,
				FilePath: filepath.Join(t.TempDir(), "menu-data.json"),
			}}

			s, err := Open(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, mode, s.Name())

			_, err = s.Load(context.Background())
			assert.ErrorIs(t, err, ErrNotConfigured)

			err = s.Save(context.Background(), sampleDocument("a"), "")
			assert.ErrorIs(t, err, ErrNotConfigured)
		})
	}
}
