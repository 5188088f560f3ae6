package factory

import (
	"path/filepath"
	"testing"

	"github.com/OCAP2/wallscan/internal/config"
	"github.com/OCAP2/wallscan/internal/storage/jsonfile"
	"github.com/OCAP2/wallscan/internal/storage/memory"
	pgstorage "github.com/OCAP2/wallscan/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/wallscan/internal/storage/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := config.StorageConfig{
		JSON:   config.JSONConfig{OutputPath: filepath.Join(dir, "out.json")},
		SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "out.db")},
	}

	tests := []struct {
		typ  string
		want any
	}{
		{"", &jsonfile.Backend{}},
		{TypeJSON, &jsonfile.Backend{}},
		{TypeMemory, &memory.Backend{}},
		{TypeSQLite, &sqlitestorage.Backend{}},
		{TypePostgres, &pgstorage.Backend{}},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			cfg.Type = tt.typ
			b, err := NewBackend(cfg, zerolog.Nop())
			require.NoError(t, err)
			assert.IsType(t, tt.want, b)
			assert.NoError(t, b.Close())
		})
	}
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := NewBackend(config.StorageConfig{Type: "websocket"}, zerolog.Nop())
	assert.EqualError(t, err, "unknown storage type: websocket")
}
