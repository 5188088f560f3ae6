// Package factory creates the storage backend selected by configuration.
package factory

import (
	"fmt"

	"github.com/OCAP2/wallscan/internal/config"
	"github.com/OCAP2/wallscan/internal/database"
	"github.com/OCAP2/wallscan/internal/storage"
	"github.com/OCAP2/wallscan/internal/storage/jsonfile"
	"github.com/OCAP2/wallscan/internal/storage/memory"
	pgstorage "github.com/OCAP2/wallscan/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/wallscan/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// Storage types accepted in storage.type.
const (
	TypeJSON     = "json"
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// NewBackend creates a storage backend based on configuration. The backend is
// not initialized.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (storage.Backend, error) {
	switch cfg.Type {
	case TypeJSON, "":
		log.Debug().Str("path", cfg.JSON.OutputPath).Msg("JSON storage backend selected")
		return jsonfile.New(cfg.JSON, log), nil

	case TypeMemory:
		log.Debug().Msg("Memory storage backend selected")
		return memory.New(), nil

	case TypeSQLite:
		backend, err := sqlitestorage.New(sqlitestorage.Config{DumpPath: cfg.SQLite.Path}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		log.Debug().Str("path", cfg.SQLite.Path).Msg("SQLite storage backend selected")
		return backend, nil

	case TypePostgres:
		log.Debug().Msg("Postgres storage backend selected")
		return pgstorage.New(database.PostgresConfigFromViper(), log), nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
