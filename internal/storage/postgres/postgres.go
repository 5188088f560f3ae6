// Package postgres implements the storage.Backend interface using GORM/PostgreSQL.
package postgres

import (
	"fmt"

	"github.com/OCAP2/wallscan/internal/database"
	gormstorage "github.com/OCAP2/wallscan/internal/storage/gorm"
	"github.com/rs/zerolog"
)

// Backend wraps the GORM backend and owns the Postgres connection.
type Backend struct {
	*gormstorage.Backend
	cfg database.PostgresConfig
	log zerolog.Logger
}

// New creates a Postgres backend. The connection is opened by Init.
func New(cfg database.PostgresConfig, log zerolog.Logger) *Backend {
	return &Backend{
		cfg: cfg,
		log: log.With().Str("component", "postgres").Logger(),
	}
}

// Init connects, then migrates the schema.
func (b *Backend) Init() error {
	db, err := database.OpenPostgres(b.cfg, b.log)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.log})
	return b.Backend.Init()
}

// Close closes the connection if Init opened one.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	return b.Backend.Close()
}
