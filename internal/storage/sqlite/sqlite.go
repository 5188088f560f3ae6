// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database that is dumped to disk via VACUUM INTO after every save.
// It wraps the GORM backend via composition.
package sqlitestorage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/OCAP2/wallscan/internal/database"
	"github.com/OCAP2/wallscan/internal/storage"
	gormstorage "github.com/OCAP2/wallscan/internal/storage/gorm"
	"github.com/OCAP2/wallscan/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpPath string // database file replaced after every save
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db      *gorm.DB
	cfg     Config
	log     zerolog.Logger
	started bool
}

// New creates a new SQLite storage backend.
func New(cfg Config, log zerolog.Logger) (*Backend, error) {
	log = log.With().Str("component", "sqlite").Logger()

	db, err := database.OpenSQLite("", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log}),
		db:      db,
		cfg:     cfg,
		log:     log,
	}, nil
}

// StartMatch registers the match in the in-memory database.
func (b *Backend) StartMatch(m *core.Match) error {
	if err := b.Backend.StartMatch(m); err != nil {
		return err
	}
	b.started = true
	return nil
}

// Save writes the set to the in-memory database and dumps it to disk.
func (b *Backend) Save(set *core.DetectionSet) error {
	if err := b.Backend.Save(set); err != nil {
		return err
	}
	if b.cfg.DumpPath == "" {
		return nil
	}

	took, err := database.DumpSQLiteToDisk(b.db, b.cfg.DumpPath)
	if err != nil {
		return err
	}
	b.log.Debug().Dur("duration", took).Str("path", b.cfg.DumpPath).Msg("Dumped to disk")
	return nil
}

// Load reads the current match from memory. Without a started match the
// last dump on disk is read instead.
func (b *Backend) Load() (*core.DetectionSet, error) {
	if b.started || b.cfg.DumpPath == "" {
		return b.Backend.Load()
	}

	if _, err := os.Stat(b.cfg.DumpPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", b.cfg.DumpPath, storage.ErrNoData)
	}

	db, err := database.OpenSQLite(b.cfg.DumpPath, b.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", b.cfg.DumpPath, err)
	}
	dump := gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.log})
	defer dump.Close()

	if !db.Migrator().HasTable("matches") {
		return nil, fmt.Errorf("%s: %w", b.cfg.DumpPath, storage.ErrNoData)
	}
	return dump.Load()
}
