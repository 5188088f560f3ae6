// Package gormstorage implements the storage.Backend interface over any GORM
// dialect. The sqlite and postgres backends wrap it.
package gormstorage

import (
	"errors"
	"fmt"

	"github.com/OCAP2/wallscan/internal/database"
	"github.com/OCAP2/wallscan/internal/model"
	"github.com/OCAP2/wallscan/internal/model/convert"
	"github.com/OCAP2/wallscan/internal/storage"
	"github.com/OCAP2/wallscan/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Backend implements storage.Backend on a GORM connection.
type Backend struct {
	db      *gorm.DB
	log     zerolog.Logger
	matchID uint
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		db:  deps.DB,
		log: deps.Logger,
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return fmt.Errorf("no database connection")
	}
	if err := database.Setup(b.db, b.log); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartMatch inserts the match row and assigns m.ID.
func (b *Backend) StartMatch(m *core.Match) error {
	row := convert.MatchToGorm(m)
	row.ID = 0
	if err := b.db.Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	m.ID = row.ID
	b.matchID = row.ID
	b.log.Debug().Uint("matchId", row.ID).Str("runId", m.RunID).Msg("Match created")
	return nil
}

// Save replaces the detections of the current match in one transaction.
func (b *Backend) Save(set *core.DetectionSet) error {
	if b.matchID == 0 {
		return fmt.Errorf("save before StartMatch")
	}
	rows := convert.DetectionsToGorm(set, b.matchID)

	return b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", b.matchID).Delete(&model.Detection{}).Error; err != nil {
			return fmt.Errorf("failed to clear detections: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(&rows, 1000).Error; err != nil {
			return fmt.Errorf("failed to insert detections: %w", err)
		}
		return nil
	})
}

// Load returns the detections of the current match, or of the latest match
// in the database.
func (b *Backend) Load() (*core.DetectionSet, error) {
	var match model.Match
	q := b.db.Model(&model.Match{})
	if b.matchID != 0 {
		q = q.Where("id = ?", b.matchID)
	} else {
		q = q.Order("id DESC")
	}
	if err := q.First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", b.db.Dialector.Name(), storage.ErrNoData)
		}
		return nil, fmt.Errorf("failed to load match: %w", err)
	}

	var rows []model.Detection
	if err := b.db.Where("match_id = ?", match.ID).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load detections: %w", err)
	}

	return convert.DetectionSetToCore(rows, convert.MatchToCore(&match)), nil
}
