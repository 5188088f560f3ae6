// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/OCAP2/wallscan/pkg/core"
)

// ErrNoData is returned by Load when there is no detection data to read.
var ErrNoData = errors.New("no detection data")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// StartMatch registers the scan run that following saves belong to.
	// It may assign m.ID.
	StartMatch(m *core.Match) error

	// Save replaces everything stored for the current match with set.
	Save(set *core.DetectionSet) error

	// Load returns the stored detections of the current match, or of the
	// most recent one when no match was started.
	Load() (*core.DetectionSet, error)
}
