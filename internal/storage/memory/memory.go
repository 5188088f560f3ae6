// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/OCAP2/wallscan/internal/storage"
	"github.com/OCAP2/wallscan/pkg/core"
)

// Backend keeps the last saved detection set in memory. It backs dry runs
// and tests.
type Backend struct {
	match *core.Match
	set   *core.DetectionSet
	saves int

	idCounter uint
	mu        sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMatch begins recording a new match and drops previous data
func (b *Backend) StartMatch(m *core.Match) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	m.ID = b.idCounter

	b.match = m
	b.set = nil
	b.saves = 0
	return nil
}

// Save stores a deep copy of set
func (b *Backend) Save(set *core.DetectionSet) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.set = set.Clone()
	b.saves++
	return nil
}

// Load returns a copy of the last saved set
func (b *Backend) Load() (*core.DetectionSet, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.set == nil {
		return nil, storage.ErrNoData
	}
	return b.set.Clone(), nil
}

// Match returns the current match, or nil
func (b *Backend) Match() *core.Match {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.match
}

// Saves returns how many times Save was called for the current match
func (b *Backend) Saves() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.saves
}
