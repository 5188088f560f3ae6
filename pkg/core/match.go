// pkg/core/match.go
package core

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Match describes the demo a scan run is working on.
// RunID is a ULID so runs sort by creation time in every backend.
type Match struct {
	ID            uint
	RunID         string
	DemoFile      string
	MapName       string
	ServerName    string
	PlaybackTicks int // 0 when the demo header does not carry it
	StartTime     time.Time
	TeamOne       []string
	TeamTwo       []string
}

// NewMatch creates a Match for the given demo file with a fresh run ID.
func NewMatch(demoFile string, now time.Time) *Match {
	return &Match{
		RunID:     ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		DemoFile:  demoFile,
		MapName:   "unknown",
		StartTime: now,
	}
}

// RoundStats summarises detections at the end of one round.
type RoundStats struct {
	RunID      string
	MapName    string
	Round      int
	Tick       int
	Detections int // detections recorded during this round
	Total      int // detections recorded so far in the match
}
