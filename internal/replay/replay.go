// Package replay drives a detector.Scanner from a demo file.
package replay

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OCAP2/wallscan/internal/detector"
	"github.com/OCAP2/wallscan/pkg/core"
	dem "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs"
)

// Handler receives replay events in order.
type Handler interface {
	MatchStarted(m *core.Match)
	RoundStarted(objective string, tick int)
	ScanTick(f detector.Frame)
	RoundEnded(ctx context.Context, tick int)
	Finished()
}

var _ Handler = (*detector.Scanner)(nil)

// Replay is a demo loaded into memory.
type Replay struct {
	Path   string
	Header Header
	data   []byte
}

// Open reads the whole demo and decodes its header.
func Open(path string) (*Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading demo: %w", err)
	}
	h, err := ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Replay{Path: path, Header: h, data: data}, nil
}

// Describe copies the header metadata into m.
func (r *Replay) Describe(m *core.Match) {
	m.DemoFile = filepath.Base(r.Path)
	if r.Header.MapName != "" {
		m.MapName = r.Header.MapName
	}
	m.ServerName = r.Header.ServerName
	m.PlaybackTicks = r.Header.PlaybackTicks
}

// Run parses the demo to the end, forwarding events to h. MatchStarted is
// sent once before the first event. Cancelling ctx stops the parser; the
// context error is returned in that case.
func (r *Replay) Run(ctx context.Context, m *core.Match, h Handler) error {
	p := dem.NewParser(bytes.NewReader(r.data))
	defer p.Close()

	s := newSession(ctx, m, h,
		func() int { return p.GameState().IngameTick() },
		func() detector.Frame { return newFrame(p.GameState()) },
	)
	p.RegisterEventHandler(s.roundStart)
	p.RegisterEventHandler(s.frameDone)
	p.RegisterEventHandler(s.roundEnd)

	stop := context.AfterFunc(ctx, p.Cancel)
	defer stop()

	s.start()
	return s.finish(p.ParseToEnd())
}

// Run opens the demo at path and scans it with h.
func Run(ctx context.Context, path string, m *core.Match, h Handler) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	r.Describe(m)
	return r.Run(ctx, m, h)
}
