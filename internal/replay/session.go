package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/OCAP2/wallscan/internal/detector"
	"github.com/OCAP2/wallscan/pkg/core"
	dem "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs"
	"github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs/events"
)

// session forwards parser events of one run to a Handler.
// MatchStarted is sent once before parsing and Finished once after a clean end.
type session struct {
	ctx   context.Context
	match *core.Match
	h     Handler

	tick  func() int
	frame func() detector.Frame

	started  bool
	finished bool
}

func newSession(ctx context.Context, m *core.Match, h Handler, tick func() int, frame func() detector.Frame) *session {
	return &session{ctx: ctx, match: m, h: h, tick: tick, frame: frame}
}

func (s *session) start() {
	if s.started {
		return
	}
	s.started = true
	s.h.MatchStarted(s.match)
}

func (s *session) roundStart(e events.RoundStart) {
	s.h.RoundStarted(e.Objective, s.tick())
}

func (s *session) frameDone(events.FrameDone) {
	s.h.ScanTick(s.frame())
}

func (s *session) roundEnd(events.RoundEnd) {
	s.h.RoundEnded(s.ctx, s.tick())
}

// finish turns the parser result into the run result. A cancelled context wins
// over the parser error; a truncated demo counts as a clean end.
func (s *session) finish(parseErr error) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if parseErr != nil && !errors.Is(parseErr, dem.ErrUnexpectedEndOfDemo) {
		return fmt.Errorf("parsing demo: %w", parseErr)
	}
	if !s.finished {
		s.finished = true
		s.h.Finished()
	}
	return nil
}
