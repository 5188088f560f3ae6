// Package detector flags ticks where a player aims at an opponent it cannot see.
package detector

import (
	"context"

	"github.com/OCAP2/wallscan/internal/roster"
	"github.com/OCAP2/wallscan/pkg/core"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultRoundObjective is the round_start objective of competitive bomb-defusal rounds.
const DefaultRoundObjective = "BOMB TARGET"

// Frame is the replay state on one tick.
type Frame interface {
	Tick() int
	Players() []core.PlayerSnapshot
	Spotted(observer, target string) bool
}

// Saver persists the whole detection set, replacing whatever was stored before.
type Saver interface {
	Save(set *core.DetectionSet) error
}

// RoundReporter receives per-round statistics.
type RoundReporter interface {
	ReportRound(ctx context.Context, stats core.RoundStats) error
}

// Config holds the scanner settings.
type Config struct {
	Gate           Gate
	RoundObjective string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithRoundReporter reports statistics on every round end.
func WithRoundReporter(r RoundReporter) Option {
	return func(s *Scanner) {
		s.reporter = r
	}
}

// Scanner consumes replay events in order on a single goroutine.
// Ticks are ignored until the first competitive round has started.
type Scanner struct {
	cfg      Config
	roster   *roster.Roster
	store    Saver
	reporter RoundReporter
	log      zerolog.Logger
	metrics  *metrics

	match *core.Match
	set   *core.DetectionSet

	warmupOver bool
	round      int
	scanned    bool
	lastTick   int
	roundStart int // set.Len() when the current round started
}

// NewScanner creates a Scanner tracking the players of r.
func NewScanner(cfg Config, r *roster.Roster, store Saver, log zerolog.Logger, opts ...Option) (*Scanner, error) {
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	if cfg.RoundObjective == "" {
		cfg.RoundObjective = DefaultRoundObjective
	}

	set := core.NewDetectionSet()
	set.Seed(r.Names())

	s := &Scanner{
		cfg:     cfg,
		roster:  r,
		store:   store,
		log:     log.With().Str("component", "scanner").Logger(),
		metrics: m,
		set:     set,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MatchStarted logs the demo being scanned.
func (s *Scanner) MatchStarted(m *core.Match) {
	s.match = m
	s.log.Info().
		Str("runId", m.RunID).
		Str("server", m.ServerName).
		Msgf("[0 / %d] %s", m.PlaybackTicks, m.MapName)
}

// RoundStarted handles a round_start event. Only rounds with the competitive
// objective end the warm-up and advance the round counter.
func (s *Scanner) RoundStarted(objective string, tick int) {
	if objective != s.cfg.RoundObjective {
		s.log.Debug().Str("objective", objective).Int("tick", tick).Msg("Ignoring round start")
		return
	}

	s.round++
	s.roundStart = s.set.Len()
	if !s.warmupOver {
		s.warmupOver = true
		s.log.Debug().Int("tick", tick).Msg("Warm-up over")
	}
	s.log.Info().Msgf("[%d] round #%d", tick, s.round)
}

// ScanTick runs every ordered pair of tracked players through the gate.
func (s *Scanner) ScanTick(f Frame) {
	if !s.warmupOver {
		return
	}

	tick := f.Tick()
	if s.scanned && tick <= s.lastTick {
		return
	}
	s.scanned = true
	s.lastTick = tick

	ctx := context.Background()
	s.metrics.ticks.Add(ctx, 1)

	players := f.Players()
	tracked := make([]core.PlayerSnapshot, 0, len(players))
	for _, p := range players {
		if s.roster.Tracked(p.Name) {
			tracked = append(tracked, p)
		}
	}

	var pairs int64
	for _, observer := range tracked {
		for _, target := range tracked {
			if observer.Name == target.Name {
				continue
			}
			pairs++

			expected, ok := s.cfg.Gate.Evaluate(observer, target, f.Spotted)
			if !ok {
				continue
			}

			s.set.Add(core.Detection{
				Observer:         observer.Name,
				Target:           target.Name,
				Tick:             tick,
				ObserverPosition: observer.Position,
				TargetPosition:   target.Position,
				Aim:              observer.Aim,
				Expected:         expected,
			})
			s.metrics.detections.Add(ctx, 1, metric.WithAttributes(
				attribute.String("observer", observer.Name),
			))
			s.log.Debug().
				Int("tick", tick).
				Str("observer", observer.Name).
				Str("target", target.Name).
				Msg("Aim through obstruction")
		}
	}
	s.metrics.pairs.Add(ctx, pairs)
}

// RoundEnded flushes the whole detection set. A failed write is logged and
// scanning carries on.
func (s *Scanner) RoundEnded(ctx context.Context, tick int) {
	s.flush()

	if s.reporter == nil || !s.warmupOver {
		return
	}
	stats := core.RoundStats{
		Round:      s.round,
		Tick:       tick,
		Detections: s.set.Len() - s.roundStart,
		Total:      s.set.Len(),
	}
	if s.match != nil {
		stats.RunID = s.match.RunID
		stats.MapName = s.match.MapName
	}
	if err := s.reporter.ReportRound(ctx, stats); err != nil {
		s.log.Warn().Err(err).Int("round", s.round).Msg("Failed to report round")
	}
}

// Finished flushes once more so ticks after the last round end are kept.
func (s *Scanner) Finished() {
	s.flush()
	s.log.Info().
		Int("rounds", s.round).
		Int("detections", s.set.Len()).
		Msg("Finished.")
}

func (s *Scanner) flush() {
	if err := s.store.Save(s.set); err != nil {
		s.metrics.flushFailures.Add(context.Background(), 1)
		s.log.Error().Err(err).Msg("Failed to write detections")
		return
	}
	s.log.Debug().Int("detections", s.set.Len()).Msg("Detections written")
}

// Detections returns a copy of the detections recorded so far.
func (s *Scanner) Detections() *core.DetectionSet {
	return s.set.Clone()
}

// Rounds returns the number of competitive rounds started.
func (s *Scanner) Rounds() int {
	return s.round
}

// WarmupOver reports whether ticks are being scanned.
func (s *Scanner) WarmupOver() bool {
	return s.warmupOver
}
