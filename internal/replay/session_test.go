package replay

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/OCAP2/wallscan/internal/detector"
	"github.com/OCAP2/wallscan/pkg/core"
	dem "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs"
	"github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callLog records Handler calls in order.
type callLog struct {
	calls []string
	match *core.Match
	ctx   context.Context
}

func (c *callLog) MatchStarted(m *core.Match) {
	c.match = m
	c.calls = append(c.calls, "match "+m.MapName)
}

func (c *callLog) RoundStarted(objective string, tick int) {
	c.calls = append(c.calls, fmt.Sprintf("round start %s @%d", objective, tick))
}

func (c *callLog) ScanTick(f detector.Frame) {
	c.calls = append(c.calls, fmt.Sprintf("tick %d", f.Tick()))
}

func (c *callLog) RoundEnded(ctx context.Context, tick int) {
	c.ctx = ctx
	c.calls = append(c.calls, fmt.Sprintf("round end @%d", tick))
}

func (c *callLog) Finished() {
	c.calls = append(c.calls, "finished")
}

// testSession returns a session whose tick source is the value of *tick.
func testSession(ctx context.Context, h Handler, tick *int) *session {
	m := core.NewMatch("nuke.dem", time.Now())
	m.MapName = "de_nuke"
	return newSession(ctx, m, h,
		func() int { return *tick },
		func() detector.Frame { return &frame{tick: *tick} },
	)
}

func TestSession_ForwardsEventsInOrder(t *testing.T) {
	h := &callLog{}
	tick := 0
	s := testSession(context.Background(), h, &tick)

	s.start()
	tick = 10
	s.roundStart(events.RoundStart{Objective: "BOMB TARGET"})
	s.frameDone(events.FrameDone{})
	tick = 11
	s.frameDone(events.FrameDone{})
	tick = 40
	s.roundEnd(events.RoundEnd{})
	require.NoError(t, s.finish(nil))

	assert.Equal(t, []string{
		"match de_nuke",
		"round start BOMB TARGET @10",
		"tick 10",
		"tick 11",
		"round end @40",
		"finished",
	}, h.calls)
	assert.Same(t, s.match, h.match)
}

func TestSession_MatchStartedOnce(t *testing.T) {
	h := &callLog{}
	tick := 0
	s := testSession(context.Background(), h, &tick)

	s.start()
	s.start()

	assert.Equal(t, []string{"match de_nuke"}, h.calls)
}

func TestSession_RoundEndPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "run")
	h := &callLog{}
	tick := 5
	s := testSession(ctx, h, &tick)

	s.roundEnd(events.RoundEnd{})

	require.NotNil(t, h.ctx)
	assert.Equal(t, "run", h.ctx.Value(key{}))
}

func TestSession_Finish(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	parseErr := errors.New("corrupt packet entities")

	tests := []struct {
		name         string
		ctx          context.Context
		parseErr     error
		wantErr      error
		wantFinished bool
	}{
		{"clean end", context.Background(), nil, nil, true},
		{"truncated demo", context.Background(), fmt.Errorf("wrapped: %w", dem.ErrUnexpectedEndOfDemo), nil, true},
		{"parser failure", context.Background(), parseErr, parseErr, false},
		{"cancelled", cancelled, dem.ErrCancelled, context.Canceled, false},
		{"cancelled after clean end", cancelled, nil, context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &callLog{}
			tick := 0
			s := testSession(tt.ctx, h, &tick)

			err := s.finish(tt.parseErr)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			if tt.wantFinished {
				assert.Equal(t, []string{"finished"}, h.calls)
			} else {
				assert.Empty(t, h.calls)
			}
		})
	}
}

func TestSession_FinishedOnce(t *testing.T) {
	h := &callLog{}
	tick := 0
	s := testSession(context.Background(), h, &tick)

	require.NoError(t, s.finish(nil))
	require.NoError(t, s.finish(nil))

	assert.Equal(t, []string{"finished"}, h.calls)
}

func TestFrame_UnknownPlayersNotSpotted(t *testing.T) {
	f := &frame{tick: 7}

	assert.Equal(t, 7, f.Tick())
	assert.Empty(t, f.Players())
	assert.False(t, f.Spotted("A", "B"))
}
