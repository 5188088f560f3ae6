package convert

import (
	"testing"
	"time"

	"github.com/OCAP2/wallscan/pkg/core"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	original := &core.Match{
		ID:            7,
		RunID:         "01HXA0000000000000000000AB",
		DemoFile:      "final.dem",
		MapName:       "de_cache",
		ServerName:    "Valve",
		PlaybackTicks: 128000,
		StartTime:     now,
		TeamOne:       []string{"a", "b"},
		TeamTwo:       []string{"c"},
	}

	gormMatch := MatchToGorm(original)
	assert.Equal(t, uint(7), gormMatch.ID)
	assert.JSONEq(t, `{"teamOne":["a","b"],"teamTwo":["c"]}`, string(gormMatch.Roster))

	back := MatchToCore(&gormMatch)
	assert.Equal(t, *original, back)
}

func TestMatchToGorm_EmptyRoster(t *testing.T) {
	m := MatchToGorm(&core.Match{RunID: "x"})
	assert.JSONEq(t, `{"teamOne":[],"teamTwo":[]}`, string(m.Roster))
}

func TestDetectionRoundTrip(t *testing.T) {
	original := core.Detection{
		Observer:         "A",
		Target:           "B",
		Tick:             5,
		ObserverPosition: r3.Vector{X: 1, Y: 2, Z: 3},
		TargetPosition:   r3.Vector{X: 101, Y: 102, Z: 3},
		Aim:              core.Angles{Pitch: 0.3, Yaw: 45.01},
		Expected:         core.Angles{Pitch: 0, Yaw: 45},
	}

	row := DetectionToGorm(original, 3, 9)
	assert.Equal(t, uint(3), row.MatchID)
	assert.Equal(t, 9, row.Seq)

	assert.Equal(t, original, DetectionToCore(row))
}

func TestDetectionSetToCore(t *testing.T) {
	set := core.NewDetectionSet()
	set.Add(core.Detection{Observer: "A", Target: "B", Tick: 9})
	set.Add(core.Detection{Observer: "B", Target: "A", Tick: 4})
	set.Add(core.Detection{Observer: "A", Target: "B", Tick: 2})

	rows := DetectionsToGorm(set, 1)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{rows[0].Seq, rows[1].Seq, rows[2].Seq})

	back := DetectionSetToCore(rows, core.Match{TeamOne: []string{"A"}, TeamTwo: []string{"B", "C"}})
	assert.Equal(t, []int{9, 2}, back.Ticks("A", "B"))
	assert.Equal(t, []int{4}, back.Ticks("B", "A"))
	assert.Equal(t, []string{"A", "B", "C"}, back.Observers())
	assert.Equal(t, []string{"A", "B"}, back.Targets("C"))
}
