package gormstorage

import (
	"testing"
	"time"

	"github.com/OCAP2/wallscan/internal/database"
	"github.com/OCAP2/wallscan/internal/model"
	"github.com/OCAP2/wallscan/internal/storage"
	"github.com/OCAP2/wallscan/pkg/core"
	"github.com/golang/geo/r3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.OpenSQLite("", zerolog.Nop())
	require.NoError(t, err)

	b := New(Dependencies{DB: db, Logger: zerolog.Nop()})
	require.NoError(t, b.Init())
	t.Cleanup(func() { b.Close() })
	return b
}

func newTestMatch() *core.Match {
	m := core.NewMatch("final.dem", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC))
	m.MapName = "de_cache"
	m.TeamOne = []string{"A"}
	m.TeamTwo = []string{"B"}
	return m
}

func TestInit_NoDB(t *testing.T) {
	b := New(Dependencies{Logger: zerolog.Nop()})
	assert.Error(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestStartMatch_AssignsID(t *testing.T) {
	b := newTestBackend(t)
	m := newTestMatch()

	require.NoError(t, b.StartMatch(m))
	assert.NotZero(t, m.ID)

	var row model.Match
	require.NoError(t, b.DB().First(&row, m.ID).Error)
	assert.Equal(t, m.RunID, row.RunID)
	assert.Equal(t, "de_cache", row.MapName)
	assert.JSONEq(t, `{"teamOne":["A"],"teamTwo":["B"]}`, string(row.Roster))
}

func TestSave_BeforeStartMatch(t *testing.T) {
	b := newTestBackend(t)
	assert.Error(t, b.Save(core.NewDetectionSet()))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartMatch(newTestMatch()))

	set := core.NewDetectionSet()
	set.Add(core.Detection{
		Observer:         "A",
		Target:           "B",
		Tick:             5,
		ObserverPosition: r3.Vector{X: 1, Y: 2, Z: 3},
		TargetPosition:   r3.Vector{X: 101, Y: 102, Z: 3},
		Aim:              core.Angles{Pitch: 0.3, Yaw: 45.01},
		Expected:         core.Angles{Pitch: 0, Yaw: 45},
	})
	set.Add(core.Detection{Observer: "A", Target: "B", Tick: 4})
	require.NoError(t, b.Save(set))

	got, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4}, got.Ticks("A", "B"))
	assert.Empty(t, got.Ticks("B", "A"))

	first := got.Records()[0]
	assert.Equal(t, r3.Vector{X: 1, Y: 2, Z: 3}, first.ObserverPosition)
	assert.Equal(t, core.Angles{Pitch: 0.3, Yaw: 45.01}, first.Aim)
}

func TestSave_ReplacesPreviousRows(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartMatch(newTestMatch()))

	first := core.NewDetectionSet()
	first.Add(core.Detection{Observer: "A", Target: "B", Tick: 1})
	require.NoError(t, b.Save(first))

	second := first.Clone()
	second.Add(core.Detection{Observer: "B", Target: "A", Tick: 2})
	require.NoError(t, b.Save(second))

	var count int64
	require.NoError(t, b.DB().Model(&model.Detection{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, b.Save(core.NewDetectionSet()))
	require.NoError(t, b.DB().Model(&model.Detection{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoad_LatestMatch(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.StartMatch(newTestMatch()))
	old := core.NewDetectionSet()
	old.Add(core.Detection{Observer: "A", Target: "B", Tick: 1})
	require.NoError(t, b.Save(old))

	require.NoError(t, b.StartMatch(newTestMatch()))
	latest := core.NewDetectionSet()
	latest.Add(core.Detection{Observer: "B", Target: "A", Tick: 9})
	require.NoError(t, b.Save(latest))

	reader := New(Dependencies{DB: b.DB(), Logger: zerolog.Nop()})
	got, err := reader.Load()
	require.NoError(t, err)
	assert.Equal(t, []int{9}, got.Ticks("B", "A"))
	assert.Empty(t, got.Ticks("A", "B"))
}

func TestLoad_Empty(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.Load()
	assert.ErrorIs(t, err, storage.ErrNoData)
}
