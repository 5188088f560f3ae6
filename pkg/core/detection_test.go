package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectionSet_AddKeepsPairOrder(t *testing.T) {
	s := NewDetectionSet()
	s.Add(Detection{Observer: "fer", Target: "paz", Tick: 105})
	s.Add(Detection{Observer: "fer", Target: "ngiN", Tick: 101})
	s.Add(Detection{Observer: "fer", Target: "paz", Tick: 100})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int{105, 100}, s.Ticks("fer", "paz"))
	assert.Equal(t, []int{101}, s.Ticks("fer", "ngiN"))
	assert.Equal(t, []string{"fer"}, s.Observers())
	assert.Equal(t, []string{"ngiN", "paz"}, s.Targets("fer"))
}

func TestDetectionSet_SeedCreatesEmptyPairs(t *testing.T) {
	s := NewDetectionSet()
	s.Seed([]string{"fer", "paz", "ngiN"})

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []string{"fer", "ngiN", "paz"}, s.Observers())
	assert.Equal(t, []string{"ngiN", "paz"}, s.Targets("fer"))
	assert.Empty(t, s.Ticks("fer", "paz"))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fer":  {"paz": [], "ngiN": []},
		"paz":  {"fer": [], "ngiN": []},
		"ngiN": {"fer": [], "paz": []}
	}`, string(data))
}

func TestDetectionSet_SeedDoesNotDropTicks(t *testing.T) {
	s := NewDetectionSet()
	s.Add(Detection{Observer: "fer", Target: "paz", Tick: 7})
	s.Seed([]string{"fer", "paz"})

	assert.Equal(t, []int{7}, s.Ticks("fer", "paz"))
	assert.Empty(t, s.Ticks("paz", "fer"))
}

func TestDetectionSet_JSONRoundTrip(t *testing.T) {
	s := NewDetectionSet()
	s.Add(Detection{Observer: "fer", Target: "paz", Tick: 100})
	s.Add(Detection{Observer: "fer", Target: "paz", Tick: 101})
	s.Add(Detection{Observer: "TACO", Target: "MAJ3R", Tick: 42})
	s.Add(Detection{Observer: "fer", Target: "paz", Tick: 250})

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded DetectionSet
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, s.Len(), decoded.Len())
	assert.Equal(t, []int{100, 101, 250}, decoded.Ticks("fer", "paz"))
	assert.Equal(t, []int{42}, decoded.Ticks("TACO", "MAJ3R"))
	assert.ElementsMatch(t, triples(s), triples(&decoded))
}

func TestDetectionSet_UnmarshalRejectsWrongShape(t *testing.T) {
	var s DetectionSet
	err := json.Unmarshal([]byte(`[{"observer":"fer"}]`), &s)
	assert.Error(t, err)
}

func TestDetectionSet_CloneIsIndependent(t *testing.T) {
	s := NewDetectionSet()
	s.Add(Detection{Observer: "fer", Target: "paz", Tick: 1})

	c := s.Clone()
	s.Add(Detection{Observer: "fer", Target: "paz", Tick: 2})

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []int{1}, c.Ticks("fer", "paz"))
}

type triple struct {
	observer, target string
	tick             int
}

func triples(s *DetectionSet) []triple {
	var out []triple
	for _, d := range s.Records() {
		out = append(out, triple{d.Observer, d.Target, d.Tick})
	}
	return out
}
