// pkg/core/detection.go
package core

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/golang/geo/r3"
)

// Detection is one tick on which Observer aimed at Target through an obstruction.
// Only Observer, Target and Tick are persisted by every backend; the rest is context
// that relational backends keep alongside.
type Detection struct {
	Observer         string
	Target           string
	Tick             int
	ObserverPosition r3.Vector
	TargetPosition   r3.Vector
	Aim              Angles // observer's eye angles on that tick
	Expected         Angles // angles pointing exactly at the target
}

// DetectionSet accumulates detections for one replay.
// Records are append-only; per-pair tick lists keep insertion order.
type DetectionSet struct {
	records []Detection
	ticks   map[string]map[string][]int // observer -> target -> ticks
}

// NewDetectionSet creates an empty set.
func NewDetectionSet() *DetectionSet {
	return &DetectionSet{ticks: make(map[string]map[string][]int)}
}

// DetectionSetFromTicks builds a set from the persisted observer -> target -> ticks mapping.
// Records are created in observer, target, stored tick order.
func DetectionSetFromTicks(ticks map[string]map[string][]int) *DetectionSet {
	s := NewDetectionSet()
	for _, observer := range slices.Sorted(maps.Keys(ticks)) {
		targets := ticks[observer]
		if s.ticks[observer] == nil {
			s.ticks[observer] = make(map[string][]int, len(targets))
		}
		for _, target := range slices.Sorted(maps.Keys(targets)) {
			s.ticks[observer][target] = make([]int, 0, len(targets[target]))
			for _, tick := range targets[target] {
				s.Add(Detection{Observer: observer, Target: target, Tick: tick})
			}
		}
	}
	return s
}

// Seed creates an empty tick list for every ordered pair of distinct names,
// so the persisted document always lists the full roster.
func (s *DetectionSet) Seed(names []string) {
	for _, observer := range names {
		if s.ticks[observer] == nil {
			s.ticks[observer] = make(map[string][]int)
		}
		for _, target := range names {
			if observer == target {
				continue
			}
			if _, ok := s.ticks[observer][target]; !ok {
				s.ticks[observer][target] = []int{}
			}
		}
	}
}

// Add appends a detection.
func (s *DetectionSet) Add(d Detection) {
	s.records = append(s.records, d)
	if s.ticks[d.Observer] == nil {
		s.ticks[d.Observer] = make(map[string][]int)
	}
	s.ticks[d.Observer][d.Target] = append(s.ticks[d.Observer][d.Target], d.Tick)
}

// Len returns the number of detections.
func (s *DetectionSet) Len() int {
	return len(s.records)
}

// Records returns a copy of all detections in insertion order.
func (s *DetectionSet) Records() []Detection {
	return slices.Clone(s.records)
}

// Observers returns every observer name present in the set, sorted.
func (s *DetectionSet) Observers() []string {
	return slices.Sorted(maps.Keys(s.ticks))
}

// Targets returns every target recorded for observer, sorted.
func (s *DetectionSet) Targets(observer string) []string {
	return slices.Sorted(maps.Keys(s.ticks[observer]))
}

// Ticks returns a copy of the tick list for the pair, in insertion order.
func (s *DetectionSet) Ticks(observer, target string) []int {
	return slices.Clone(s.ticks[observer][target])
}

// TickMap returns a deep copy of the observer -> target -> ticks mapping.
func (s *DetectionSet) TickMap() map[string]map[string][]int {
	out := make(map[string]map[string][]int, len(s.ticks))
	for observer, targets := range s.ticks {
		out[observer] = make(map[string][]int, len(targets))
		for target, ticks := range targets {
			if ticks == nil {
				ticks = []int{}
			}
			out[observer][target] = slices.Clone(ticks)
		}
	}
	return out
}

// Clone returns a deep copy of the set.
func (s *DetectionSet) Clone() *DetectionSet {
	return &DetectionSet{
		records: slices.Clone(s.records),
		ticks:   s.TickMap(),
	}
}

// MarshalJSON encodes the set as {"observer": {"target": [ticks...]}}.
func (s *DetectionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.TickMap())
}

// UnmarshalJSON decodes the observer -> target -> ticks document.
func (s *DetectionSet) UnmarshalJSON(data []byte) error {
	var ticks map[string]map[string][]int
	if err := json.Unmarshal(data, &ticks); err != nil {
		return err
	}
	*s = *DetectionSetFromTicks(ticks)
	return nil
}
