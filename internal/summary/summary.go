// Package summary turns a detection set into per-player incident counts.
package summary

import (
	"fmt"
	"io"

	"github.com/OCAP2/wallscan/internal/roster"
	"github.com/OCAP2/wallscan/pkg/core"
)

// CountIncidents counts runs of consecutive ticks. A tick starts a new incident
// unless it is exactly one greater than the tick stored before it.
func CountIncidents(ticks []int) int {
	count := 0
	for i, tick := range ticks {
		if i > 0 && tick == ticks[i-1]+1 {
			continue
		}
		count++
	}
	return count
}

// PlayerCount is the number of incidents attributed to one player.
type PlayerCount struct {
	Name  string
	Count int
}

// Report holds incident counts per team, in roster order.
type Report struct {
	TeamOne []PlayerCount
	TeamTwo []PlayerCount
}

// Summarize counts incidents of every roster player against opponents only.
func Summarize(set *core.DetectionSet, r *roster.Roster) Report {
	count := func(names []string) []PlayerCount {
		out := make([]PlayerCount, 0, len(names))
		for _, observer := range names {
			total := 0
			for _, target := range set.Targets(observer) {
				if !r.Opponents(observer, target) {
					continue
				}
				total += CountIncidents(set.Ticks(observer, target))
			}
			out = append(out, PlayerCount{Name: observer, Count: total})
		}
		return out
	}

	return Report{
		TeamOne: count(r.TeamOne()),
		TeamTwo: count(r.TeamTwo()),
	}
}

// Write prints both team blocks.
func (rep Report) Write(w io.Writer) error {
	blocks := []struct {
		header  string
		players []PlayerCount
	}{
		{"[Team 1]:", rep.TeamOne},
		{"[Team 2]:", rep.TeamTwo},
	}
	for _, b := range blocks {
		if _, err := fmt.Fprintln(w, b.header); err != nil {
			return err
		}
		for _, p := range b.players {
			if _, err := fmt.Fprintf(w, "%s: %d (unique) ticks walling\n", p.Name, p.Count); err != nil {
				return err
			}
		}
	}
	return nil
}
