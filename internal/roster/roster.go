// Package roster holds the tracked players of a match and their team split.
package roster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyTeam is returned when a team has no players.
	ErrEmptyTeam = errors.New("team has no players")
	// ErrDuplicateName is returned when a name appears more than once.
	ErrDuplicateName = errors.New("duplicate player name")
)

// Team identifies one side of the roster.
type Team int

const (
	NoTeam Team = iota
	TeamOne
	TeamTwo
)

// Roster is the set of tracked players split into two teams, in declaration order.
type Roster struct {
	teamOne []string
	teamTwo []string
	teams   map[string]Team
}

// New builds a roster from the two team lists. Names are trimmed.
func New(teamOne, teamTwo []string) (*Roster, error) {
	r := &Roster{teams: make(map[string]Team, len(teamOne)+len(teamTwo))}

	add := func(team Team, names []string) ([]string, error) {
		if len(names) == 0 {
			return nil, fmt.Errorf("team %d: %w", team, ErrEmptyTeam)
		}
		out := make([]string, 0, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("team %d: blank player name", team)
			}
			if _, ok := r.teams[name]; ok {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
			}
			r.teams[name] = team
			out = append(out, name)
		}
		return out, nil
	}

	var err error
	if r.teamOne, err = add(TeamOne, teamOne); err != nil {
		return nil, err
	}
	if r.teamTwo, err = add(TeamTwo, teamTwo); err != nil {
		return nil, err
	}
	return r, nil
}

// TeamOne returns the first team's names in declaration order.
func (r *Roster) TeamOne() []string { return append([]string(nil), r.teamOne...) }

// TeamTwo returns the second team's names in declaration order.
func (r *Roster) TeamTwo() []string { return append([]string(nil), r.teamTwo...) }

// Names returns every tracked name, team one first.
func (r *Roster) Names() []string {
	return append(r.TeamOne(), r.teamTwo...)
}

// Tracked reports whether name is on either team.
func (r *Roster) Tracked(name string) bool {
	_, ok := r.teams[name]
	return ok
}

// TeamOf returns the team of name, or NoTeam.
func (r *Roster) TeamOf(name string) Team {
	return r.teams[name]
}

// Opponents reports whether a and b are both tracked and on different teams.
func (r *Roster) Opponents(a, b string) bool {
	ta, tb := r.TeamOf(a), r.TeamOf(b)
	return ta != NoTeam && tb != NoTeam && ta != tb
}
