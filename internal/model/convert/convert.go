// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/OCAP2/wallscan/internal/geo"
	"github.com/OCAP2/wallscan/internal/model"
	"github.com/OCAP2/wallscan/pkg/core"
	"gorm.io/datatypes"
)

type rosterJSON struct {
	TeamOne []string `json:"teamOne"`
	TeamTwo []string `json:"teamTwo"`
}

// MatchToGorm converts a core.Match to a GORM model.Match
func MatchToGorm(m *core.Match) model.Match {
	roster, _ := json.Marshal(rosterJSON{
		TeamOne: nonNil(m.TeamOne),
		TeamTwo: nonNil(m.TeamTwo),
	})

	out := model.Match{
		RunID:         m.RunID,
		DemoFile:      m.DemoFile,
		MapName:       m.MapName,
		ServerName:    m.ServerName,
		PlaybackTicks: m.PlaybackTicks,
		StartTime:     m.StartTime,
		Roster:        datatypes.JSON(roster),
	}
	out.ID = m.ID
	return out
}

// MatchToCore converts a GORM model.Match to a core.Match
func MatchToCore(m *model.Match) core.Match {
	var roster rosterJSON
	if len(m.Roster) > 0 {
		_ = json.Unmarshal(m.Roster, &roster)
	}

	return core.Match{
		ID:            m.ID,
		RunID:         m.RunID,
		DemoFile:      m.DemoFile,
		MapName:       m.MapName,
		ServerName:    m.ServerName,
		PlaybackTicks: m.PlaybackTicks,
		StartTime:     m.StartTime,
		TeamOne:       roster.TeamOne,
		TeamTwo:       roster.TeamTwo,
	}
}

// DetectionToGorm converts a core.Detection to a GORM model.Detection
func DetectionToGorm(d core.Detection, matchID uint, seq int) model.Detection {
	return model.Detection{
		MatchID:          matchID,
		Seq:              seq,
		Observer:         d.Observer,
		Target:           d.Target,
		Tick:             d.Tick,
		ObserverPosition: geo.PointFromVector(d.ObserverPosition),
		TargetPosition:   geo.PointFromVector(d.TargetPosition),
		AimPitch:         d.Aim.Pitch,
		AimYaw:           d.Aim.Yaw,
		ExpectedPitch:    d.Expected.Pitch,
		ExpectedYaw:      d.Expected.Yaw,
	}
}

// DetectionToCore converts a GORM model.Detection to a core.Detection
func DetectionToCore(d model.Detection) core.Detection {
	return core.Detection{
		Observer:         d.Observer,
		Target:           d.Target,
		Tick:             d.Tick,
		ObserverPosition: geo.VectorFromPoint(d.ObserverPosition),
		TargetPosition:   geo.VectorFromPoint(d.TargetPosition),
		Aim:              core.Angles{Pitch: d.AimPitch, Yaw: d.AimYaw},
		Expected:         core.Angles{Pitch: d.ExpectedPitch, Yaw: d.ExpectedYaw},
	}
}

// DetectionsToGorm converts every record of the set, numbering them in insertion order
func DetectionsToGorm(set *core.DetectionSet, matchID uint) []model.Detection {
	records := set.Records()
	out := make([]model.Detection, 0, len(records))
	for i, d := range records {
		out = append(out, DetectionToGorm(d, matchID, i))
	}
	return out
}

// DetectionSetToCore rebuilds a set from rows ordered by Seq, seeded with the match roster
func DetectionSetToCore(rows []model.Detection, match core.Match) *core.DetectionSet {
	set := core.NewDetectionSet()
	set.Seed(append(append([]string(nil), match.TeamOne...), match.TeamTwo...))
	for _, row := range rows {
		set.Add(DetectionToCore(row))
	}
	return set
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
