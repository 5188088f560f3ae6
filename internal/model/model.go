package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Match{},
	&Detection{},
}

// Match is one scan run over a demo file
type Match struct {
	gorm.Model
	RunID         string         `json:"runId" gorm:"size:26;uniqueIndex"` // ULID
	DemoFile      string         `json:"demoFile" gorm:"size:255"`
	MapName       string         `json:"mapName" gorm:"size:127"`
	ServerName    string         `json:"serverName" gorm:"size:200"`
	PlaybackTicks int            `json:"playbackTicks"`
	StartTime     time.Time      `json:"startTime" gorm:"index:idx_match_start"`
	Roster        datatypes.JSON `json:"roster"` // {"teamOne": [...], "teamTwo": [...]}
	Detections    []Detection
}

func (*Match) TableName() string {
	return "matches"
}

// Detection is one tick on which the observer aimed at the target through an obstruction
type Detection struct {
	ID      uint  `json:"id" gorm:"primarykey;autoIncrement;"`
	MatchID uint  `json:"matchId" gorm:"index:idx_detection_match_id"`
	Match   Match `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MatchID;"`
	Seq     int   `json:"seq"` // insertion order within the match

	Observer string `json:"observer" gorm:"size:64;index:idx_detection_pair"`
	Target   string `json:"target" gorm:"size:64;index:idx_detection_pair"`
	Tick     int    `json:"tick"`

	ObserverPosition geom.Point `json:"observerPosition" gorm:"type:geometry"` // PointZ, game units
	TargetPosition   geom.Point `json:"targetPosition" gorm:"type:geometry"`
	AimPitch         float64    `json:"aimPitch"`
	AimYaw           float64    `json:"aimYaw"`
	ExpectedPitch    float64    `json:"expectedPitch"`
	ExpectedYaw      float64    `json:"expectedYaw"`
}

func (*Detection) TableName() string {
	return "detections"
}
