package replay

import (
	"github.com/OCAP2/wallscan/internal/geo"
	"github.com/OCAP2/wallscan/pkg/core"
	dem "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs"
	"github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs/common"
)

// frame is the game state of the parser on one tick.
type frame struct {
	tick    int
	players []*common.Player
	byName  map[string]*common.Player
}

func newFrame(gs dem.GameState) *frame {
	playing := gs.Participants().Playing()
	f := &frame{
		tick:    gs.IngameTick(),
		players: make([]*common.Player, 0, len(playing)),
		byName:  make(map[string]*common.Player, len(playing)),
	}
	for _, p := range playing {
		if p == nil {
			continue
		}
		f.players = append(f.players, p)
		f.byName[p.Name] = p
	}
	return f
}

func (f *frame) Tick() int {
	return f.tick
}

func (f *frame) Players() []core.PlayerSnapshot {
	out := make([]core.PlayerSnapshot, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, snapshot(p))
	}
	return out
}

func (f *frame) Spotted(observer, target string) bool {
	o, ok := f.byName[observer]
	if !ok {
		return false
	}
	t, ok := f.byName[target]
	if !ok {
		return false
	}
	return o.HasSpotted(t)
}

// snapshot converts the demo's 0..360 view directions into (-180, 180].
func snapshot(p *common.Player) core.PlayerSnapshot {
	return core.PlayerSnapshot{
		Name:     p.Name,
		Position: p.Position(),
		Aim: core.Angles{
			Pitch: geo.NormalizeAngle(float64(p.ViewDirectionY())),
			Yaw:   geo.NormalizeAngle(float64(p.ViewDirectionX())),
		},
	}
}
