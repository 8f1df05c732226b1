package arena

import "github.com/zeusync/arena/internal/core/systems/physics"

// Team identifies one combatant. It doubles as the display id.
type Team string

const (
	TeamRed    Team = "red"
	TeamPurple Team = "purple"
	TeamBlue   Team = "blue"
	TeamYellow Team = "yellow"
)

// Teams lists every team in corner order: top-left, top-right, bottom-left, bottom-right.
var Teams = [...]Team{TeamBlue, TeamYellow, TeamPurple, TeamRed}

// ParseTeam maps a display id back to a Team.
func ParseTeam(s string) (Team, bool) {
	for _, t := range Teams {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

func (t Team) String() string { return string(t) }

// Entity is the mutable state of one combatant.
//
// Vel always equals Dir scaled by Speed, and Dir is unit length. Speed, Mass
// and Radius are derived from Health and the base values.
type Entity struct {
	Team Team

	Pos physics.Vec2
	Dir physics.Vec2
	Vel physics.Vec2

	BaseSpeed  float64
	BaseMass   float64
	BaseRadius float64

	Speed  float64
	Mass   float64
	Radius float64

	Health int

	eliminated bool
}

// Eliminated reports whether the entity is waiting to be pruned.
func (e *Entity) Eliminated() bool { return e.eliminated || e.Health <= 0 }

// rescale recomputes derived attributes from health and keeps the heading.
func (e *Entity) rescale(t Tuning) {
	e.Speed = e.BaseSpeed * t.SpeedMultiplier(e.Health)
	e.Mass = t.Mass(e.BaseMass, e.Health)
	e.Radius = t.Radius(e.BaseRadius, e.Health)
	e.Vel = e.Dir.Scale(e.Speed)
}

// setHealth clamps and applies a health value. Reaching zero only flags the
// entity; it stays in the live set until the next prune.
func (e *Entity) setHealth(t Tuning, health int) {
	e.Health = t.ClampHealth(health)
	if e.Health == 0 {
		e.eliminated = true
		return
	}
	e.rescale(t)
}

// steer points the entity along dir (unit length) at its rated speed.
func (e *Entity) steer(dir physics.Vec2) {
	e.Dir = dir
	e.Vel = dir.Scale(e.Speed)
}
