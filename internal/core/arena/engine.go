// Package arena implements the four-team arena match: entity motion, elastic
// collisions, item pickups and elimination.
//
// An Arena is not safe for concurrent use. It is owned by a single stepping
// goroutine; other goroutines read Snapshot and Frame copies.
package arena

import (
	"math"
	"time"

	"github.com/zeusync/arena/internal/core/systems/physics"
)

// Rand is the random source used for item spawns. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// defaultNormal is used when two centers coincide.
var defaultNormal = physics.V(1, 0)

// Arena owns the authoritative entity and item lists for one match.
type Arena struct {
	tuning Tuning
	rng    Rand

	width, height float64
	baseRadius    float64

	live  []*Entity
	items []*Item

	spawnAcc time.Duration
	elapsed  time.Duration
	steps    uint64

	winnerReported bool
}

// New creates an empty arena. Call Initialize before stepping.
func New(tuning Tuning, rng Rand) *Arena {
	return &Arena{tuning: tuning, rng: rng}
}

// Reseed replaces the random source, typically once per match.
func (a *Arena) Reseed(rng Rand) { a.rng = rng }

// Tuning returns the constants the arena was built with.
func (a *Arena) Tuning() Tuning { return a.tuning }

// Initialize places one entity per team in the corners, each aimed at the
// center at full health, and clears items and the winner guard.
func (a *Arena) Initialize(w, h float64) {
	a.width, a.height = w, h
	a.baseRadius = a.tuning.BaseRadius(w, h)

	pad := a.baseRadius + a.tuning.CornerPadding
	center := physics.V(w/2, h/2)
	corners := [len(Teams)]physics.Vec2{
		physics.V(pad, pad),
		physics.V(w-pad, pad),
		physics.V(pad, h-pad),
		physics.V(w-pad, h-pad),
	}
	speed := a.tuning.BaseSpeed(w, h)

	clear(a.live)
	a.live = a.live[:0]
	for i, team := range Teams {
		pos := corners[i]
		e := &Entity{
			Team:       team,
			Pos:        pos,
			Dir:        center.Sub(pos).Normalize(defaultNormal),
			BaseSpeed:  speed,
			BaseMass:   a.tuning.BaseMass,
			BaseRadius: a.baseRadius,
			Health:     a.tuning.MaxHealth,
		}
		e.rescale(a.tuning)
		a.live = append(a.live, e)
	}

	a.ClearItems()
	a.elapsed = 0
	a.steps = 0
	a.winnerReported = false
}

// ClearItems removes every item and resets the spawn accumulator.
func (a *Arena) ClearItems() {
	clear(a.items)
	a.items = a.items[:0]
	a.spawnAcc = 0
}

// Step advances the match by dt: motion and wall bounces, pairwise
// collisions, item spawns and pickups, then pruning. It reports the winner
// when this step left exactly one entity standing.
func (a *Arena) Step(dt time.Duration) (Team, bool) {
	a.steps++
	a.elapsed += dt
	secs := dt.Seconds()

	for _, e := range a.live {
		if e.Eliminated() {
			continue
		}
		e.Pos = e.Pos.Add(e.Vel.Scale(secs))
		a.bounce(e)
	}

	for i := 0; i < len(a.live); i++ {
		for j := i + 1; j < len(a.live); j++ {
			p, q := a.live[i], a.live[j]
			if p.Eliminated() || q.Eliminated() {
				continue
			}
			a.collide(p, q)
		}
	}

	a.SpawnTick(dt)
	a.expireItems()
	a.ResolvePickups()
	return a.Prune()
}

// bounce reflects e off any wall it crossed. Each wall is handled
// independently so a corner hit flips both axes.
func (a *Arena) bounce(e *Entity) {
	if e.Pos.X-e.Radius < 0 {
		e.Pos.X = e.Radius
		e.Vel.X, e.Dir.X = math.Abs(e.Vel.X), math.Abs(e.Dir.X)
	}
	if e.Pos.X+e.Radius > a.width {
		e.Pos.X = a.width - e.Radius
		e.Vel.X, e.Dir.X = -math.Abs(e.Vel.X), -math.Abs(e.Dir.X)
	}
	if e.Pos.Y-e.Radius < 0 {
		e.Pos.Y = e.Radius
		e.Vel.Y, e.Dir.Y = math.Abs(e.Vel.Y), math.Abs(e.Dir.Y)
	}
	if e.Pos.Y+e.Radius > a.height {
		e.Pos.Y = a.height - e.Radius
		e.Vel.Y, e.Dir.Y = -math.Abs(e.Vel.Y), -math.Abs(e.Dir.Y)
	}
}

// collide separates an overlapping pair and exchanges the normal components
// of their velocities. Both leave at their own rated speed.
func (a *Arena) collide(p, q *Entity) bool {
	delta := q.Pos.Sub(p.Pos)
	dist := delta.Len()
	overlap := p.Radius + q.Radius - dist
	if overlap <= 0 {
		return false
	}

	n := defaultNormal
	if dist > 0 {
		n = delta.Scale(1 / dist)
	}
	shift := overlap/2 + a.tuning.SeparationEpsilon
	p.Pos = p.Pos.Sub(n.Scale(shift))
	q.Pos = q.Pos.Add(n.Scale(shift))

	vp, vq := Elastic(p.Mass, p.Vel, q.Mass, q.Vel, n)
	p.steer(vp.Normalize(p.Dir))
	q.steer(vq.Normalize(q.Dir))
	return true
}

// Elastic applies the 1-D elastic collision formula along the unit normal n.
// Tangential components pass through unchanged. Momentum m1*v1 + m2*v2 is
// conserved.
func Elastic(m1 float64, v1 physics.Vec2, m2 float64, v2 physics.Vec2, n physics.Vec2) (physics.Vec2, physics.Vec2) {
	t := n.Perp()
	v1n, v1t := v1.Dot(n), v1.Dot(t)
	v2n, v2t := v2.Dot(n), v2.Dot(t)

	sum := m1 + m2
	v1nOut := (v1n*(m1-m2) + 2*m2*v2n) / sum
	v2nOut := (v2n*(m2-m1) + 2*m1*v1n) / sum

	return n.Scale(v1nOut).Add(t.Scale(v1t)), n.Scale(v2nOut).Add(t.Scale(v2t))
}

// Resize rescales positions to a w×h arena. Radii scale with the shorter
// side; headings and speeds are kept.
func (a *Arena) Resize(w, h float64) {
	if w <= 0 || h <= 0 || a.width <= 0 || a.height <= 0 {
		return
	}
	if w == a.width && h == a.height {
		return
	}
	sx, sy := w/a.width, h/a.height
	k := math.Min(w, h) / math.Min(a.width, a.height)

	a.width, a.height = w, h
	a.baseRadius *= k
	for _, e := range a.live {
		e.Pos = e.Pos.Mul(sx, sy)
		e.BaseRadius *= k
		e.Radius = a.tuning.Radius(e.BaseRadius, e.Health)
	}
	for _, it := range a.items {
		it.Pos = it.Pos.Mul(sx, sy)
		it.Radius *= k
	}
}

// SetHealth overrides the health of a team still in the live set.
func (a *Arena) SetHealth(team Team, health int) bool {
	for _, e := range a.live {
		if e.Team == team {
			e.setHealth(a.tuning, health)
			return true
		}
	}
	return false
}

func (a *Arena) Width() float64         { return a.width }
func (a *Arena) Height() float64        { return a.height }
func (a *Arena) BaseRadius() float64    { return a.baseRadius }
func (a *Arena) Steps() uint64          { return a.steps }
func (a *Arena) Elapsed() time.Duration { return a.elapsed }
func (a *Arena) LiveCount() int         { return len(a.live) }
func (a *Arena) ItemCount() int         { return len(a.items) }
func (a *Arena) WinnerReported() bool   { return a.winnerReported }
