package arena

import (
	"math"
	"time"

	"github.com/zeusync/arena/internal/core/systems/physics"
)

// ItemKind selects what a pickup does to health.
type ItemKind uint8

const (
	ItemHarmful ItemKind = iota
	ItemBeneficial
)

func (k ItemKind) String() string {
	switch k {
	case ItemHarmful:
		return "harmful"
	case ItemBeneficial:
		return "beneficial"
	default:
		return "unknown"
	}
}

// Delta is the health change applied on pickup.
func (k ItemKind) Delta() int {
	if k == ItemBeneficial {
		return 1
	}
	return -1
}

// Item is a pickup lying in the arena.
type Item struct {
	Kind   ItemKind
	Pos    physics.Vec2
	Radius float64
	Born   time.Duration // simulated time since Initialize
}

func (a *Arena) itemRadius(kind ItemKind) float64 {
	if kind == ItemHarmful {
		return a.tuning.HarmfulRadiusFactor * a.baseRadius
	}
	return a.tuning.BeneficialRadiusFactor * a.baseRadius
}

// spawnSlack absorbs the nanosecond truncation of steps like time.Second/60,
// so 180 such steps count as a full 3s interval.
const spawnSlack = time.Microsecond

// SpawnTick accumulates elapsed time and spawns one item for every full
// spawn interval crossed. A stalled frame catches up with several spawns.
// It returns the number of items spawned.
func (a *Arena) SpawnTick(elapsed time.Duration) int {
	interval := a.tuning.ItemSpawnInterval
	if interval <= spawnSlack {
		return 0
	}
	a.spawnAcc += elapsed
	spawned := 0
	for a.spawnAcc+spawnSlack >= interval {
		a.spawnItem()
		a.spawnAcc = max(a.spawnAcc-interval, 0)
		spawned++
	}
	return spawned
}

// spawnItem draws kind, then x, then y from the random source.
func (a *Arena) spawnItem() {
	kind := ItemBeneficial
	if a.rng.Float64() < a.tuning.HarmfulChance {
		kind = ItemHarmful
	}
	r := a.itemRadius(kind)
	x := r + a.rng.Float64()*(a.width-2*r)
	y := r + a.rng.Float64()*(a.height-2*r)
	a.items = append(a.items, &Item{
		Kind:   kind,
		Pos:    physics.V(x, y),
		Radius: r,
		Born:   a.elapsed,
	})
}

// expireItems drops items older than ItemLifetime. A zero lifetime keeps them.
func (a *Arena) expireItems() {
	if a.tuning.ItemLifetime <= 0 {
		return
	}
	kept := a.items[:0]
	for _, it := range a.items {
		if a.elapsed-it.Born < a.tuning.ItemLifetime {
			kept = append(kept, it)
		}
	}
	clear(a.items[len(kept):])
	a.items = kept
}

// ResolvePickups hands each item to the first living entity touching it.
// The entity list is scanned from a copy taken up front so an elimination
// during the scan cannot disturb iteration. It returns the number of items
// consumed.
func (a *Arena) ResolvePickups() int {
	live := make([]*Entity, len(a.live))
	copy(live, a.live)

	consumed := 0
	kept := a.items[:0]
	for _, it := range a.items {
		if e := touching(live, it); e != nil {
			a.pickup(e, it)
			consumed++
			continue
		}
		kept = append(kept, it)
	}
	clear(a.items[len(kept):])
	a.items = kept
	return consumed
}

func touching(live []*Entity, it *Item) *Entity {
	for _, e := range live {
		if e.Eliminated() {
			continue
		}
		if physics.Distance(e.Pos, it.Pos) <= e.Radius+it.Radius {
			return e
		}
	}
	return nil
}

func (a *Arena) pickup(e *Entity, it *Item) {
	heading := e.Vel.Normalize(e.Dir)
	e.setHealth(a.tuning, e.Health+it.Kind.Delta())
	if e.Eliminated() {
		return
	}
	e.steer(heading)
	nudge := math.Max(a.tuning.MinPickupNudge, it.Radius*a.tuning.PickupNudgeFactor)
	e.Pos = e.Pos.Add(heading.Scale(nudge))
}
