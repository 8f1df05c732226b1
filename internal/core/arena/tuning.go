package arena

import (
	"math"
	"time"
)

// Tuning holds the constants that shape a match. Zero values are not usable;
// start from DefaultTuning.
type Tuning struct {
	// Health scaling
	MaxHealth     int     `yaml:"max_health" toml:"max_health"`
	SpeedDelta    float64 `yaml:"speed_delta" toml:"speed_delta"` // speed gain per missing health point
	MassDelta     float64 `yaml:"mass_delta" toml:"mass_delta"`   // mass loss per missing health point
	SizeDelta     float64 `yaml:"size_delta" toml:"size_delta"`   // radius loss per missing health point
	MinMassFactor float64 `yaml:"min_mass_factor" toml:"min_mass_factor"`
	MinSizeFactor float64 `yaml:"min_size_factor" toml:"min_size_factor"`

	// Spawn geometry, derived from the arena size
	BaseSpeedFactor  float64 `yaml:"base_speed_factor" toml:"base_speed_factor"`
	MinBaseSpeed     float64 `yaml:"min_base_speed" toml:"min_base_speed"` // px/s
	BaseMass         float64 `yaml:"base_mass" toml:"base_mass"`
	BaseRadiusFactor float64 `yaml:"base_radius_factor" toml:"base_radius_factor"`
	MinBaseRadius    float64 `yaml:"min_base_radius" toml:"min_base_radius"`
	CornerPadding    float64 `yaml:"corner_padding" toml:"corner_padding"` // added to the base radius

	// Collisions
	SeparationEpsilon float64 `yaml:"separation_epsilon" toml:"separation_epsilon"`

	// Items
	ItemSpawnInterval      time.Duration `yaml:"item_spawn_interval" toml:"item_spawn_interval"`
	ItemLifetime           time.Duration `yaml:"item_lifetime" toml:"item_lifetime"` // 0 keeps items until picked up
	HarmfulChance          float64       `yaml:"harmful_chance" toml:"harmful_chance"`
	HarmfulRadiusFactor    float64       `yaml:"harmful_radius_factor" toml:"harmful_radius_factor"`
	BeneficialRadiusFactor float64       `yaml:"beneficial_radius_factor" toml:"beneficial_radius_factor"`
	PickupNudgeFactor      float64       `yaml:"pickup_nudge_factor" toml:"pickup_nudge_factor"`
	MinPickupNudge         float64       `yaml:"min_pickup_nudge" toml:"min_pickup_nudge"`
}

// DefaultTuning returns the stock match constants.
func DefaultTuning() Tuning {
	return Tuning{
		MaxHealth:     5,
		SpeedDelta:    0.10,
		MassDelta:     0.10,
		SizeDelta:     0.10,
		MinMassFactor: 0.25,
		MinSizeFactor: 0.60,

		BaseSpeedFactor:  0.4,
		MinBaseSpeed:     250,
		BaseMass:         1,
		BaseRadiusFactor: 0.065,
		MinBaseRadius:    12,
		CornerPadding:    12,

		SeparationEpsilon: 0.01,

		ItemSpawnInterval:      3 * time.Second,
		ItemLifetime:           0,
		HarmfulChance:          0.75,
		HarmfulRadiusFactor:    0.75,
		BeneficialRadiusFactor: 0.60,
		PickupNudgeFactor:      0.15,
		MinPickupNudge:         1,
	}
}

// SpeedMultiplier grows as health drops: 1 + SpeedDelta per missing point.
func (t Tuning) SpeedMultiplier(health int) float64 {
	return 1 + t.SpeedDelta*float64(t.MaxHealth-health)
}

// Mass returns the mass for health, floored at MinMassFactor of base.
func (t Tuning) Mass(base float64, health int) float64 {
	return base * math.Max(t.MinMassFactor, 1-t.MassDelta*float64(t.MaxHealth-health))
}

// Radius returns the radius for health, floored at MinSizeFactor of base.
func (t Tuning) Radius(base float64, health int) float64 {
	return base * math.Max(t.MinSizeFactor, 1-t.SizeDelta*float64(t.MaxHealth-health))
}

// ClampHealth bounds health to [0, MaxHealth].
func (t Tuning) ClampHealth(health int) int {
	if health < 0 {
		return 0
	}
	if health > t.MaxHealth {
		return t.MaxHealth
	}
	return health
}

// BaseSpeed is shared by all entities of a match on a w×h arena.
func (t Tuning) BaseSpeed(w, h float64) float64 {
	return math.Max(t.MinBaseSpeed, math.Min(w, h)*t.BaseSpeedFactor)
}

// BaseRadius is the full-health radius on a w×h arena.
func (t Tuning) BaseRadius(w, h float64) float64 {
	return math.Max(t.MinBaseRadius, math.Floor(math.Min(w, h)*t.BaseRadiusFactor))
}
