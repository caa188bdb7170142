// Package config holds every tunable of a session: world geometry, spawn
// cadence and table, projectile and effect parameters, movement feel and the
// compound catalogue. Values are decoded from YAML on top of Default().
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	LogLevel string  `yaml:"log_level"`
	Seed     uint64  `yaml:"seed"`
	MaxDelta float64 `yaml:"max_delta"`

	World      WorldConfig      `yaml:"world"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Projectile ProjectileConfig `yaml:"projectile"`
	Effects    EffectsConfig    `yaml:"effects"`
	Movement   MovementConfig   `yaml:"movement"`
	Enemy      EnemyConfig      `yaml:"enemy"`
	Player     PlayerConfig     `yaml:"player"`
	Weapon     WeaponConfig     `yaml:"weapon"`
	Axe        AxeConfig        `yaml:"axe"`
}

type WorldConfig struct {
	Radius float64 `yaml:"radius"`
	// RotationPeriod is the time for one full turn of the sphere. Spawned
	// entities live exactly this long unless destroyed.
	RotationPeriod float64 `yaml:"rotation_period"`
	CameraHeight   float64 `yaml:"camera_height"`
}

type SpawnConfig struct {
	// Interval is the bucket width in whole seconds.
	Interval    int          `yaml:"interval"`
	Probability float64      `yaml:"probability"`
	Lanes       []float64    `yaml:"lanes"`
	Horizon     float64      `yaml:"horizon"`
	Altitude    float64      `yaml:"altitude"`
	Table       []SpawnEntry `yaml:"table"`
}

type SpawnEntry struct {
	Kind     string  `yaml:"kind"`
	Weight   int     `yaml:"weight"`
	Element  string  `yaml:"element,omitempty"`
	Amount   int     `yaml:"amount,omitempty"`
	Charges  int     `yaml:"charges,omitempty"`
	Compound string  `yaml:"compound,omitempty"`
	PowerUp  string  `yaml:"power_up,omitempty"`
	HalfSize float64 `yaml:"half_size,omitempty"`
}

type ProjectileConfig struct {
	Speed        float64 `yaml:"speed"`
	Acceleration float64 `yaml:"acceleration"`
	Gravity      float64 `yaml:"gravity"`
	MaxFlight    float64 `yaml:"max_flight"`
	HalfSize     float64 `yaml:"half_size"`
}

type EffectsConfig struct {
	// Mode is "stack" or "refresh".
	Mode            string  `yaml:"mode"`
	StunDuration    float64 `yaml:"stun_duration"`
	BurnPulses      int     `yaml:"burn_pulses"`
	BurnDamage      int     `yaml:"burn_damage"`
	PowerUpDuration float64 `yaml:"power_up_duration"`
}

type MovementConfig struct {
	Acceleration float64 `yaml:"acceleration"`
	Drag         float64 `yaml:"drag"`
	MaxSpeed     float64 `yaml:"max_speed"`
	TurnSpeed    float64 `yaml:"turn_speed"`
	LookSpeed    float64 `yaml:"look_speed"`
	// MaxTilt bounds the look pitch, in radians from the horizontal.
	MaxTilt float64 `yaml:"max_tilt"`
}

type EnemyConfig struct {
	Health int `yaml:"health"`
	// Speed is angular, in radians per second over the surface.
	Speed         float64 `yaml:"speed"`
	ContactDamage int     `yaml:"contact_damage"`
	Score         int     `yaml:"score"`
	HalfSize      float64 `yaml:"half_size"`
}

type PlayerConfig struct {
	Health   int     `yaml:"health"`
	HalfSize float64 `yaml:"half_size"`
}

type WeaponConfig struct {
	Cooldown         float64          `yaml:"cooldown"`
	RapidFireFactor  float64          `yaml:"rapid_fire_factor"`
	Starting         string           `yaml:"starting"`
	StartingElements map[string]int   `yaml:"starting_elements"`
	Compounds        []CompoundConfig `yaml:"compounds"`
}

type CompoundConfig struct {
	Formula string         `yaml:"formula"`
	Name    string         `yaml:"name"`
	Cost    map[string]int `yaml:"cost"`
	Unlock  map[string]int `yaml:"unlock"`
	Damage  int            `yaml:"damage"`
	Effect  string         `yaml:"effect,omitempty"`
}

type AxeConfig struct {
	SwingTime float64 `yaml:"swing_time"`
	Damage    int     `yaml:"damage"`
	Reach     float64 `yaml:"reach"`
	HalfSize  float64 `yaml:"half_size"`
}

// Default returns a playable configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Seed:     1,
		MaxDelta: 0.06,
		World: WorldConfig{
			Radius:         50,
			RotationPeriod: 60,
			CameraHeight:   2,
		},
		Spawn: SpawnConfig{
			Interval:    6,
			Probability: 1.0 / 3.0,
			Lanes:       []float64{-0.25, 0, 0.25},
			Horizon:     0.9,
			Altitude:    1,
			Table: []SpawnEntry{
				{Kind: "enemy", Weight: 5},
				{Kind: "mine", Weight: 3, Element: "Fe", Amount: 2},
				{Kind: "mine", Weight: 2, Element: "S", Amount: 1},
				{Kind: "cloud", Weight: 2, Element: "O", Amount: 1, Charges: 3},
				{Kind: "cloud", Weight: 1, Element: "H", Amount: 2, Charges: 2, PowerUp: "rapid_fire"},
				{Kind: "lab", Weight: 1, Compound: "FeS"},
			},
		},
		Projectile: ProjectileConfig{
			Speed:        40,
			Acceleration: 0.5,
			Gravity:      4,
			MaxFlight:    2,
			HalfSize:     0.4,
		},
		Effects: EffectsConfig{
			Mode:            "stack",
			StunDuration:    3,
			BurnPulses:      3,
			BurnDamage:      5,
			PowerUpDuration: 10,
		},
		Movement: MovementConfig{
			Acceleration: 1.5,
			Drag:         2,
			MaxSpeed:     0.6,
			TurnSpeed:    1.8,
			LookSpeed:    1.2,
			MaxTilt:      1.2,
		},
		Enemy: EnemyConfig{
			Health:        30,
			Speed:         0.05,
			ContactDamage: 10,
			Score:         100,
			HalfSize:      1,
		},
		Player: PlayerConfig{
			Health:   100,
			HalfSize: 1,
		},
		Weapon: WeaponConfig{
			Cooldown:        0.25,
			RapidFireFactor: 0.4,
			Starting:        "H2O",
			StartingElements: map[string]int{
				"H": 10,
				"O": 5,
			},
			Compounds: []CompoundConfig{
				{Formula: "H2O", Name: "water", Cost: map[string]int{"H": 2, "O": 1}, Damage: 10},
				{Formula: "FeS", Name: "iron sulfide", Cost: map[string]int{"Fe": 1, "S": 1}, Unlock: map[string]int{"Fe": 3, "S": 2}, Damage: 15, Effect: "stun"},
				{Formula: "SO2", Name: "sulfur dioxide", Cost: map[string]int{"S": 1, "O": 2}, Unlock: map[string]int{"S": 3, "O": 3}, Damage: 5, Effect: "burn"},
			},
		},
		Axe: AxeConfig{
			SwingTime: 0.3,
			Damage:    20,
			Reach:     2,
			HalfSize:  1,
		},
	}
}

// Decode reads YAML from r on top of the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and validates the YAML file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Compound looks up a compound by formula.
func (c *Config) Compound(formula string) (CompoundConfig, bool) {
	for _, comp := range c.Weapon.Compounds {
		if comp.Formula == formula {
			return comp, true
		}
	}
	return CompoundConfig{}, false
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.MaxDelta <= 0:
		return invalid("max_delta", "must be positive")
	case c.World.Radius <= 0:
		return invalid("world.radius", "must be positive")
	case c.World.RotationPeriod <= 0:
		return invalid("world.rotation_period", "must be positive")
	case c.Spawn.Interval <= 0:
		return invalid("spawn.interval", "must be at least one second")
	case c.Spawn.Probability < 0 || c.Spawn.Probability > 1:
		return invalid("spawn.probability", "must be within [0,1]")
	case c.Projectile.Speed <= 0:
		return invalid("projectile.speed", "must be positive")
	case c.Projectile.MaxFlight <= 0:
		return invalid("projectile.max_flight", "must be positive")
	case c.Effects.Mode != "stack" && c.Effects.Mode != "refresh":
		return invalid("effects.mode", fmt.Sprintf("unknown mode %q", c.Effects.Mode))
	case c.Movement.MaxTilt <= 0 || c.Movement.MaxTilt >= math.Pi/2:
		return invalid("movement.max_tilt", "must be within (0, pi/2)")
	}

	totalWeight := 0
	for i, entry := range c.Spawn.Table {
		switch entry.Kind {
		case "enemy", "mine", "cloud", "lab":
		default:
			return invalid(fmt.Sprintf("spawn.table[%d].kind", i), fmt.Sprintf("unknown kind %q", entry.Kind))
		}
		if entry.Weight < 0 {
			return invalid(fmt.Sprintf("spawn.table[%d].weight", i), "must not be negative")
		}
		if (entry.Kind == "mine" || entry.Kind == "cloud") && entry.Element == "" {
			return invalid(fmt.Sprintf("spawn.table[%d].element", i), "required for "+entry.Kind)
		}
		if entry.Kind == "lab" {
			if _, ok := c.Compound(entry.Compound); !ok {
				return invalid(fmt.Sprintf("spawn.table[%d].compound", i), fmt.Sprintf("unknown compound %q", entry.Compound))
			}
		}
		totalWeight += entry.Weight
	}
	if len(c.Spawn.Table) > 0 && totalWeight == 0 {
		return invalid("spawn.table", "weights sum to zero")
	}

	seen := make(map[string]bool, len(c.Weapon.Compounds))
	for i, comp := range c.Weapon.Compounds {
		if comp.Formula == "" {
			return invalid(fmt.Sprintf("weapon.compounds[%d].formula", i), "required")
		}
		if seen[comp.Formula] {
			return invalid(fmt.Sprintf("weapon.compounds[%d].formula", i), "duplicate "+comp.Formula)
		}
		seen[comp.Formula] = true
		for symbol, n := range comp.Cost {
			if n < 0 {
				return invalid(fmt.Sprintf("weapon.compounds[%d].cost.%s", i, symbol), "must not be negative")
			}
		}
	}
	if c.Weapon.Starting != "" && !seen[c.Weapon.Starting] {
		return invalid("weapon.starting", fmt.Sprintf("unknown compound %q", c.Weapon.Starting))
	}
	return nil
}

func invalid(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, reason)
}
