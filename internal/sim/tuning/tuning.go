package tuning

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Seed string `yaml:"seed" json:"seed" env:"SEED"`

	// Grid geometry, in degrees.
	TileDegrees      float64 `yaml:"tile_degrees" json:"tile_degrees" env:"TILE_DEGREES"`
	VisibilityRadius int     `yaml:"visibility_radius" json:"visibility_radius" env:"VISIBILITY_RADIUS"`
	SpawnProbability float64 `yaml:"spawn_probability" json:"spawn_probability" env:"SPAWN_PROBABILITY"`

	// MoveDegrees is the coordinate delta of one movement command.
	MoveDegrees float64 `yaml:"move_degrees" json:"move_degrees" env:"MOVE_DEGREES"`

	Origin Origin `yaml:"origin" json:"origin" envPrefix:"ORIGIN_"`

	Geolocation Geolocation `yaml:"geolocation" json:"geolocation" envPrefix:"GEO_"`
}

type Origin struct {
	Lat float64 `yaml:"lat" json:"lat" env:"LAT"`
	Lng float64 `yaml:"lng" json:"lng" env:"LNG"`
}

type Geolocation struct {
	// Enabled starts the game with the location provider subscribed.
	Enabled    bool `yaml:"enabled" json:"enabled" env:"ENABLED"`
	IntervalMs int  `yaml:"interval_ms" json:"interval_ms" env:"INTERVAL_MS"`
}

// Defaults mirror configs/tuning.yaml.
func Defaults() Tuning {
	return Tuning{
		Seed:             "this is the seed value!",
		TileDegrees:      1e-4,
		VisibilityRadius: 8,
		SpawnProbability: 0.1,
		MoveDegrees:      1e-4,
		Origin: Origin{
			Lat: 36.98949379578401,
			Lng: -122.06277128548504,
		},
		Geolocation: Geolocation{
			IntervalMs: 1000,
		},
	}
}

// Load reads path on top of Defaults, so a partial file only overrides what it names.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// ApplyEnv overrides fields from GEOCOIN_* environment variables.
func ApplyEnv(t *Tuning) error {
	if err := env.ParseWithOptions(t, env.Options{Prefix: "GEOCOIN_"}); err != nil {
		return fmt.Errorf("tuning env: %w", err)
	}
	return nil
}

var ErrInvalid = errors.New("invalid tuning")

func (t Tuning) Validate() error {
	switch {
	case !finitePositive(t.TileDegrees):
		return fmt.Errorf("%w: tile_degrees must be > 0, got %v", ErrInvalid, t.TileDegrees)
	case !finitePositive(t.MoveDegrees):
		return fmt.Errorf("%w: move_degrees must be > 0, got %v", ErrInvalid, t.MoveDegrees)
	case t.VisibilityRadius < 0:
		return fmt.Errorf("%w: visibility_radius must be >= 0, got %d", ErrInvalid, t.VisibilityRadius)
	case math.IsNaN(t.SpawnProbability) || t.SpawnProbability < 0 || t.SpawnProbability > 1:
		return fmt.Errorf("%w: spawn_probability must be in [0,1], got %v", ErrInvalid, t.SpawnProbability)
	case !finite(t.Origin.Lat) || !finite(t.Origin.Lng):
		return fmt.Errorf("%w: origin must be finite", ErrInvalid)
	case t.Geolocation.IntervalMs < 0:
		return fmt.Errorf("%w: geolocation.interval_ms must be >= 0", ErrInvalid)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finitePositive(v float64) bool { return finite(v) && v > 0 }
