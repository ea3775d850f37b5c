// Package location feeds periodic (lat, lng) samples into the game loop.
package location

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Sample struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// LoadSamples reads a YAML list of samples:
//
//	- {lat: 36.9895, lng: -122.0628}
func LoadSamples(path string) ([]Sample, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []Sample
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Replay plays back recorded samples at a fixed cadence. It stands in for a
// device location provider.
type Replay struct {
	Samples  []Sample
	Interval time.Duration
	// Loop restarts from the first sample after the last one.
	Loop bool
}

// Start emits samples until they run out or ctx is cancelled, then closes
// the channel. Cancelling is how a consumer unsubscribes.
func (r Replay) Start(ctx context.Context) <-chan Sample {
	out := make(chan Sample)
	go func() {
		defer close(out)
		if len(r.Samples) == 0 {
			return
		}
		interval := r.Interval
		if interval <= 0 {
			interval = time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			if i == len(r.Samples) {
				if !r.Loop {
					return
				}
				i = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			select {
			case <-ctx.Done():
				return
			case out <- r.Samples[i]:
			}
		}
	}()
	return out
}
