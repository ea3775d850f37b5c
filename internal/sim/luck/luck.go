// Package luck is the seeded, deterministic pseudo-random function every
// spawn decision and coin count is derived from.
package luck

import (
	"github.com/cespare/xxhash/v2"

	"geocoin.app/internal/sim/mathx"
)

// Luck maps string keys to reproducible values in [0,1).
// A Luck is immutable after construction and safe for concurrent use.
type Luck struct {
	seed string
	salt uint64
}

func New(seed string) *Luck {
	return &Luck{seed: seed, salt: xxhash.Sum64String(seed)}
}

func (l *Luck) Seed() string { return l.seed }

// Value returns the luck of key. Same seed and key always give the same value.
func (l *Luck) Value(key string) float64 {
	d := xxhash.New()
	_, _ = d.WriteString(l.seed)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(key)
	return mathx.Unit(mathx.Mix64(d.Sum64() ^ l.salt))
}

// Below reports whether key's luck falls under p; p <= 0 never passes, p >= 1 always does.
func (l *Luck) Below(key string, p float64) bool {
	return l.Value(key) < p
}
