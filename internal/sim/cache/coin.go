package cache

import (
	"fmt"
	"math"

	"geocoin.app/internal/sim/grid"
)

const (
	MinCoins = 2
	MaxCoins = 9
)

// Coin is one minted coin. Its identity is the cell it was minted in plus
// its mint serial, which stays with the coin wherever it is moved.
type Coin struct {
	Cell   grid.CellKey `json:"cell"`
	Serial int          `json:"serial"`
}

func (c Coin) String() string {
	return fmt.Sprintf("%d:%d#%d", c.Cell.I, c.Cell.J, c.Serial)
}

// CoinCount derives the spawn balance from a luck value: floor(luck*8+2).
func CoinCount(luck float64) int {
	n := int(math.Floor(luck*8 + 2))
	if n < MinCoins {
		return MinCoins
	}
	if n > MaxCoins {
		return MaxCoins
	}
	return n
}

// Ledger mints n coins for cell k, serials 0..n-1.
func Ledger(k grid.CellKey, n int) []Coin {
	if n <= 0 {
		return nil
	}
	out := make([]Coin, n)
	for i := range out {
		out[i] = Coin{Cell: k, Serial: i}
	}
	return out
}
