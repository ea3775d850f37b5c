package cache

import "geocoin.app/internal/sim/grid"

// CacheEntity is a spawned cache bound to one occupied cell.
type CacheEntity struct {
	Cell   *grid.Cell
	Bounds grid.Bounds
	Center grid.LatLng

	ledger []Coin
}

func (e *CacheEntity) ID() string        { return e.Cell.Key.String() }
func (e *CacheEntity) Key() grid.CellKey { return e.Cell.Key }
func (e *CacheEntity) Coins() int        { return len(e.ledger) }

// Ledger returns a copy of the coins currently held, oldest first.
func (e *CacheEntity) Ledger() []Coin {
	return append([]Coin(nil), e.ledger...)
}

// Summary is the view- and snapshot-facing projection of a cache.
type Summary struct {
	ID    string  `json:"id"`
	Coins int     `json:"coinCount"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

func (e *CacheEntity) Summary() Summary {
	return Summary{
		ID:    e.ID(),
		Coins: e.Coins(),
		Lat:   e.Center.Lat,
		Lng:   e.Center.Lng,
	}
}
