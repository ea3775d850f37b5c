package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadCellKey = errors.New("bad cell key")

// CellKey is the logical address of a cell on the infinite grid.
type CellKey struct {
	I int
	J int
}

// String is the "i,j" form; it doubles as the luck key and the cache id.
func (k CellKey) String() string {
	return strconv.Itoa(k.I) + "," + strconv.Itoa(k.J)
}

func (k CellKey) Less(o CellKey) bool {
	if k.I != o.I {
		return k.I < o.I
	}
	return k.J < o.J
}

func ParseCellKey(s string) (CellKey, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return CellKey{}, fmt.Errorf("%w: %q", ErrBadCellKey, s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return CellKey{}, fmt.Errorf("%w: %q", ErrBadCellKey, s)
	}
	j, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return CellKey{}, fmt.Errorf("%w: %q", ErrBadCellKey, s)
	}
	return CellKey{I: i, J: j}, nil
}

// Cell is the canonical record for one grid address. Only the Board creates
// cells; only occupancy ever changes.
type Cell struct {
	Key CellKey

	occupied bool
}

func (c *Cell) Occupied() bool { return c.occupied }

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p LatLng) Add(dLat, dLng float64) LatLng {
	return LatLng{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}

// Bounds is the geographic rectangle a cell covers.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.South && p.Lat < b.North && p.Lng >= b.West && p.Lng < b.East
}
