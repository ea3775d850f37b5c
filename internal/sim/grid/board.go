package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/zyedidia/generic/mapset"
)

var ErrBadTileWidth = errors.New("tile width must be finite and positive")

// Board owns every Cell. Cells are created lazily on first lookup and live
// as long as the Board. Not safe for concurrent use; the game loop owns it.
type Board struct {
	tileWidth float64
	width     decimal.Decimal

	cells    map[CellKey]*Cell
	occupied mapset.Set[CellKey]
}

func NewBoard(tileWidth float64) (*Board, error) {
	if math.IsNaN(tileWidth) || math.IsInf(tileWidth, 0) || tileWidth <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrBadTileWidth, tileWidth)
	}
	return &Board{
		tileWidth: tileWidth,
		width:     decimal.NewFromFloat(tileWidth),
		cells:     map[CellKey]*Cell{},
		occupied:  mapset.New[CellKey](),
	}, nil
}

func (b *Board) TileWidth() float64 { return b.tileWidth }

// KeyAt quantizes a coordinate: floor(coord / tileWidth) on each axis.
// The division runs in decimal so coordinates written on a tile edge land in
// that tile instead of the one below it.
func (b *Board) KeyAt(p LatLng) CellKey {
	return CellKey{I: b.quantize(p.Lat), J: b.quantize(p.Lng)}
}

func (b *Board) quantize(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Sprintf("grid: non-finite coordinate %v", v))
	}
	q := decimal.NewFromFloat(v).Div(b.width).Floor()
	if !q.BigInt().IsInt64() {
		panic(fmt.Sprintf("grid: coordinate %v overflows the cell index", v))
	}
	return int(q.IntPart())
}

// CellAt returns the canonical cell containing p.
func (b *Board) CellAt(p LatLng) *Cell {
	return b.CellFor(b.KeyAt(p))
}

// CellFor returns the canonical cell for k, creating it if absent.
func (b *Board) CellFor(k CellKey) *Cell {
	if c, ok := b.cells[k]; ok {
		return c
	}
	c := &Cell{Key: k}
	b.cells[k] = c
	return c
}

// Lookup returns the cell for k only if it was already created.
func (b *Board) Lookup(k CellKey) (*Cell, bool) {
	c, ok := b.cells[k]
	return c, ok
}

// CellsWithinRadius returns every cell within Chebyshev distance radius of
// the cell containing center, row-major: i ascending, then j ascending.
func (b *Board) CellsWithinRadius(center LatLng, radius int) []*Cell {
	if radius < 0 {
		return nil
	}
	origin := b.KeyAt(center)
	side := 2*radius + 1
	out := make([]*Cell, 0, side*side)
	for di := -radius; di <= radius; di++ {
		for dj := -radius; dj <= radius; dj++ {
			out = append(out, b.CellFor(CellKey{I: origin.I + di, J: origin.J + dj}))
		}
	}
	return out
}

func (b *Board) Bounds(c *Cell) Bounds {
	return Bounds{
		South: b.edge(c.Key.I),
		West:  b.edge(c.Key.J),
		North: b.edge(c.Key.I + 1),
		East:  b.edge(c.Key.J + 1),
	}
}

// Center is the midpoint of the cell; it always quantizes back to the cell.
func (b *Board) Center(c *Cell) LatLng {
	half := b.width.Div(decimal.NewFromInt(2))
	lat, _ := decimal.NewFromInt(int64(c.Key.I)).Mul(b.width).Add(half).Float64()
	lng, _ := decimal.NewFromInt(int64(c.Key.J)).Mul(b.width).Add(half).Float64()
	return LatLng{Lat: lat, Lng: lng}
}

func (b *Board) edge(n int) float64 {
	v, _ := decimal.NewFromInt(int64(n)).Mul(b.width).Float64()
	return v
}

func (b *Board) SetOccupied(c *Cell, occupied bool) {
	if c.occupied == occupied {
		return
	}
	c.occupied = occupied
	if occupied {
		b.occupied.Put(c.Key)
	} else {
		b.occupied.Remove(c.Key)
	}
}

// OccupiedKeys returns the occupied cells in key order.
func (b *Board) OccupiedKeys() []CellKey {
	keys := make([]CellKey, 0, b.occupied.Size())
	b.occupied.Each(func(k CellKey) {
		keys = append(keys, k)
	})
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

func (b *Board) OccupiedCount() int { return b.occupied.Size() }

func (b *Board) KnownCells() int { return len(b.cells) }
