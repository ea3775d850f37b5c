package grid

import (
	"errors"
	"math"
	"testing"
)

func newBoard(t *testing.T, w float64) *Board {
	t.Helper()
	b, err := NewBoard(w)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	return b
}

func TestNewBoardRejectsBadWidth(t *testing.T) {
	for _, w := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewBoard(w); !errors.Is(err, ErrBadTileWidth) {
			t.Fatalf("NewBoard(%v): expected ErrBadTileWidth, got %v", w, err)
		}
	}
}

func TestCellAtIdentity(t *testing.T) {
	b := newBoard(t, 1e-4)
	a := b.CellAt(LatLng{Lat: 36.98949379578401, Lng: -122.06277128548504})
	c := b.CellAt(LatLng{Lat: 36.98941, Lng: -122.06271})
	if a != c {
		t.Fatalf("expected same canonical cell, got %v and %v", a.Key, c.Key)
	}
	if a.Key != (CellKey{I: 369894, J: -1220628}) {
		t.Fatalf("unexpected key %v", a.Key)
	}
	if b.KnownCells() != 1 {
		t.Fatalf("known cells=%d want 1", b.KnownCells())
	}
}

func TestCellAtTileEdgesAreExact(t *testing.T) {
	b := newBoard(t, 1e-4)
	cases := []struct {
		p    LatLng
		want CellKey
	}{
		{LatLng{Lat: 0.0003, Lng: 0.0007}, CellKey{I: 3, J: 7}},
		{LatLng{Lat: -0.0003, Lng: -0.00005}, CellKey{I: -3, J: -1}},
		{LatLng{Lat: 0, Lng: -0}, CellKey{I: 0, J: 0}},
	}
	for _, tc := range cases {
		if got := b.KeyAt(tc.p); got != tc.want {
			t.Fatalf("KeyAt(%v)=%v want %v", tc.p, got, tc.want)
		}
	}
}

func TestCellAtPanicsOnNaN(t *testing.T) {
	b := newBoard(t, 1)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on NaN coordinate")
		}
	}()
	b.CellAt(LatLng{Lat: math.NaN(), Lng: 0})
}

func TestKeyAtPanicsOnIndexOverflow(t *testing.T) {
	b := newBoard(t, 1e-4)
	for _, lat := range []float64{1e30, -1e30} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for lat %v", lat)
				}
			}()
			b.KeyAt(LatLng{Lat: lat})
		}()
	}
}

func TestCellsWithinRadiusOrderAndCoverage(t *testing.T) {
	b := newBoard(t, 1)
	cells := b.CellsWithinRadius(LatLng{Lat: 0.5, Lng: 0.5}, 1)
	want := []CellKey{
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 0}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	}
	if len(cells) != len(want) {
		t.Fatalf("got %d cells want %d", len(cells), len(want))
	}
	for i, c := range cells {
		if c.Key != want[i] {
			t.Fatalf("cell[%d]=%v want %v", i, c.Key, want[i])
		}
	}
	// Negative indices are part of the window; no quadrant clipping.
	if b.CellFor(CellKey{I: -1, J: -1}) != cells[0] {
		t.Fatalf("expected canonical cell reuse")
	}
	if n := len(b.CellsWithinRadius(LatLng{}, 3)); n != 49 {
		t.Fatalf("radius 3 window=%d want 49", n)
	}
	if b.CellsWithinRadius(LatLng{}, -1) != nil {
		t.Fatalf("negative radius must be empty")
	}
}

func TestBoundsAndCenter(t *testing.T) {
	b := newBoard(t, 1e-4)
	c := b.CellFor(CellKey{I: 3, J: -2})
	bb := b.Bounds(c)
	if bb.South != 0.0003 || bb.North != 0.0004 || bb.West != -0.0002 || bb.East != -0.0001 {
		t.Fatalf("unexpected bounds %+v", bb)
	}
	center := b.Center(c)
	if !bb.Contains(center) {
		t.Fatalf("center %+v outside bounds %+v", center, bb)
	}
	if b.CellAt(center) != c {
		t.Fatalf("center must quantize back to its cell")
	}
}

func TestOccupancy(t *testing.T) {
	b := newBoard(t, 1)
	c1 := b.CellFor(CellKey{I: 2, J: 1})
	c2 := b.CellFor(CellKey{I: -1, J: 5})
	b.SetOccupied(c1, true)
	b.SetOccupied(c2, true)
	b.SetOccupied(c2, true)
	if !c1.Occupied() || b.OccupiedCount() != 2 {
		t.Fatalf("expected two occupied cells, got %d", b.OccupiedCount())
	}
	keys := b.OccupiedKeys()
	if keys[0] != c2.Key || keys[1] != c1.Key {
		t.Fatalf("occupied keys not sorted: %v", keys)
	}
	b.SetOccupied(c1, false)
	if c1.Occupied() || b.OccupiedCount() != 1 {
		t.Fatalf("expected one occupied cell after clear")
	}
	if _, ok := b.Lookup(CellKey{I: 2, J: 1}); !ok {
		t.Fatalf("cells are never destroyed")
	}
}

func TestParseCellKey(t *testing.T) {
	k, err := ParseCellKey(" -3, 12")
	if err != nil || k != (CellKey{I: -3, J: 12}) {
		t.Fatalf("ParseCellKey: %v %v", k, err)
	}
	if k.String() != "-3,12" {
		t.Fatalf("String=%q", k.String())
	}
	for _, s := range []string{"", "1", "a,b", "1,2,3"} {
		if _, err := ParseCellKey(s); !errors.Is(err, ErrBadCellKey) {
			t.Fatalf("ParseCellKey(%q): expected ErrBadCellKey, got %v", s, err)
		}
	}
}
