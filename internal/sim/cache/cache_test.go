package cache

import (
	"errors"
	"testing"

	"geocoin.app/internal/sim/grid"
)

func newStore(t *testing.T) (*grid.Board, *Store) {
	t.Helper()
	b, err := grid.NewBoard(1e-4)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	return b, NewStore(b)
}

func TestCoinCountRange(t *testing.T) {
	cases := []struct {
		luck float64
		want int
	}{
		{0, 2},
		{0.0999, 2},
		{0.125, 3},
		{0.5, 6},
		{0.999999, 9},
	}
	for _, tc := range cases {
		if got := CoinCount(tc.luck); got != tc.want {
			t.Fatalf("CoinCount(%v)=%d want %d", tc.luck, got, tc.want)
		}
	}
}

func TestLedgerSerialsUniquePerCache(t *testing.T) {
	k := grid.CellKey{I: 4, J: -9}
	coins := Ledger(k, 7)
	seen := map[string]bool{}
	for _, c := range coins {
		if c.Cell != k {
			t.Fatalf("coin minted for wrong cell: %v", c)
		}
		if seen[c.String()] {
			t.Fatalf("duplicate coin %v", c)
		}
		seen[c.String()] = true
	}
	if coins[6].String() != "4:-9#6" {
		t.Fatalf("unexpected coin id %q", coins[6].String())
	}
	if Ledger(k, 0) != nil {
		t.Fatalf("empty ledger expected")
	}
}

func TestSpawnRetireKeepsOccupancyInStep(t *testing.T) {
	b, s := newStore(t)
	c := b.CellFor(grid.CellKey{I: 1, J: 2})

	e, err := s.Spawn(c, 3)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if !c.Occupied() || e.Coins() != 3 || e.ID() != "1,2" {
		t.Fatalf("unexpected spawn state: occupied=%v coins=%d id=%s", c.Occupied(), e.Coins(), e.ID())
	}
	if _, err := s.Spawn(c, 3); !errors.Is(err, ErrOccupied) {
		t.Fatalf("expected ErrOccupied, got %v", err)
	}

	if _, err := s.Retire(c.Key); err != nil {
		t.Fatalf("Retire: %v", err)
	}
	if c.Occupied() || s.Len() != 0 {
		t.Fatalf("retire must clear occupancy")
	}
	if _, err := s.Retire(c.Key); !errors.Is(err, ErrNotLive) {
		t.Fatalf("expected ErrNotLive, got %v", err)
	}
}

func TestLookupByID(t *testing.T) {
	b, s := newStore(t)
	if _, err := s.Spawn(b.CellFor(grid.CellKey{I: -5, J: 0}), 2); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	e, err := s.Lookup("-5,0")
	if err != nil || e.Key() != (grid.CellKey{I: -5, J: 0}) {
		t.Fatalf("Lookup: %v %v", e, err)
	}
	if _, err := s.Lookup("0,0"); !errors.Is(err, ErrNotLive) {
		t.Fatalf("expected ErrNotLive, got %v", err)
	}
	if _, err := s.Lookup("nope"); !errors.Is(err, grid.ErrBadCellKey) {
		t.Fatalf("expected ErrBadCellKey, got %v", err)
	}
}

func TestTakeDepositConserveCoins(t *testing.T) {
	b, s := newStore(t)
	a, _ := s.Spawn(b.CellFor(grid.CellKey{I: 0, J: 0}), 2)
	c, _ := s.Spawn(b.CellFor(grid.CellKey{I: 0, J: 1}), 4)
	w := NewWallet()
	total := s.TotalCoins() + w.Coins()

	ops := []struct {
		take bool
		e    *CacheEntity
	}{
		{true, a}, {true, a}, {true, c}, {false, c}, {false, c}, {true, c}, {false, a},
	}
	for i, op := range ops {
		var err error
		if op.take {
			_, err = Take(op.e, w)
		} else {
			_, err = Deposit(op.e, w)
		}
		if err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		if got := s.TotalCoins() + w.Coins(); got != total {
			t.Fatalf("op %d: total=%d want %d", i, got, total)
		}
	}
}

func TestTakeFromEmptyCache(t *testing.T) {
	b, s := newStore(t)
	e, _ := s.Spawn(b.CellFor(grid.CellKey{I: 0, J: 0}), 2)
	w := NewWallet()
	first, _ := Take(e, w)
	second, _ := Take(e, w)
	if first.Serial != 1 || second.Serial != 0 {
		t.Fatalf("take must pop newest first: %v %v", first, second)
	}
	if _, err := Take(e, w); !errors.Is(err, ErrCacheEmpty) {
		t.Fatalf("expected ErrCacheEmpty, got %v", err)
	}
	if w.Coins() != 2 {
		t.Fatalf("wallet changed on empty take: %d", w.Coins())
	}
}

func TestDepositFromEmptyWallet(t *testing.T) {
	b, s := newStore(t)
	e, _ := s.Spawn(b.CellFor(grid.CellKey{I: 0, J: 0}), 2)
	if _, err := Deposit(e, NewWallet()); !errors.Is(err, ErrWalletEmpty) {
		t.Fatalf("expected ErrWalletEmpty, got %v", err)
	}
	if e.Coins() != 2 {
		t.Fatalf("cache changed on empty deposit: %d", e.Coins())
	}
}

func TestCoinsMoveBetweenCaches(t *testing.T) {
	b, s := newStore(t)
	src, _ := s.Spawn(b.CellFor(grid.CellKey{I: 7, J: 7}), 2)
	dst, _ := s.Spawn(b.CellFor(grid.CellKey{I: 8, J: 8}), 3)
	w := NewWallet()
	coin, _ := Take(src, w)
	if _, err := Deposit(dst, w); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	led := dst.Ledger()
	if led[len(led)-1] != coin {
		t.Fatalf("deposited coin must keep its provenance: got %v want %v", led[len(led)-1], coin)
	}
}

func TestSummary(t *testing.T) {
	b, s := newStore(t)
	e, _ := s.Spawn(b.CellFor(grid.CellKey{I: 3, J: -2}), 5)
	sum := e.Summary()
	if sum.ID != "3,-2" || sum.Coins != 5 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if b.CellAt(grid.LatLng{Lat: sum.Lat, Lng: sum.Lng}) != e.Cell {
		t.Fatalf("summary position must lie in its cell")
	}
}
