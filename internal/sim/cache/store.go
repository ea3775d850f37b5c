package cache

import (
	"errors"
	"fmt"
	"sort"

	"geocoin.app/internal/sim/grid"
)

var (
	ErrOccupied = errors.New("cell already holds a cache")
	ErrNotLive  = errors.New("no live cache at cell")
)

// Store owns the live caches. Occupancy on the board is kept in step with
// the store: a cache exists only while its cell is occupied.
type Store struct {
	board *grid.Board
	live  map[grid.CellKey]*CacheEntity
}

func NewStore(board *grid.Board) *Store {
	return &Store{
		board: board,
		live:  map[grid.CellKey]*CacheEntity{},
	}
}

// Spawn creates a cache with a freshly minted ledger of coins.
func (s *Store) Spawn(c *grid.Cell, coins int) (*CacheEntity, error) {
	return s.SpawnWithLedger(c, Ledger(c.Key, coins))
}

// SpawnWithLedger creates a cache holding exactly ledger.
func (s *Store) SpawnWithLedger(c *grid.Cell, ledger []Coin) (*CacheEntity, error) {
	if c.Occupied() || s.live[c.Key] != nil {
		return nil, fmt.Errorf("spawn %s: %w", c.Key, ErrOccupied)
	}
	e := &CacheEntity{
		Cell:   c,
		Bounds: s.board.Bounds(c),
		Center: s.board.Center(c),
		ledger: append([]Coin(nil), ledger...),
	}
	s.live[c.Key] = e
	s.board.SetOccupied(c, true)
	return e, nil
}

// Retire drops the cache at k and clears its cell. The balance is lost.
func (s *Store) Retire(k grid.CellKey) (*CacheEntity, error) {
	e := s.live[k]
	if e == nil {
		return nil, fmt.Errorf("retire %s: %w", k, ErrNotLive)
	}
	delete(s.live, k)
	s.board.SetOccupied(e.Cell, false)
	return e, nil
}

func (s *Store) Get(k grid.CellKey) (*CacheEntity, bool) {
	e, ok := s.live[k]
	return e, ok
}

// Lookup resolves a cache id ("i,j").
func (s *Store) Lookup(id string) (*CacheEntity, error) {
	k, err := grid.ParseCellKey(id)
	if err != nil {
		return nil, err
	}
	e, ok := s.live[k]
	if !ok {
		return nil, fmt.Errorf("cache %s: %w", id, ErrNotLive)
	}
	return e, nil
}

// Live returns the live caches in key order.
func (s *Store) Live() []*CacheEntity {
	out := make([]*CacheEntity, 0, len(s.live))
	for _, e := range s.live {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

func (s *Store) Len() int { return len(s.live) }

func (s *Store) TotalCoins() int {
	n := 0
	for _, e := range s.live {
		n += len(e.ledger)
	}
	return n
}
