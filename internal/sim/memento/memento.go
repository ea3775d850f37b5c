// Package memento keeps an append-only history of cache snapshots.
package memento

import (
	"encoding/json"
	"fmt"
	"time"
)

type CoinState struct {
	I      int `json:"i"`
	J      int `json:"j"`
	Serial int `json:"serial"`
}

// CacheState is one persisted cache record: {id, coinCount, lat, lng}.
// Coins carries the exact ledger so a restore reproduces provenance too.
type CacheState struct {
	ID        string      `json:"id"`
	CoinCount int         `json:"coinCount"`
	Lat       float64     `json:"lat"`
	Lng       float64     `json:"lng"`
	Coins     []CoinState `json:"coins,omitempty"`
}

// Snapshot is an immutable capture of cache state. Its fields are only
// reachable through copies.
type Snapshot struct {
	index   int
	takenAt time.Time
	states  []CacheState
}

func (s Snapshot) Index() int           { return s.index }
func (s Snapshot) TakenAt() time.Time   { return s.takenAt }
func (s Snapshot) Len() int             { return len(s.states) }
func (s Snapshot) States() []CacheState { return cloneStates(s.states) }

func (s Snapshot) TotalCoins() int {
	n := 0
	for _, st := range s.states {
		n += st.CoinCount
	}
	return n
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	states := s.states
	if states == nil {
		states = []CacheState{}
	}
	return json.Marshal(struct {
		Index   int          `json:"index"`
		TakenAt string       `json:"taken_at"`
		Caches  []CacheState `json:"caches"`
	}{
		Index:   s.index,
		TakenAt: s.takenAt.UTC().Format(time.RFC3339Nano),
		Caches:  states,
	})
}

// History is the caretaker: snapshots are appended and never mutated.
type History struct {
	now       func() time.Time
	snapshots []Snapshot
}

func NewHistory() *History {
	return &History{now: time.Now}
}

// Save deep-copies states into a new snapshot and appends it.
func (h *History) Save(states []CacheState) Snapshot {
	s := Snapshot{
		index:   len(h.snapshots),
		takenAt: h.now(),
		states:  cloneStates(states),
	}
	h.snapshots = append(h.snapshots, s)
	return s
}

// Restore returns a deep copy of the states saved at index.
// An index that was never handed out by Save is a programming error.
func (h *History) Restore(index int) []CacheState {
	if index < 0 || index >= len(h.snapshots) {
		panic(fmt.Sprintf("memento: snapshot index %d out of range [0,%d)", index, len(h.snapshots)))
	}
	return h.snapshots[index].States()
}

// Lookup is the non-panicking form of Restore for untrusted indexes.
func (h *History) Lookup(index int) (Snapshot, bool) {
	if index < 0 || index >= len(h.snapshots) {
		return Snapshot{}, false
	}
	return h.snapshots[index], true
}

func (h *History) Len() int { return len(h.snapshots) }

func (h *History) MarshalJSON() ([]byte, error) {
	out := h.snapshots
	if out == nil {
		out = []Snapshot{}
	}
	return json.Marshal(out)
}

func cloneStates(in []CacheState) []CacheState {
	if in == nil {
		return nil
	}
	out := make([]CacheState, len(in))
	for i, st := range in {
		out[i] = st
		if st.Coins != nil {
			out[i].Coins = append([]CoinState(nil), st.Coins...)
		}
	}
	return out
}
