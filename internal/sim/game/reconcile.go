package game

import (
	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"geocoin.app/internal/sim/cache"
	"geocoin.app/internal/sim/grid"
)

// Diff reports what one reconciliation pass changed, each list in key order.
type Diff struct {
	Spawned []grid.CellKey `json:"spawned,omitempty"`
	Retired []grid.CellKey `json:"retired,omitempty"`
	Kept    []grid.CellKey `json:"kept,omitempty"`
}

func (d Diff) Empty() bool { return len(d.Spawned) == 0 && len(d.Retired) == 0 }

// Reconcile aligns the live caches with the window around the player.
// Caches outside the window are retired, their balances dropped. Unoccupied
// cells inside it spawn a cache when their luck falls under the spawn
// probability. Caches still in range are left alone and re-attached to the
// view if they lost their render handle.
func (g *Game) Reconcile() Diff {
	g.passes++
	window := g.board.CellsWithinRadius(g.player, g.tune.VisibilityRadius)
	inRange := mapset.New[grid.CellKey]()
	for _, c := range window {
		inRange.Put(c.Key)
	}

	var d Diff
	for _, k := range g.board.OccupiedKeys() {
		if inRange.Has(k) {
			continue
		}
		g.detach(k)
		if _, err := g.store.Retire(k); err != nil {
			// Occupancy and store disagree; clear the cell so the next pass can respawn it.
			g.log.WithError(err).WithField("cell", k.String()).Error("retire")
			if c, ok := g.board.Lookup(k); ok {
				g.board.SetOccupied(c, false)
			}
			continue
		}
		d.Retired = append(d.Retired, k)
	}

	for _, c := range window {
		if e, ok := g.store.Get(c.Key); ok {
			g.attach(e)
			d.Kept = append(d.Kept, c.Key)
			continue
		}
		key := c.Key.String()
		if !g.luck.Below(key, g.tune.SpawnProbability) {
			continue
		}
		e, err := g.store.Spawn(c, cache.CoinCount(g.luck.Value(key)))
		if err != nil {
			g.log.WithError(err).WithField("cell", key).Error("spawn")
			continue
		}
		g.attach(e)
		d.Spawned = append(d.Spawned, c.Key)
	}

	if !d.Empty() {
		g.log.WithFields(logrus.Fields{
			"pass":    g.passes,
			"spawned": len(d.Spawned),
			"retired": len(d.Retired),
			"live":    g.store.Len(),
		}).Debug("reconcile")
	}
	return d
}
