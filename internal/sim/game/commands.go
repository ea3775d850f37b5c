package game

import (
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"geocoin.app/internal/protocol"
	"geocoin.app/internal/sim/cache"
	"geocoin.app/internal/sim/grid"
	"geocoin.app/internal/sim/memento"
)

const (
	msgCacheEmpty  = "This cache is empty!"
	msgWalletEmpty = "You don't have any coins!"
)

// Result is what one command did. Rejections are results, not errors: OK is
// false and Code holds a protocol error code.
type Result struct {
	Seq  uint64 `json:"seq"`
	Type string `json:"type"`

	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	Coin       *cache.Coin `json:"coin,omitempty"`
	Wallet     int         `json:"wallet"`
	CacheCoins int         `json:"cache_coins,omitempty"`
	Snapshot   *int        `json:"snapshot,omitempty"`
	Diff       *Diff       `json:"diff,omitempty"`

	Digest string `json:"digest"`
}

// Apply runs one command to completion and journals it, rejected or not.
func (g *Game) Apply(cmd protocol.Command) Result {
	g.seq++
	res := g.dispatch(cmd)
	res.Seq = g.seq
	res.Type = cmd.Type
	res.Wallet = g.wallet.Coins()
	res.Digest = g.Digest()

	fields := logrus.Fields{"seq": res.Seq, "type": cmd.Type}
	if res.OK {
		g.log.WithFields(fields).Debug("command")
	} else {
		fields["code"] = res.Code
		g.log.WithFields(fields).Info(res.Message)
	}

	g.record(cmd, res)
	g.publishMetrics()
	return res
}

func (g *Game) dispatch(cmd protocol.Command) Result {
	switch cmd.Type {
	case protocol.TypeMove:
		return g.move(cmd.Dir)
	case protocol.TypeLocate:
		return g.locate(cmd.Lat, cmd.Lng)
	case protocol.TypeTake:
		return g.take(cmd.CacheID)
	case protocol.TypeDeposit:
		return g.deposit(cmd.CacheID)
	case protocol.TypeSave:
		return g.save()
	case protocol.TypeRestore:
		return g.restore(cmd.Index)
	case protocol.TypeGeoToggle:
		g.geoEnabled = !g.geoEnabled
		return Result{OK: true}
	default:
		return reject(protocol.ErrBadRequest, "unknown command type "+cmd.Type)
	}
}

func reject(code, msg string) Result {
	return Result{Code: code, Message: msg}
}

func (g *Game) move(dir string) Result {
	step := g.tune.MoveDegrees
	var next grid.LatLng
	switch dir {
	case protocol.DirUp:
		next = g.player.Add(step, 0)
	case protocol.DirDown:
		next = g.player.Add(-step, 0)
	case protocol.DirLeft:
		next = g.player.Add(0, -step)
	case protocol.DirRight:
		next = g.player.Add(0, step)
	default:
		return reject(protocol.ErrBadRequest, "bad direction "+dir)
	}
	return g.moveTo(next)
}

func (g *Game) locate(lat, lng float64) Result {
	if !g.geoEnabled {
		return reject(protocol.ErrGeoDisabled, "geolocation is off")
	}
	return g.moveTo(grid.LatLng{Lat: lat, Lng: lng})
}

func (g *Game) moveTo(p grid.LatLng) Result {
	if !finite(p.Lat) || !finite(p.Lng) {
		return reject(protocol.ErrBadCoordinate, "coordinate must be finite")
	}
	if math.Abs(p.Lat) > 90 || math.Abs(p.Lng) > 180 {
		return reject(protocol.ErrBadCoordinate, "coordinate out of range")
	}
	g.player = p
	d := g.Reconcile()
	return Result{OK: true, Diff: &d}
}

func (g *Game) take(id string) Result {
	e, res, ok := g.resolve(id)
	if !ok {
		return res
	}
	coin, err := cache.Take(e, g.wallet)
	if err != nil {
		g.view.Notify(protocol.ErrCacheEmpty, msgCacheEmpty)
		return Result{Code: protocol.ErrCacheEmpty, Message: msgCacheEmpty}
	}
	g.refresh(e)
	g.view.WalletChanged(g.wallet.Coins())
	return Result{OK: true, Coin: &coin, CacheCoins: e.Coins()}
}

func (g *Game) deposit(id string) Result {
	e, res, ok := g.resolve(id)
	if !ok {
		return res
	}
	coin, err := cache.Deposit(e, g.wallet)
	if err != nil {
		g.view.Notify(protocol.ErrWalletEmpty, msgWalletEmpty)
		return Result{Code: protocol.ErrWalletEmpty, Message: msgWalletEmpty, CacheCoins: e.Coins()}
	}
	g.refresh(e)
	g.view.WalletChanged(g.wallet.Coins())
	return Result{OK: true, Coin: &coin, CacheCoins: e.Coins()}
}

func (g *Game) resolve(id string) (*cache.CacheEntity, Result, bool) {
	e, err := g.store.Lookup(id)
	switch {
	case errors.Is(err, grid.ErrBadCellKey):
		return nil, reject(protocol.ErrBadRequest, err.Error()), false
	case err != nil:
		return nil, reject(protocol.ErrNotFound, err.Error()), false
	}
	return e, Result{}, true
}

func (g *Game) save() Result {
	snap := g.history.Save(g.captureStates())
	if r, ok := g.journal.(SnapshotRecorder); ok {
		r.RecordSnapshot(snap)
	}
	idx := snap.Index()
	return Result{OK: true, Snapshot: &idx}
}

func (g *Game) captureStates() []memento.CacheState {
	live := g.store.Live()
	out := make([]memento.CacheState, 0, len(live))
	for _, e := range live {
		s := e.Summary()
		st := memento.CacheState{ID: s.ID, CoinCount: s.Coins, Lat: s.Lat, Lng: s.Lng}
		for _, c := range e.Ledger() {
			st.Coins = append(st.Coins, memento.CoinState{I: c.Cell.I, J: c.Cell.J, Serial: c.Serial})
		}
		out = append(out, st)
	}
	return out
}

// restore swaps the live caches for the ones saved in the snapshot, then
// reconciles so the window around the current position is honoured.
func (g *Game) restore(index int) Result {
	if _, ok := g.history.Lookup(index); !ok {
		return reject(protocol.ErrNotFound, "no snapshot at that index")
	}
	states := g.history.Restore(index)

	for _, e := range g.store.Live() {
		g.detach(e.Key())
		if _, err := g.store.Retire(e.Key()); err != nil {
			g.log.WithError(err).Error("restore retire")
		}
	}
	for _, st := range states {
		k, err := grid.ParseCellKey(st.ID)
		if err != nil {
			g.log.WithError(err).WithField("id", st.ID).Error("restore: bad cache id")
			continue
		}
		ledger := cache.Ledger(k, st.CoinCount)
		if st.Coins != nil {
			ledger = make([]cache.Coin, 0, len(st.Coins))
			for _, c := range st.Coins {
				ledger = append(ledger, cache.Coin{Cell: grid.CellKey{I: c.I, J: c.J}, Serial: c.Serial})
			}
		}
		if _, err := g.store.SpawnWithLedger(g.board.CellFor(k), ledger); err != nil {
			g.log.WithError(err).WithField("id", st.ID).Error("restore spawn")
		}
	}

	d := g.Reconcile()
	idx := index
	return Result{OK: true, Snapshot: &idx, Diff: &d}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
