// Package game owns the player, the board and the live caches, and keeps the
// caches aligned with the player's visibility window.
package game

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"geocoin.app/internal/sim/cache"
	"geocoin.app/internal/sim/grid"
	"geocoin.app/internal/sim/luck"
	"geocoin.app/internal/sim/memento"
	"geocoin.app/internal/sim/tuning"
)

type Config struct {
	Tuning tuning.Tuning
}

type Option func(*Game)

func WithView(v View) Option { return func(g *Game) { g.view = v } }

func WithJournal(j Journal) Option { return func(g *Game) { g.journal = j } }

func WithLogger(l logrus.FieldLogger) Option { return func(g *Game) { g.log = l } }

// Game is single-threaded: every method except Submit, Stop and Metrics must
// be called from the goroutine running Run, or from a caller that owns the
// Game outright (tests, replay).
type Game struct {
	tune tuning.Tuning

	luck    *luck.Luck
	board   *grid.Board
	store   *cache.Store
	wallet  *cache.Wallet
	history *memento.History

	player     grid.LatLng
	geoEnabled bool

	view     View
	attached map[grid.CellKey]RenderHandle
	journal  Journal
	log      logrus.FieldLogger

	seq    uint64
	passes uint64

	droppedSamples uint64

	inbox    chan Request
	stop     chan struct{}
	stopOnce sync.Once

	metrics atomic.Value
}

func New(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}
	board, err := grid.NewBoard(cfg.Tuning.TileDegrees)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	g := &Game{
		tune:       cfg.Tuning,
		luck:       luck.New(cfg.Tuning.Seed),
		board:      board,
		store:      cache.NewStore(board),
		wallet:     cache.NewWallet(),
		history:    memento.NewHistory(),
		player:     grid.LatLng{Lat: cfg.Tuning.Origin.Lat, Lng: cfg.Tuning.Origin.Lng},
		geoEnabled: cfg.Tuning.Geolocation.Enabled,
		view:       NopView{},
		attached:   map[grid.CellKey]RenderHandle{},
		inbox:      make(chan Request, 64),
		stop:       make(chan struct{}),
	}
	for _, o := range opts {
		o(g)
	}
	if g.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		g.log = l
	}
	g.view.WalletChanged(g.wallet.Coins())
	g.Reconcile()
	g.publishMetrics()
	return g, nil
}

// SetView detaches every live cache from the current view and renders it on v.
func (g *Game) SetView(v View) {
	if v == nil {
		v = NopView{}
	}
	for k, h := range g.attached {
		g.view.RemoveCache(h)
		delete(g.attached, k)
	}
	g.view = v
	for _, e := range g.store.Live() {
		g.attach(e)
	}
	g.view.WalletChanged(g.wallet.Coins())
}

func (g *Game) SetJournal(j Journal) { g.journal = j }

func (g *Game) Tuning() tuning.Tuning        { return g.tune }
func (g *Game) Seed() string                 { return g.tune.Seed }
func (g *Game) Player() grid.LatLng          { return g.player }
func (g *Game) PlayerCell() grid.CellKey     { return g.board.KeyAt(g.player) }
func (g *Game) GeoEnabled() bool             { return g.geoEnabled }
func (g *Game) Seq() uint64                  { return g.seq }
func (g *Game) Board() *grid.Board           { return g.board }
func (g *Game) Wallet() *cache.Wallet        { return g.wallet }
func (g *Game) History() *memento.History    { return g.history }
func (g *Game) Luck(key string) float64      { return g.luck.Value(key) }
func (g *Game) Caches() []*cache.CacheEntity { return g.store.Live() }

// Cache returns the live cache with id ("i,j").
func (g *Game) Cache(id string) (*cache.CacheEntity, error) {
	return g.store.Lookup(id)
}

// TotalCoins is the wallet balance plus every live cache balance.
func (g *Game) TotalCoins() int {
	return g.wallet.Coins() + g.store.TotalCoins()
}

func (g *Game) attach(e *cache.CacheEntity) {
	if _, ok := g.attached[e.Key()]; ok {
		return
	}
	g.attached[e.Key()] = g.view.RenderCache(e.Bounds, e.Summary())
}

func (g *Game) detach(k grid.CellKey) {
	h, ok := g.attached[k]
	if !ok {
		return
	}
	delete(g.attached, k)
	g.view.RemoveCache(h)
}

func (g *Game) refresh(e *cache.CacheEntity) {
	if h, ok := g.attached[e.Key()]; ok {
		g.view.UpdateCache(h, e.Summary())
	}
}
