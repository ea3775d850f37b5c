package game

// Metrics is a read-only view of the game, published from the loop goroutine
// after every command and safe to read from any goroutine.
type Metrics struct {
	Seq uint64 `json:"seq"`

	KnownCells int `json:"known_cells"`
	LiveCaches int `json:"live_caches"`
	CacheCoins int `json:"cache_coins"`
	Wallet     int `json:"wallet"`
	Snapshots  int `json:"snapshots"`

	Passes         uint64 `json:"passes"`
	DroppedSamples uint64 `json:"dropped_samples"`
	InboxDepth     int    `json:"inbox_depth"`
	GeoEnabled     bool   `json:"geo_enabled"`
}

func (g *Game) Metrics() Metrics {
	if g == nil {
		return Metrics{}
	}
	m, ok := g.metrics.Load().(Metrics)
	if !ok {
		return Metrics{}
	}
	m.InboxDepth = len(g.inbox)
	return m
}

func (g *Game) publishMetrics() {
	g.metrics.Store(Metrics{
		Seq:            g.seq,
		KnownCells:     g.board.KnownCells(),
		LiveCaches:     g.store.Len(),
		CacheCoins:     g.store.TotalCoins(),
		Wallet:         g.wallet.Coins(),
		Snapshots:      g.history.Len(),
		Passes:         g.passes,
		DroppedSamples: g.droppedSamples,
		GeoEnabled:     g.geoEnabled,
	})
}
