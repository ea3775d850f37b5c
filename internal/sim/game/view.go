package game

import (
	"geocoin.app/internal/sim/cache"
	"geocoin.app/internal/sim/grid"
)

// RenderHandle is whatever the view hands back for a rendered cache. The game
// only stores it and passes it back on update or teardown.
type RenderHandle any

// View is the map collaborator. All calls arrive on the game loop goroutine.
type View interface {
	RenderCache(b grid.Bounds, s cache.Summary) RenderHandle
	UpdateCache(h RenderHandle, s cache.Summary)
	RemoveCache(h RenderHandle)
	WalletChanged(coins int)
	Notify(code, msg string)
}

type NopView struct{}

func (NopView) RenderCache(grid.Bounds, cache.Summary) RenderHandle { return nil }
func (NopView) UpdateCache(RenderHandle, cache.Summary)             {}
func (NopView) RemoveCache(RenderHandle)                            {}
func (NopView) WalletChanged(int)                                   {}
func (NopView) Notify(string, string)                               {}
