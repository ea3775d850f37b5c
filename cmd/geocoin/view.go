package main

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"geocoin.app/internal/sim/cache"
	"geocoin.app/internal/sim/game"
	"geocoin.app/internal/sim/grid"
)

// termView prints view calls as lines and remembers what is on screen so the
// prompt can list it. Render calls come from the game loop; listing comes
// from the prompt goroutine.
type termView struct {
	out   io.Writer
	quiet bool

	mu      sync.Mutex
	next    int
	visible map[int]cache.Summary
	wallet  int
}

func newTermView(out io.Writer, quiet bool) *termView {
	return &termView{out: out, quiet: quiet, visible: map[int]cache.Summary{}}
}

func (v *termView) RenderCache(b grid.Bounds, s cache.Summary) game.RenderHandle {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.next++
	v.visible[v.next] = s
	if !v.quiet {
		fmt.Fprintf(v.out, "+ cache %s coins=%d [%.6f,%.6f]-[%.6f,%.6f]\n", s.ID, s.Coins, b.South, b.West, b.North, b.East)
	}
	return v.next
}

func (v *termView) UpdateCache(h game.RenderHandle, s cache.Summary) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := h.(int)
	if !ok {
		return
	}
	v.visible[id] = s
	fmt.Fprintf(v.out, "~ cache %s coins=%d\n", s.ID, s.Coins)
}

func (v *termView) RemoveCache(h game.RenderHandle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := h.(int)
	if !ok {
		return
	}
	s := v.visible[id]
	delete(v.visible, id)
	if !v.quiet {
		fmt.Fprintf(v.out, "- cache %s\n", s.ID)
	}
}

func (v *termView) WalletChanged(coins int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wallet = coins
	fmt.Fprintf(v.out, "wallet: %d coins\n", coins)
}

func (v *termView) Notify(code, msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "! %s (%s)\n", msg, code)
}

func (v *termView) list(w io.Writer) {
	v.mu.Lock()
	out := make([]cache.Summary, 0, len(v.visible))
	for _, s := range v.visible {
		out = append(out, s)
	}
	v.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, _ := grid.ParseCellKey(out[i].ID)
		b, _ := grid.ParseCellKey(out[j].ID)
		return a.Less(b)
	})
	for _, s := range out {
		fmt.Fprintf(w, "%-14s coins=%d at %.7f,%.7f\n", s.ID, s.Coins, s.Lat, s.Lng)
	}
	fmt.Fprintf(w, "%d caches in view\n", len(out))
}
