package game

import (
	"context"
	"errors"

	"geocoin.app/internal/protocol"
	"geocoin.app/internal/sim/location"
)

var ErrStopped = errors.New("game stopped")

type Request struct {
	Cmd  protocol.Command
	Resp chan Result
}

func (g *Game) Inbox() chan<- Request { return g.inbox }

// Stop ends Run. It is safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
}

// Run applies commands and location samples one at a time until ctx is done
// or Stop is called. Samples arriving while geolocation is off are dropped.
// A nil or closed samples channel is simply never selected.
func (g *Game) Run(ctx context.Context, samples <-chan location.Sample) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-g.stop:
			return nil
		case req := <-g.inbox:
			res := g.Apply(req.Cmd)
			if req.Resp != nil {
				select {
				case req.Resp <- res:
				default:
				}
			}
		case s, ok := <-samples:
			if !ok {
				samples = nil
				continue
			}
			if !g.geoEnabled {
				g.droppedSamples++
				g.publishMetrics()
				continue
			}
			g.Apply(protocol.Locate(s.Lat, s.Lng))
		}
	}
}

// Submit hands cmd to the loop and waits for its result.
func (g *Game) Submit(ctx context.Context, cmd protocol.Command) (Result, error) {
	resp := make(chan Result, 1)
	select {
	case g.inbox <- Request{Cmd: cmd, Resp: resp}:
	case <-g.stop:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case res := <-resp:
		return res, nil
	case <-g.stop:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
