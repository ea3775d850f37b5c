package game

import (
	"errors"
	"fmt"
)

var ErrDigestMismatch = errors.New("digest mismatch")

// Replay rebuilds a game from a journal header and re-applies its entries,
// checking every digest on the way. It returns the rebuilt game and the
// number of entries verified.
func Replay(h JournalHeader, entries []JournalEntry, opts ...Option) (*Game, int, error) {
	g, err := New(Config{Tuning: h.Tuning}, opts...)
	if err != nil {
		return nil, 0, err
	}
	if h.InitialDigest != "" && g.Digest() != h.InitialDigest {
		return g, 0, fmt.Errorf("%w at start: got=%s want=%s", ErrDigestMismatch, g.Digest(), h.InitialDigest)
	}
	for i, e := range entries {
		if e.Seq != g.seq+1 {
			return g, i, fmt.Errorf("seq gap: want=%d got=%d", g.seq+1, e.Seq)
		}
		res := g.Apply(e.Command)
		if res.OK != e.OK || res.Code != e.Code {
			return g, i, fmt.Errorf("seq %d: outcome ok=%v code=%s, journal ok=%v code=%s", e.Seq, res.OK, res.Code, e.OK, e.Code)
		}
		if res.Digest != e.Digest {
			return g, i, fmt.Errorf("%w at seq %d: got=%s want=%s", ErrDigestMismatch, e.Seq, res.Digest, e.Digest)
		}
	}
	return g, len(entries), nil
}
