package game

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"geocoin.app/internal/sim/cache"
)

// Digest hashes everything a replay must reproduce: the player position, the
// geolocation flag, every live cache ledger, the wallet and the number of
// snapshots. Snapshot timestamps are left out.
func (g *Game) Digest() string {
	h := sha256.New()
	var tmp [8]byte

	h.Write([]byte(g.tune.Seed))
	digestWriteU64(h, &tmp, math.Float64bits(g.player.Lat))
	digestWriteU64(h, &tmp, math.Float64bits(g.player.Lng))
	if g.geoEnabled {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	live := g.store.Live()
	digestWriteU64(h, &tmp, uint64(len(live)))
	for _, e := range live {
		k := e.Key()
		digestWriteI64(h, &tmp, int64(k.I))
		digestWriteI64(h, &tmp, int64(k.J))
		digestCoins(h, &tmp, e.Ledger())
	}
	digestCoins(h, &tmp, g.wallet.Held())
	digestWriteU64(h, &tmp, uint64(g.history.Len()))

	return hex.EncodeToString(h.Sum(nil))
}

func digestCoins(h hash.Hash, tmp *[8]byte, coins []cache.Coin) {
	digestWriteU64(h, tmp, uint64(len(coins)))
	for _, c := range coins {
		digestWriteI64(h, tmp, int64(c.Cell.I))
		digestWriteI64(h, tmp, int64(c.Cell.J))
		digestWriteI64(h, tmp, int64(c.Serial))
	}
}

func digestWriteU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hash.Hash, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}
