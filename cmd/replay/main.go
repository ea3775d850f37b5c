package main

import (
	"flag"
	"fmt"
	"os"

	persistlog "geocoin.app/internal/persistence/log"
	"geocoin.app/internal/sim/game"
)

func main() {
	var (
		runDir = flag.String("run", "", "run directory containing journal-*.jsonl.zst")
		toSeq  = flag.Uint64("to_seq", 0, "stop after seq (inclusive, optional)")
	)
	flag.Parse()

	if *runDir == "" {
		fmt.Fprintln(os.Stderr, "missing -run")
		os.Exit(2)
	}

	header, entries, err := persistlog.ReadJournal(*runDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read journal:", err)
		os.Exit(1)
	}
	if *toSeq != 0 && *toSeq < uint64(len(entries)) {
		entries = entries[:*toSeq]
	}

	fmt.Printf("journal v%s run=%s seed=%q tile=%v radius=%d p=%v entries=%d\n",
		header.Version, header.RunID, header.Tuning.Seed, header.Tuning.TileDegrees,
		header.Tuning.VisibilityRadius, header.Tuning.SpawnProbability, len(entries))

	g, checked, err := game.Replay(header, entries)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	m := g.Metrics()
	fmt.Printf("replay ok: checked=%d commands live=%d wallet=%d snapshots=%d digest=%s\n",
		checked, m.LiveCaches, m.Wallet, m.Snapshots, g.Digest())
}
