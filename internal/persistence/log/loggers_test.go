package log

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"geocoin.app/internal/protocol"
	"geocoin.app/internal/sim/game"
	"geocoin.app/internal/sim/tuning"
)

func TestJSONLZstdWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "journal")
	opened := 0
	w.Header = func() any {
		opened++
		return Record{Header: &game.JournalHeader{RunID: "r"}}
	}

	clock := time.Date(2026, 1, 2, 3, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }
	if err := w.Write(Record{Entry: &game.JournalEntry{Seq: 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := w.Write(Record{Entry: &game.JournalEntry{Seq: 2}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListJournalFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || opened != 2 {
		t.Fatalf("files=%v headers=%d", files, opened)
	}
	if filepath.Base(files[0]) != "journal-2026-01-02-03.jsonl.zst" {
		t.Fatalf("first file = %s", files[0])
	}

	h, entries, err := ReadJournal(dir)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if h.RunID != "r" || len(entries) != 2 || entries[1].Seq != 2 {
		t.Fatalf("header=%+v entries=%+v", h, entries)
	}
}

func TestJournalRoundTripReplays(t *testing.T) {
	tu := tuning.Defaults()
	tu.Seed = "journal"
	tu.SpawnProbability = 0.5
	tu.VisibilityRadius = 2

	g, err := game.New(game.Config{Tuning: tu})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dir := t.TempDir()
	jl := NewJournalLogger(dir, g.Header("run-7"))
	g.SetJournal(jl)

	g.Apply(protocol.Move(protocol.DirLeft))
	g.Apply(protocol.Save())
	for _, e := range g.Caches() {
		g.Apply(protocol.Take(e.ID()))
	}
	g.Apply(protocol.Move(protocol.DirDown))
	g.Apply(protocol.Restore(0))
	if err := jl.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	h, entries, err := ReadJournal(dir)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if h.RunID != "run-7" || h.Tuning != tu {
		t.Fatalf("header = %+v", h)
	}
	if uint64(len(entries)) != g.Seq() {
		t.Fatalf("entries=%d seq=%d", len(entries), g.Seq())
	}
	r, n, err := game.Replay(h, entries)
	if err != nil {
		t.Fatalf("Replay after %d: %v", n, err)
	}
	if r.Digest() != g.Digest() {
		t.Fatalf("replayed digest differs")
	}
}

func TestJournalKeepsNonFiniteLocate(t *testing.T) {
	g, err := game.New(game.Config{Tuning: tuning.Defaults()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dir := t.TempDir()
	jl := NewJournalLogger(dir, g.Header("run-nan"))
	g.SetJournal(jl)

	g.Apply(protocol.GeoToggle())
	if res := g.Apply(protocol.Locate(math.NaN(), 0)); res.Code != protocol.ErrBadCoordinate {
		t.Fatalf("NaN locate: %+v", res)
	}
	g.Apply(protocol.Move(protocol.DirUp))
	if err := jl.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	h, entries, err := ReadJournal(dir)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if uint64(len(entries)) != g.Seq() {
		t.Fatalf("entries=%d seq=%d", len(entries), g.Seq())
	}
	if !math.IsNaN(entries[1].Command.Lat) || entries[1].Code != protocol.ErrBadCoordinate {
		t.Fatalf("journaled locate = %+v", entries[1])
	}
	r, n, err := game.Replay(h, entries)
	if err != nil {
		t.Fatalf("Replay after %d: %v", n, err)
	}
	if r.Digest() != g.Digest() {
		t.Fatalf("replayed digest differs")
	}
}

func TestReadJournalEmptyDir(t *testing.T) {
	if _, _, err := ReadJournal(t.TempDir()); !errors.Is(err, ErrNoJournal) {
		t.Fatalf("err = %v", err)
	}
	if _, _, err := ReadJournal(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Fatalf("missing dir err = %v", err)
	}
}
