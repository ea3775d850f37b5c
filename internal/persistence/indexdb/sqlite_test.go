package indexdb

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"geocoin.app/internal/protocol"
	"geocoin.app/internal/sim/game"
	"geocoin.app/internal/sim/memento"
	"geocoin.app/internal/sim/tuning"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqEntry}

	_ = s.WriteEntry(game.JournalEntry{Seq: 2})
	s.RecordSnapshot(memento.NewHistory().Save(nil))

	st := s.Stats()
	if st.DropEntryTotal != 1 {
		t.Fatalf("DropEntryTotal=%d want=1", st.DropEntryTotal)
	}
	if st.DropSnapshotTotal != 1 {
		t.Fatalf("DropSnapshotTotal=%d want=1", st.DropSnapshotTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_CloseWhileWriting(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_ = idx.WriteEntry(game.JournalEntry{Seq: uint64(i + 1)})
				idx.RecordSnapshot(memento.NewHistory().Save(nil))
			}
		}()
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()
	if err := idx.WriteEntry(game.JournalEntry{Seq: 9999}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
}

func TestSQLiteIndex_IndexesGameRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.sqlite")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	tu := tuning.Defaults()
	tu.SpawnProbability = 1
	tu.VisibilityRadius = 1
	g, err := game.New(game.Config{Tuning: tu}, game.WithJournal(idx))
	if err != nil {
		t.Fatalf("game: %v", err)
	}
	if err := idx.RecordRun(g.Header("run-1")); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	id := g.Caches()[0].ID()
	g.Apply(protocol.Take(id))
	g.Apply(protocol.Save())
	g.Apply(protocol.Deposit("not a cache"))
	last := g.Apply(protocol.Move(protocol.DirUp))

	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen to read what the writer committed.
	idx, err = OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	sum, err := idx.Summary(ctx, "run-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Commands != 4 || sum.Rejected != 1 || sum.Snapshots != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.LastSeq != last.Seq || sum.LastDigest != last.Digest {
		t.Fatalf("last = %d/%s want %d/%s", sum.LastSeq, sum.LastDigest, last.Seq, last.Digest)
	}

	raw, err := idx.SnapshotJSON(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("SnapshotJSON: %v", err)
	}
	var snap struct {
		Index  int                  `json:"index"`
		Caches []memento.CacheState `json:"caches"`
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Index != 0 || len(snap.Caches) != 9 {
		t.Fatalf("snapshot = %+v", snap)
	}

	if _, err := idx.Summary(ctx, "missing"); !errors.Is(err, ErrNoRun) {
		t.Fatalf("missing run: %v", err)
	}
}
