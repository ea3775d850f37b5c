// Package indexdb keeps a queryable SQLite copy of the journal. The JSONL
// journal stays the source of truth; the index may drop writes under load.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"geocoin.app/internal/sim/game"
	"geocoin.app/internal/sim/memento"
)

type SQLiteIndex struct {
	db *sql.DB

	runID string

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// sendMu orders sends against close(ch).
	sendMu sync.RWMutex
	closed bool

	dropEntries   atomic.Uint64
	dropSnapshots atomic.Uint64
}

type reqKind int

const (
	reqEntry reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	entry    game.JournalEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Index   int
	TakenAt string
	Caches  int
	Coins   int
	JSON    []byte
}

type Stats struct {
	DropEntryTotal    uint64 `json:"drop_entry_total"`
	DropSnapshotTotal uint64 `json:"drop_snapshot_total"`
	QueueDepth        int    `json:"queue_depth"`
	QueueCapacity     int    `json:"queue_capacity"`
}

var ErrNoRun = errors.New("index has no run recorded")

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 8192),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed TEXT NOT NULL,
			tuning_digest TEXT NOT NULL,
			tuning_json TEXT NOT NULL,
			started_at TEXT NOT NULL,
			initial_digest TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			ok INTEGER NOT NULL,
			code TEXT,
			digest TEXT NOT NULL,
			cmd_json TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_type ON commands(run_id, type);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			idx INTEGER NOT NULL,
			taken_at TEXT NOT NULL,
			caches INTEGER NOT NULL,
			coins INTEGER NOT NULL,
			json TEXT NOT NULL,
			PRIMARY KEY (run_id, idx)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.sendMu.Lock()
		s.closed = true
		close(s.ch)
		s.sendMu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordRun stores the run header synchronously. Entries and snapshots
// written afterwards are filed under its run id.
func (s *SQLiteIndex) RecordRun(h game.JournalHeader) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(h.Tuning)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO runs(run_id,seed,tuning_digest,tuning_json,started_at,initial_digest) VALUES(?,?,?,?,?,?)`,
		h.RunID, h.Tuning.Seed, hex.EncodeToString(sum[:]), string(b),
		h.StartedAt.UTC().Format(time.RFC3339Nano), h.InitialDigest,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.runID = h.RunID
	return nil
}

// WriteEntry queues e for the writer goroutine. It never blocks.
func (s *SQLiteIndex) WriteEntry(e game.JournalEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqEntry, entry: e}, &s.dropEntries)
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(snap memento.Snapshot) {
	if s == nil {
		return
	}
	b, err := json.Marshal(snap)
	if err != nil {
		s.dropSnapshots.Add(1)
		return
	}
	r := snapshotRow{
		Index:   snap.Index(),
		TakenAt: snap.TakenAt().UTC().Format(time.RFC3339Nano),
		Caches:  snap.Len(),
		Coins:   snap.TotalCoins(),
		JSON:    b,
	}
	s.enqueue(req{kind: reqSnapshot, snapshot: r}, &s.dropSnapshots)
}

// enqueue is a no-op after Close and counts a drop when the queue is full.
func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
		drops.Add(1)
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		DropEntryTotal:    s.dropEntries.Load(),
		DropSnapshotTotal: s.dropSnapshots.Load(),
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
	}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertCommand, _ := s.db.Prepare(`INSERT OR REPLACE INTO commands(run_id,seq,type,ok,code,digest,cmd_json) VALUES(?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(run_id,idx,taken_at,caches,coins,json) VALUES(?,?,?,?,?,?)`)
	defer func() {
		if insertCommand != nil {
			_ = insertCommand.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqEntry:
			e := r.entry
			b, _ := json.Marshal(e.Command)
			if insertCommand != nil {
				if _, err := tx.Stmt(insertCommand).Exec(
					s.runID,
					int64(e.Seq),
					e.Command.Type,
					e.OK,
					e.Code,
					e.Digest,
					string(b),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot != nil {
				if _, err := tx.Stmt(insertSnapshot).Exec(
					s.runID,
					sn.Index,
					sn.TakenAt,
					sn.Caches,
					sn.Coins,
					string(sn.JSON),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
