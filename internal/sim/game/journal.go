package game

import (
	"time"

	"geocoin.app/internal/protocol"
	"geocoin.app/internal/sim/memento"
	"geocoin.app/internal/sim/tuning"
)

// JournalHeader opens every journal file. Replaying its commands against a
// fresh game built from Tuning reproduces every entry digest.
type JournalHeader struct {
	RunID         string        `json:"run_id"`
	Version       string        `json:"version"`
	Tuning        tuning.Tuning `json:"tuning"`
	StartedAt     time.Time     `json:"started_at"`
	InitialDigest string        `json:"initial_digest"`
}

type JournalEntry struct {
	Seq     uint64           `json:"seq"`
	Command protocol.Command `json:"cmd"`
	OK      bool             `json:"ok"`
	Code    string           `json:"code,omitempty"`
	Digest  string           `json:"digest"`
}

// Journal receives one entry per applied command, in seq order.
type Journal interface {
	WriteEntry(e JournalEntry) error
}

// Header describes this game for a journal that starts now.
func (g *Game) Header(runID string) JournalHeader {
	return JournalHeader{
		RunID:         runID,
		Version:       protocol.Version,
		Tuning:        g.tune,
		StartedAt:     time.Now().UTC(),
		InitialDigest: g.Digest(),
	}
}

func (g *Game) record(cmd protocol.Command, res Result) {
	if g.journal == nil {
		return
	}
	err := g.journal.WriteEntry(JournalEntry{
		Seq:     res.Seq,
		Command: cmd,
		OK:      res.OK,
		Code:    res.Code,
		Digest:  res.Digest,
	})
	if err != nil {
		g.log.WithError(err).WithField("seq", res.Seq).Error("journal write")
	}
}

// SnapshotRecorder is implemented by journals that also want every saved
// snapshot.
type SnapshotRecorder interface {
	RecordSnapshot(s memento.Snapshot)
}

// MultiJournal fans entries out to every journal in order. The first write
// error is returned after all journals have been tried.
type MultiJournal []Journal

func (m MultiJournal) WriteEntry(e JournalEntry) error {
	var first error
	for _, j := range m {
		if err := j.WriteEntry(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiJournal) RecordSnapshot(s memento.Snapshot) {
	for _, j := range m {
		if r, ok := j.(SnapshotRecorder); ok {
			r.RecordSnapshot(s)
		}
	}
}
