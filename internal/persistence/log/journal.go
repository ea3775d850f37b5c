package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"geocoin.app/internal/sim/game"
)

// Record is one journal line: a header when a file opens, otherwise an entry.
type Record struct {
	Header *game.JournalHeader `json:"header,omitempty"`
	Entry  *game.JournalEntry  `json:"entry,omitempty"`
}

// JournalLogger writes one JSONL record per applied command (compressed).
type JournalLogger struct{ w *JSONLZstdWriter }

// NewJournalLogger journals into runDir/journal-<hour>.jsonl.zst.
func NewJournalLogger(runDir string, header game.JournalHeader) *JournalLogger {
	w := NewJSONLZstdWriter(runDir, "journal")
	w.Header = func() any { return Record{Header: &header} }
	return &JournalLogger{w: w}
}

func (l *JournalLogger) WriteEntry(e game.JournalEntry) error { return l.w.Write(Record{Entry: &e}) }
func (l *JournalLogger) Close() error                         { return l.w.Close() }

var ErrNoJournal = errors.New("no journal files")

// ListJournalFiles returns the journal files in dir in write order.
func ListJournalFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "journal-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// ReadJournal loads a run directory: the header of its first file and every
// entry across all files.
func ReadJournal(dir string) (game.JournalHeader, []game.JournalEntry, error) {
	var header game.JournalHeader
	files, err := ListJournalFiles(dir)
	if err != nil {
		return header, nil, err
	}
	if len(files) == 0 {
		return header, nil, fmt.Errorf("%s: %w", dir, ErrNoJournal)
	}

	var (
		entries   []game.JournalEntry
		hasHeader bool
	)
	for _, path := range files {
		err := readRecords(path, func(r Record) {
			switch {
			case r.Header != nil && !hasHeader:
				header = *r.Header
				hasHeader = true
			case r.Entry != nil:
				entries = append(entries, *r.Entry)
			}
		})
		if err != nil {
			return header, nil, err
		}
	}
	if !hasHeader {
		return header, nil, fmt.Errorf("%s: journal has no header", dir)
	}
	return header, entries, nil
}

func readRecords(path string, fn func(Record)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		fn(r)
	}
	return sc.Err()
}
