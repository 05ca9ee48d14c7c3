// Package results persists sweep samples as an append-only tabular result
// set and reads them back for offline estimation.
package results

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/corobench/corobench/model"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

const header = "PopulationSize,ResidentMemoryKb"

// Store writes one row per completed run to a tabular output. The full file
// is re-uploaded after every append, so an interrupted sweep always leaves a
// valid partial result behind.
type Store struct {
	fs      afs.Service
	destURL string
	rows    []model.RunRecord
	mu      sync.Mutex
}

// New creates a result store writing to destURL.
func New(fs afs.Service, destURL string) (*Store, error) {
	if destURL == "" {
		return nil, fmt.Errorf("result destination cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	store := &Store{fs: fs, destURL: destURL}
	// Fail before the first run, not after it, when the destination is
	// unwritable; an unwritable output is a sweep-level error.
	if err := store.flush(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// Append records one completed run and persists the result set.
func (s *Store) Append(ctx context.Context, record model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, record)
	return s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) error {
	var out bytes.Buffer
	out.WriteString(header)
	out.WriteByte('\n')
	for _, row := range s.rows {
		fmt.Fprintf(&out, "%d,%d\n", row.Population, row.ResidentKb)
	}
	if err := s.fs.Upload(ctx, s.destURL, file.DefaultFileOsMode, bytes.NewReader(out.Bytes())); err != nil {
		return fmt.Errorf("failed to write results %s: %w", s.destURL, err)
	}
	return nil
}

// Load reads a previously persisted result set back into record form.
// Malformed rows are rejected rather than skipped; a result file is machine
// written and any damage should surface.
func Load(ctx context.Context, fs afs.Service, URL string) ([]model.RunRecord, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read results %s: %w", URL, err)
	}
	var records []model.RunRecord
	for i, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || i == 0 && line == header {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed result row %d in %s: %q", i+1, URL, line)
		}
		population, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("malformed population in row %d of %s: %w", i+1, URL, err)
		}
		residentKb, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed memory value in row %d of %s: %w", i+1, URL, err)
		}
		records = append(records, model.RunRecord{Population: population, ResidentKb: residentKb})
	}
	return records, nil
}
