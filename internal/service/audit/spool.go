package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"rowguard/internal/domain"
)

// Spool is the local fallback for audit entries the sink could not take:
// one JSON document per line, append-only. Replay reads it back and rewrites
// only the entries that still failed, so a crash mid-replay can duplicate a
// delivery but never lose one; the sink deduplicates by entry ID.
type Spool struct {
	mu   sync.Mutex
	path string
}

// NewSpool creates a spool at path, creating parent directories as needed.
func NewSpool(path string) (*Spool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create spool directory: %w", err)
	}
	return &Spool{path: path}, nil
}

// Path returns the spool file location.
func (s *Spool) Path() string { return s.path }

// Append writes one entry as a JSON line.
func (s *Spool) Append(e domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open spool: %w", err)
	}
	if err := json.NewEncoder(f).Encode(e); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("append to spool: %w", err)
	}
	return f.Close()
}

// Pending returns all spooled entries without removing them.
func (s *Spool) Pending() ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Spool) read() ([]domain.AuditEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read spool: %w", err)
	}

	var entries []domain.AuditEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var e domain.AuditEntry
		if err := dec.Decode(&e); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode spool: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Rewrite atomically replaces the spool content with the given entries. An
// empty slice clears the file.
func (s *Spool) Rewrite(entries []domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open spool temp file: %w", err)
	}
	enc := json.NewEncoder(f)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			f.Close()      //nolint:errcheck
			os.Remove(tmp) //nolint:errcheck
			return fmt.Errorf("write spool temp file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("close spool temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace spool: %w", err)
	}
	return nil
}
