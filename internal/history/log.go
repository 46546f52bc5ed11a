// Package history persists finished overlay sessions to a JSONL log.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SchemaVersion is the current log schema version.
const SchemaVersion = 1

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	OverlaydSchemaVersion int   `json:"overlayd_schema_version"`
	CreatedAt             int64 `json:"created_at"`
}

// Record is one finished overlay session.
type Record struct {
	ID       string `json:"id" yaml:"id"`
	App      string `json:"app" yaml:"app"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Status   string `json:"status" yaml:"status"`
	Reason   string `json:"reason" yaml:"reason"`
	ShownAt  int64  `json:"shown_at" yaml:"shown_at"`
	ClosedAt int64  `json:"closed_at" yaml:"closed_at"`
}

// ShownTime returns ShownAt as a time.Time.
func (r Record) ShownTime() time.Time { return time.Unix(r.ShownAt, 0) }

// ClosedTime returns ClosedAt as a time.Time.
func (r Record) ClosedTime() time.Time { return time.Unix(r.ClosedAt, 0) }

// LogPath returns the default session log location.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func LogPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "overlayd", "sessions.jsonl"), nil
}

// Log is an append-only JSONL session log.
type Log struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// Open opens the log at path, creating the file and its directory if
// needed.
func Open(path string) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	l := &Log{path: path, file: file}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := l.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}
	return l, nil
}

// writeHeader writes the schema line. Caller holds no lock yet; Open is
// single-threaded.
func (l *Log) writeHeader() error {
	header := schemaHeader{
		OverlaydSchemaVersion: SchemaVersion,
		CreatedAt:             time.Now().Unix(),
	}
	data, err := json.Marshal(header)
	if err != nil {
		return err
	}
	_, err = l.file.Write(append(data, '\n'))
	return err
}

// Append writes one record to the log.
func (l *Log) Append(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return fmt.Errorf("log is closed")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Close releases the file handle.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// Load reads every record from the log at path, oldest first. The
// schema header and corrupt lines are skipped. A missing file yields an
// empty slice.
func Load(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if first {
			first = false
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.OverlaydSchemaVersion != 0 {
				continue
			}
		}

		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return records, nil
}
