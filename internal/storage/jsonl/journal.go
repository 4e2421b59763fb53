// Package jsonl implements the storage interfaces as append-only
// JSON-lines files. Every append is flushed to disk before returning,
// so a crash mid-run leaves the log with an incomplete but never-corrupt
// tail: the last fully written line is always the last valid record.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// journal is a shared append-only JSON-lines file.
type journal struct {
	mu   sync.Mutex
	path string
}

func newJournal(path string) *journal {
	return &journal{path: path}
}

// append marshals v and durably writes it as one line at the tail.
func (j *journal) append(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log %s: %w", j.path, err)
	}
	defer f.Close()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	data = append(data, '\n')

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append to log %s: %w", j.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync log %s: %w", j.path, err)
	}
	return nil
}

// scan invokes fn for every line in write order. A missing file is an
// empty log, not an error.
func (j *journal) scan(fn func(line []byte) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open log %s: %w", j.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log %s: %w", j.path, err)
	}
	return nil
}

// readLog decodes every line of a journal into a slice of T.
func readLog[T any](j *journal) ([]*T, error) {
	var out []*T
	err := j.scan(func(line []byte) error {
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("decode log line: %w", err)
		}
		out = append(out, &rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// reversed returns a reversed copy of records.
func reversed[T any](records []*T) []*T {
	out := make([]*T, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
	}
	return out
}
