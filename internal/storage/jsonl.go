package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"walletScope/internal/model"
)

// JsonlStorage keeps snapshot records in an append-only JSONL file.
// Lines that do not decode are logged and skipped.
type JsonlStorage struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

func NewJsonlStorage(path string, logger *zap.Logger) *JsonlStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JsonlStorage{path: path, logger: logger}
}

// SnapshotExists scans the file for a record with the given fingerprint.
func (s *JsonlStorage) SnapshotExists(ctx context.Context, fingerprint model.Fingerprint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	err := s.scan(ctx, func(record model.SnapshotRecord) bool {
		if record.Fingerprint == fingerprint {
			found = true
			return false
		}
		return true
	})
	return found, err
}

// AppendSnapshot appends a record as one JSON line.
func (s *JsonlStorage) AppendSnapshot(_ context.Context, record model.SnapshotRecord) (string, error) {
	if record.ID == "" {
		return "", fmt.Errorf("record id is required")
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}

	line, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.Write(line); err != nil {
		return "", fmt.Errorf("write snapshot record: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return "", fmt.Errorf("write newline: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("flush output: %w", err)
	}

	return record.ID, nil
}

// ListSnapshots returns records created at or after since, oldest first.
func (s *JsonlStorage) ListSnapshots(ctx context.Context, since time.Time, limit int) ([]model.SnapshotRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]model.SnapshotRecord, 0)
	err := s.scan(ctx, func(record model.SnapshotRecord) bool {
		if !since.IsZero() && record.CreatedAt.Before(since) {
			return true
		}
		records = append(records, record)
		return limit <= 0 || len(records) < limit
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *JsonlStorage) Close() error {
	return nil
}

// scan calls fn for every record until fn returns false. A missing file is
// an empty history.
func (s *JsonlStorage) scan(ctx context.Context, fn func(model.SnapshotRecord) bool) error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record model.SnapshotRecord
		if err := json.Unmarshal(line, &record); err != nil {
			s.logger.Warn("skip corrupt snapshot line",
				zap.String("path", s.path),
				zap.Int("line", lineNo),
				zap.Error(err))
			continue
		}
		if !fn(record) {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan snapshot file: %w", err)
	}
	return nil
}
