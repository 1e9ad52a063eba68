package repository

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

// WebhookLog is an append-only store: one JSON object per line. Concurrent
// appends rely on the filesystem's O_APPEND semantics for small writes and
// are not otherwise serialized.
type WebhookLog struct {
	path string
}

func NewWebhookLog(path string) *WebhookLog {
	return &WebhookLog{path: path}
}

// Append writes one record to the tail of the log, creating parent
// directories on demand. Records are immutable once written.
func (l *WebhookLog) Append(event *entity.WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(payload, '\n'))
	return err
}

// ReadLast returns up to limit records from the tail, oldest first. A line
// that is not valid JSON comes back as a degraded {"raw": line} record rather
// than being dropped.
func (l *WebhookLog) ReadLast(limit int) ([]json.RawMessage, error) {
	raw, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return []json.RawMessage{}, nil
	}

	lines := strings.Split(text, "\n")
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	records := make([]json.RawMessage, 0, len(lines))
	for _, line := range lines {
		if json.Valid([]byte(line)) {
			records = append(records, json.RawMessage(line))
			continue
		}
		degraded, err := json.Marshal(map[string]string{"raw": line})
		if err != nil {
			return nil, err
		}
		records = append(records, degraded)
	}
	return records, nil
}
