// Package activity keeps the append-only CSV audit log shared by the CLI
// and the web server.
package activity

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Action names recorded in the log.
const (
	ActionLogin           = "login"
	ActionLoginFailed     = "login_failed"
	ActionLogout          = "logout"
	ActionUploadCSV       = "upload_csv"
	ActionManualUpsert    = "manual_upsert"
	ActionExportCSV       = "export_csv"
	ActionAdopt           = "adopt"
	ActionSaveTranslation = "save_translation"
	ActionDownloadLog     = "download_log"
	ActionAlign           = "align"
	ActionImport          = "import"
	ActionMerge           = "merge"
	ActionDelete          = "delete"
	ActionReviewSave      = "review_save"
)

const lockRetryDelay = 25 * time.Millisecond

var header = []string{"timestamp", "user", "action", "details"}

// Entry is one audit record.
type Entry struct {
	Timestamp time.Time
	User      string
	Action    string
	Details   string
}

// Subscriber receives every entry appended through a Log.
type Subscriber interface {
	Publish(Entry)
}

// Log appends to and reads from an activity CSV. Appends are serialized
// within the process by a mutex and across processes by a lock file.
type Log struct {
	path string
	lock *flock.Flock
	now  func() time.Time

	mu  sync.Mutex
	sub Subscriber
}

// New returns a Log writing to path. The file is created on first append.
func New(path string) *Log {
	return &Log{
		path: path,
		lock: flock.New(path + ".lock"),
		now:  time.Now,
	}
}

// Path returns the CSV location.
func (l *Log) Path() string {
	return l.path
}

// Subscribe registers sub to receive future appends, replacing any previous
// subscriber. A nil sub disables publishing.
func (l *Log) Subscribe(sub Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sub = sub
}

// Append records entry, stamping it with the current time when unset.
func (l *Log) Append(ctx context.Context, entry Entry) (Entry, error) {
	if entry.Action == "" {
		return Entry{}, errors.New("activity action is required")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Second)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return Entry{}, fmt.Errorf("create activity dir: %w", err)
	}
	locked, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Entry{}, fmt.Errorf("lock activity log: %w", err)
	}
	if !locked {
		return Entry{}, errors.New("lock activity log: not acquired")
	}
	defer func() { _ = l.lock.Unlock() }()

	if err := l.appendLocked(entry); err != nil {
		return Entry{}, err
	}
	if l.sub != nil {
		l.sub.Publish(entry)
	}
	return entry, nil
}

func (l *Log) appendLocked(entry Entry) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat activity log: %w", err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write activity header: %w", err)
		}
	}
	if err := w.Write(entry.record()); err != nil {
		return fmt.Errorf("write activity entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush activity log: %w", err)
	}
	return f.Close()
}

func (e Entry) record() []string {
	return []string{e.Timestamp.Format(time.RFC3339), e.User, e.Action, e.Details}
}

// ReadAll returns every entry, oldest first. A missing log is empty.
func (l *Log) ReadAll(ctx context.Context) ([]Entry, error) {
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	locked, err := l.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock activity log: %w", err)
	}
	if !locked {
		return nil, errors.New("lock activity log: not acquired")
	}
	defer func() { _ = l.lock.Unlock() }()

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()
	return parse(f)
}

// Tail returns the last n entries, oldest first. n <= 0 returns everything.
func (l *Log) Tail(ctx context.Context, n int) ([]Entry, error) {
	entries, err := l.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func parse(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var entries []Entry
	first := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse activity log: %w", err)
		}
		if first {
			first = false
			if len(record) > 0 && record[0] == header[0] {
				continue
			}
		}
		entries = append(entries, entryFromRecord(record))
	}
}

func entryFromRecord(record []string) Entry {
	field := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}
	entry := Entry{User: field(1), Action: field(2), Details: field(3)}
	if ts, err := time.Parse(time.RFC3339, field(0)); err == nil {
		entry.Timestamp = ts
	}
	return entry
}
