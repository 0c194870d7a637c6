// Package journal keeps an append-only JSONL record of what each ingest run
// fetched, partitioned by UTC date and rotated with lumberjack.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	ErrClosed     = errors.New("journal is closed")
	ErrBufferFull = errors.New("journal buffer full")
)

// Entry is one journal line.
type Entry struct {
	Kind      string    `json:"kind"`
	Origin    string    `json:"origin"`
	Series    string    `json:"series"`
	FetchedAt time.Time `json:"fetched_at"`
	Rows      int       `json:"rows"`
	Written   int       `json:"written"`
	Error     string    `json:"error,omitempty"`
	Items     any       `json:"items,omitempty"`
}

// Writer appends entries asynchronously to <dir>/<date>/ingest.jsonl.
type Writer struct {
	dir       string
	maxSizeMB int
	now       func() time.Time

	writeCh chan Entry
	done    chan struct{}
	wg      sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	currentDate string
	logger      *lumberjack.Logger
}

func NewWriter(dir string, bufferSize, maxSizeMB int) *Writer {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 50
	}
	w := &Writer{
		dir:       dir,
		maxSizeMB: maxSizeMB,
		now:       time.Now,
		writeCh:   make(chan Entry, bufferSize),
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.writeLoop()
	return w
}

// Record queues e without blocking.
func (w *Writer) Record(e Entry) error {
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	select {
	case w.writeCh <- e:
		return nil
	case <-w.done:
		return ErrClosed
	default:
		slog.Warn("journal buffer full, dropping entry", "kind", e.Kind, "origin", e.Origin)
		return ErrBufferFull
	}
}

// Close stops the writer after draining queued entries.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()

	for drained := false; !drained; {
		select {
		case e := <-w.writeCh:
			w.write(e)
		default:
			drained = true
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger != nil {
		return w.logger.Close()
	}
	return nil
}

func (w *Writer) writeLoop() {
	defer w.wg.Done()
	for {
		select {
		case e := <-w.writeCh:
			w.write(e)
		case <-w.done:
			return
		}
	}
}

func (w *Writer) write(e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("journal entry marshal failed", "kind", e.Kind, "error", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	date := w.now().UTC().Format("2006-01-02")
	if w.logger == nil || date != w.currentDate {
		if err := w.rotateLocked(date); err != nil {
			slog.Error("journal rotate failed", "date", date, "error", err)
			return
		}
	}
	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("journal write failed", "kind", e.Kind, "error", err)
	}
}

func (w *Writer) rotateLocked(date string) error {
	if w.logger != nil {
		if err := w.logger.Close(); err != nil {
			slog.Debug("journal close failed", "error", err)
		}
		w.logger = nil
	}
	dir := filepath.Join(w.dir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("journal: mkdir %s: %w", dir, err)
	}
	w.logger = &lumberjack.Logger{
		Filename:   filepath.Join(dir, "ingest.jsonl"),
		MaxSize:    w.maxSizeMB,
		MaxBackups: 100,
		MaxAge:     30,
	}
	w.currentDate = date
	slog.Debug("journal file opened", "dir", dir)
	return nil
}
