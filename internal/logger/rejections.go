// internal/logger/rejections.go
// Package logger keeps an in-memory trail of pool rejections with a JSON-lines spill file.
package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultRejectionCapacity = 1024

// Rejection is one failing filter verdict for one pool.
type Rejection struct {
	Timestamp time.Time `json:"timestamp"`
	Pool      string    `json:"pool"`
	Filter    string    `json:"filter"`
	Reason    string    `json:"reason"`
}

// RejectionLog is a thread-safe ring buffer of rejections. Entries evicted from
// the ring are appended to the spill file, the rest on Close.
type RejectionLog struct {
	mu      sync.Mutex
	ring    []Rejection
	next    int
	wrapped bool

	spillFile   *os.File
	spillWriter *bufio.Writer
	logger      *zap.Logger

	total   uint64
	spilled uint64
}

// NewRejectionLog creates a log holding capacity entries. An empty spillPath
// keeps the trail in memory only.
func NewRejectionLog(capacity int, spillPath string, logger *zap.Logger) (*RejectionLog, error) {
	if capacity <= 0 {
		capacity = DefaultRejectionCapacity
	}

	rl := &RejectionLog{
		ring:   make([]Rejection, capacity),
		logger: logger.Named("rejections"),
	}

	if spillPath == "" {
		return rl, nil
	}

	if err := os.MkdirAll(filepath.Dir(spillPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create rejection log directory: %w", err)
	}
	f, err := os.OpenFile(spillPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open rejection log: %w", err)
	}
	rl.spillFile = f
	rl.spillWriter = bufio.NewWriter(f)
	return rl, nil
}

// Record appends a rejection. Spill errors are logged, never returned.
func (rl *RejectionLog) Record(pool, filter, reason string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.wrapped {
		if err := rl.spill(rl.ring[rl.next]); err != nil {
			rl.logger.Error("Failed to spill rejection", zap.Error(err))
		} else if rl.spillWriter != nil {
			rl.spilled++
		}
	}

	rl.ring[rl.next] = Rejection{
		Timestamp: time.Now().UTC(),
		Pool:      pool,
		Filter:    filter,
		Reason:    reason,
	}
	rl.next = (rl.next + 1) % len(rl.ring)
	if rl.next == 0 {
		rl.wrapped = true
	}
	rl.total++
}

func (rl *RejectionLog) spill(entry Rejection) error {
	if rl.spillWriter == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal rejection: %w", err)
	}
	data = append(data, '\n')
	if _, err := rl.spillWriter.Write(data); err != nil {
		return fmt.Errorf("failed to write rejection: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, oldest first. limit <= 0 returns all.
func (rl *RejectionLog) Recent(limit int) []Rejection {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entries := rl.ordered()
	if limit > 0 && limit < len(entries) {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

func (rl *RejectionLog) ordered() []Rejection {
	if !rl.wrapped {
		return append([]Rejection(nil), rl.ring[:rl.next]...)
	}
	out := make([]Rejection, 0, len(rl.ring))
	out = append(out, rl.ring[rl.next:]...)
	return append(out, rl.ring[:rl.next]...)
}

// Stats returns the number of recorded and spilled entries.
func (rl *RejectionLog) Stats() (total, spilled uint64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.total, rl.spilled
}

// Flush writes buffered spill data to disk.
func (rl *RejectionLog) Flush() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.flush()
}

func (rl *RejectionLog) flush() error {
	if rl.spillWriter == nil {
		return nil
	}
	if err := rl.spillWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush rejection log: %w", err)
	}
	if err := rl.spillFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync rejection log: %w", err)
	}
	return nil
}

// StartPeriodicFlush flushes every interval until the returned channel is closed.
func (rl *RejectionLog) StartPeriodicFlush(interval time.Duration) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := rl.Flush(); err != nil {
					rl.logger.Error("Periodic flush failed", zap.Error(err))
				}
			case <-done:
				return
			}
		}
	}()

	return done
}

// Close spills every buffered entry and closes the file.
func (rl *RejectionLog) Close() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.spillWriter == nil {
		return nil
	}

	for _, entry := range rl.ordered() {
		if err := rl.spill(entry); err != nil {
			rl.logger.Error("Failed to spill rejection during close", zap.Error(err))
		}
	}
	if err := rl.flush(); err != nil {
		return err
	}
	if err := rl.spillFile.Close(); err != nil {
		return fmt.Errorf("failed to close rejection log: %w", err)
	}

	rl.logger.Info("Rejection log closed",
		zap.Uint64("total", rl.total),
		zap.Uint64("spilled", rl.spilled))
	rl.spillWriter = nil
	return nil
}
