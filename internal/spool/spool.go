// Package spool keeps uploaded files on disk while they are decoded and
// sweeps away files left behind by interrupted requests.
package spool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	appLog "schedcal/internal/log"
)

const fileSuffix = ".upload"

// Spool is a directory of temporary upload files.
type Spool struct {
	Dir string
}

// New creates dir if needed and returns a Spool rooted there.
func New(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{Dir: dir}, nil
}

// Save copies r into a new uuid-named file and returns its path.
func (s *Spool) Save(r io.Reader) (string, error) {
	path := filepath.Join(s.Dir, uuid.NewString()+fileSuffix)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close spool file: %w", err)
	}
	return path, nil
}

// Remove deletes a spooled file. A file that is already gone is not an error.
func (s *Spool) Remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		appLog.Error("spool remove failed", err, "path", path)
	}
}

// Sweep deletes spool files last modified more than maxAge ago and returns
// how many were removed.
func (s *Spool) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, fmt.Errorf("read spool dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			appLog.Error("spool sweep remove failed", err, "name", e.Name())
			continue
		}
		removed++
	}
	return removed, nil
}

// StartSweeper runs Sweep on the given cron schedule until ctx is done.
func (s *Spool) StartSweeper(ctx context.Context, schedule string, maxAge time.Duration) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := s.Sweep(maxAge)
		if err != nil {
			appLog.Error("spool sweep failed", err, "dir", s.Dir)
			return
		}
		if n > 0 {
			appLog.Info("spool sweep removed stale uploads", "count", n, "dir", s.Dir)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	appLog.Info("spool sweeper started", "schedule", schedule, "max_age", maxAge)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Debug("spool sweeper stopped")
	}()
	return nil
}
