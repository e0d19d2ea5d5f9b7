package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/repository"
)

// ErrLocked is returned when another writer holds a fresh table lock.
var ErrLocked = errors.New("listings table is locked by another writer")

// LockPath returns the lock file guarding the table.
func (s *Store) LockPath() string { return s.path + ".lock" }

// Lock creates the lock file exclusively. A lock older than the store's TTL
// is treated as left behind by a crashed run and replaced. Takeover is
// best-effort: the stale file is removed only while it is still the file
// that was judged stale.
func (s *Store) Lock(_ context.Context) (func(), error) {
	lockPath := s.LockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", repository.ErrStorage, filepath.Dir(lockPath), err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = fmt.Fprintf(f, `{"pid":%d,"time":%d}`+"\n", os.Getpid(), time.Now().Unix())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: create lock %s: %w", repository.ErrStorage, lockPath, err)
		}

		fi, statErr := os.Stat(lockPath)
		if statErr != nil {
			// Released between open and stat.
			continue
		}
		age := time.Since(fi.ModTime())
		if age < s.lockTTL {
			return nil, fmt.Errorf("%w: %w (%s, age %s)", repository.ErrStorage, ErrLocked, lockPath, age.Round(time.Second))
		}
		if cur, err := os.Stat(lockPath); err != nil || !os.SameFile(fi, cur) || !cur.ModTime().Equal(fi.ModTime()) {
			// Replaced or released since the first look.
			continue
		}
		s.logger.Warn("removing stale table lock", zap.String("lock", lockPath), zap.Duration("age", age))
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: remove stale lock %s: %w", repository.ErrStorage, lockPath, err)
		}
	}
	return nil, fmt.Errorf("%w: %w (%s)", repository.ErrStorage, ErrLocked, lockPath)
}
