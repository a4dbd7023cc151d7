package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLock marks a failure to take the advisory lock on the chain artifact.
var ErrLock = errors.New("storage: artifact lock failed")

// LockPath is the sibling file every process locks before touching the chain.
func (s *Storage) LockPath() string { return s.chainPath + ".lock" }

// Lock blocks until this process holds the exclusive artifact lock. Writers
// hold it across load, append and save so that two processes, or two
// Storage values in one process, can never interleave a read-modify-write.
func (s *Storage) Lock() (func(), error) { return s.acquire(false) }

// RLock blocks until this process holds a shared artifact lock.
func (s *Storage) RLock() (func(), error) { return s.acquire(true) }

// acquire opens a fresh descriptor per call; flock(2) locks belong to the
// open file, so concurrent readers in one process never release each other.
func (s *Storage) acquire(shared bool) (func(), error) {
	path := s.LockPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLock, path, err)
	}
	fl := flock.New(path)
	var err error
	if shared {
		err = fl.RLock()
	} else {
		err = fl.Lock()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLock, path, err)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			s.log.WithError(err).WithField("path", path).Warn("artifact unlock failed")
		}
	}, nil
}
