package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// HasBackup reports whether a backup artifact exists.
func (s *Storage) HasBackup() bool {
	_, err := os.Stat(s.backupPath)
	return err == nil
}

// RestoreBackup overwrites the chain artifact with the backup's bytes. Only
// one generation is kept, so this can never reach further back than the
// state before the most recent save.
func (s *Storage) RestoreBackup() error {
	data, err := os.ReadFile(s.backupPath)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoBackup
	}
	if err != nil {
		return fmt.Errorf("%w: read backup: %v", ErrRecovery, err)
	}
	if err := writeFileAtomic(s.chainPath, data); err != nil {
		return fmt.Errorf("%w: write chain: %v", ErrRecovery, err)
	}
	s.log.WithField("path", s.backupPath).Info("chain restored from backup")
	return nil
}
