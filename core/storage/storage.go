package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"medledger/core/block"
)

var (
	// ErrCorruptChain marks a chain artifact that exists but cannot be parsed.
	ErrCorruptChain = errors.New("storage: corrupt chain artifact")
	// ErrPersistence marks a failed backup or write; the chain was not durably saved.
	ErrPersistence = errors.New("storage: chain not persisted")
	// ErrNoBackup is returned by RestoreBackup when no backup artifact exists.
	ErrNoBackup = errors.New("storage: no backup available")
	// ErrRecovery marks a backup that exists but could not be restored.
	ErrRecovery = errors.New("storage: recovery failed")
)

const filePerm = 0o644

// Storage persists the whole chain as a single JSON file and keeps one
// backup generation next to it. Every save rewrites the full file, so the
// cost of an append grows linearly with the chain.
type Storage struct {
	chainPath  string
	backupPath string
	log        logrus.FieldLogger
}

// NewStorage returns a Storage for the given primary and backup paths.
// A nil logger falls back to the logrus standard logger.
func NewStorage(chainPath, backupPath string, logger logrus.FieldLogger) *Storage {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Storage{
		chainPath:  chainPath,
		backupPath: backupPath,
		log:        logger.WithField("module", "storage"),
	}
}

func (s *Storage) ChainPath() string  { return s.chainPath }
func (s *Storage) BackupPath() string { return s.backupPath }

// Load reads the persisted chain. A missing artifact is the bootstrap state
// and yields an empty chain. Unparseable content is reported as
// ErrCorruptChain; deciding whether to carry on is the caller's policy.
func (s *Storage) Load() ([]block.Block, error) {
	data, err := os.ReadFile(s.chainPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("no chain artifact, starting empty")
		return []block.Block{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", s.chainPath, err)
	}
	chain, err := block.DecodeChain(data)
	if err != nil {
		s.log.WithError(err).WithField("path", s.chainPath).Error("chain artifact is not valid JSON")
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptChain, s.chainPath, err)
	}
	s.log.WithField("blocks", len(chain)).Debug("chain loaded")
	return chain, nil
}

// Save copies the current artifact to the backup path, byte for byte, and
// then replaces the artifact with the serialized chain. Both writes go
// through a temp file and rename so readers never see a truncated file.
func (s *Storage) Save(chain []block.Block) error {
	data, err := block.EncodeChain(chain)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}

	prev, err := os.ReadFile(s.chainPath)
	switch {
	case err == nil:
		if err := writeFileAtomic(s.backupPath, prev); err != nil {
			s.log.WithError(err).Error("backup failed, chain left untouched")
			return fmt.Errorf("%w: backup: %v", ErrPersistence, err)
		}
		s.log.WithField("path", s.backupPath).Debug("backup created")
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("%w: read current chain: %v", ErrPersistence, err)
	}

	if err := writeFileAtomic(s.chainPath, data); err != nil {
		s.log.WithError(err).Error("chain write failed")
		return fmt.Errorf("%w: write: %v", ErrPersistence, err)
	}
	s.log.WithField("blocks", len(chain)).Info("chain saved")
	return nil
}

// Size returns the artifact size in bytes, or 0 when it does not exist.
func (s *Storage) Size() (int64, error) {
	fi, err := os.Stat(s.chainPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// WriteChainFile writes a full copy of chain to path. The ledger's own
// artifacts are not touched.
func WriteChainFile(path string, chain []block.Block) error {
	data, err := block.EncodeChain(chain)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), filePerm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
