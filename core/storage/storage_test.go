package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medledger/core/block"
	"medledger/core/genesis"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dir := t.TempDir()
	logger, _ := test.NewNullLogger()
	return NewStorage(filepath.Join(dir, "blockchain_data.json"), filepath.Join(dir, "blockchain_backup.json"), logger)
}

func sampleChain(n int) []block.Block {
	chain := []block.Block{genesis.CreateGenesisBlock()}
	for i := 1; i <= n; i++ {
		tail := chain[len(chain)-1]
		chain = append(chain, block.NewRecordBlock(int64(i), "P001", "D001", "Fever|Paracetamol", tail.Hash))
	}
	return chain
}

func TestLoadMissingArtifactIsEmpty(t *testing.T) {
	s := newTestStorage(t)
	chain, err := s.Load()
	require.NoError(t, err)
	assert.NotNil(t, chain)
	assert.Empty(t, chain)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
	assert.False(t, s.HasBackup())
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStorage(t)
	chain := sampleChain(2)
	require.NoError(t, s.Save(chain))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, chain, loaded)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Positive(t, size)
	// first save has nothing to back up
	assert.False(t, s.HasBackup())
}

func TestSaveBacksUpPreviousBytes(t *testing.T) {
	s := newTestStorage(t)
	first := sampleChain(1)
	require.NoError(t, s.Save(first))
	firstBytes, err := os.ReadFile(s.ChainPath())
	require.NoError(t, err)

	second := sampleChain(2)
	require.NoError(t, s.Save(second))

	backup, err := os.ReadFile(s.BackupPath())
	require.NoError(t, err)
	assert.Equal(t, firstBytes, backup)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 3)
}

func TestLoadCorruptArtifact(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, os.WriteFile(s.ChainPath(), []byte("[{\"index\": 0,"), 0o644))

	chain, err := s.Load()
	assert.Nil(t, chain)
	assert.ErrorIs(t, err, ErrCorruptChain)
}

func TestLoadCorruptArtifactLogsError(t *testing.T) {
	dir := t.TempDir()
	logger, hook := test.NewNullLogger()
	s := NewStorage(filepath.Join(dir, "c.json"), filepath.Join(dir, "b.json"), logger)
	require.NoError(t, os.WriteFile(s.ChainPath(), []byte("garbage"), 0o644))

	_, err := s.Load()
	require.Error(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	s := NewStorage(filepath.Join(blocker, "chain.json"), filepath.Join(blocker, "backup.json"), nil)

	err := s.Save(sampleChain(1))
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestRestoreBackupWithoutBackup(t *testing.T) {
	s := newTestStorage(t)
	assert.ErrorIs(t, s.RestoreBackup(), ErrNoBackup)

	require.NoError(t, s.Save(sampleChain(1)))
	assert.ErrorIs(t, s.RestoreBackup(), ErrNoBackup)
}

func TestRestoreBackupOneGeneration(t *testing.T) {
	s := newTestStorage(t)
	first := sampleChain(1)
	require.NoError(t, s.Save(first))
	require.NoError(t, s.Save(sampleChain(3)))

	require.NoError(t, s.RestoreBackup())
	restored, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, first, restored)
}

func TestWriteChainFileLeavesLedgerUntouched(t *testing.T) {
	s := newTestStorage(t)
	chain := sampleChain(2)
	require.NoError(t, s.Save(chain))
	before, err := os.ReadFile(s.ChainPath())
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "exports", "audit.json")
	require.NoError(t, WriteChainFile(dest, chain))

	exported, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, before, exported)
	after, err := os.ReadFile(s.ChainPath())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.False(t, s.HasBackup())
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Save(sampleChain(1)))
	require.NoError(t, s.Save(sampleChain(2)))

	entries, err := os.ReadDir(filepath.Dir(s.ChainPath()))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"blockchain_data.json", "blockchain_backup.json"}, names)
}

func TestArtifactLockExcludesOtherHolders(t *testing.T) {
	s := newTestStorage(t)
	other := flock.New(s.LockPath())

	unlock, err := s.Lock()
	require.NoError(t, err)
	ok, err := other.TryRLock()
	require.NoError(t, err)
	assert.False(t, ok, "shared lock granted while a writer holds the artifact")
	unlock()

	unlockA, err := s.RLock()
	require.NoError(t, err)
	unlockB, err := s.RLock()
	require.NoError(t, err)
	ok, err = other.TryLock()
	require.NoError(t, err)
	assert.False(t, ok, "exclusive lock granted while readers hold the artifact")
	unlockA()
	unlockB()

	ok, err = other.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, other.Unlock())
}
