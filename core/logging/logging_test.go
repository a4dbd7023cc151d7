package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medledger/core/config"
)

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, logrus.DebugLevel, lvl)

	lvl, ok = ParseLevel("loud")
	assert.False(t, ok)
	assert.Equal(t, logrus.InfoLevel, lvl)
}

func TestInitWritesRotatingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "warn"
	cfg.Log.File = true
	cfg.Log.Dir = dir
	cfg.Log.ByLevel = true

	logger := logrus.New()
	require.NoError(t, Init(logger, cfg))
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("filtered out")
	logger.Error("chain write failed")

	data, err := os.ReadFile(filepath.Join(dir, "run.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "chain write failed")
	assert.NotContains(t, string(data), "filtered out")

	errData, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errData), "chain write failed")
}

func TestInitUnknownLevelFallsBack(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "verbose"

	logger := logrus.New()
	require.NoError(t, Init(logger, cfg))
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
