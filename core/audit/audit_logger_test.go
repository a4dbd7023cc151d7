package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAuditLoggerAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockchain_log.txt")
	l := NewFileAuditLogger(path)
	l.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local) }

	l.Append("Blockchain saved with 2 blocks")
	l.Append("Block added - Index: 1, Patient: P001, Doctor: D001")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2025-06-01 09:30:00] Blockchain saved with 2 blocks", lines[0])
	assert.Equal(t, "[2025-06-01 09:30:00] Block added - Index: 1, Patient: P001, Doctor: D001", lines[1])
}

func TestFileAuditLoggerSwallowsErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	l := NewFileAuditLogger(filepath.Join(blocker, "audit.log"))
	assert.NotPanics(t, func() { l.Append("cannot be written") })
}

func TestNopAuditLogger(t *testing.T) {
	assert.NotPanics(t, func() { NewNopAuditLogger().Append("ignored") })
}
