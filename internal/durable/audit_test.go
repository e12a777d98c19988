package durable

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 1 from spec §8: append two entries, verify true; tamper with the
// second line's actor, verify false.
func TestAuditLog_HashChainScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log, err := OpenAuditLog(path)
	require.NoError(t, err)

	require.NoError(t, log.Append("alice", "write", "ok"))
	require.NoError(t, log.Append("bob", "write", "ok"))

	ok, err := log.Verify()
	require.NoError(t, err)
	require.True(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	tampered := strings.Replace(lines[1], `"bob"`, `"mallory"`, 1)
	lines[1] = tampered
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	ok, err = log.Verify()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAuditLog_MissingFileIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.log")
	log, err := OpenAuditLog(path)
	require.NoError(t, err)
	ok, err := log.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAuditLog_ReopenRecoversChainTip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log1, err := OpenAuditLog(path)
	require.NoError(t, err)
	require.NoError(t, log1.Append("alice", "write", "ok"))

	log2, err := OpenAuditLog(path)
	require.NoError(t, err)
	require.NoError(t, log2.Append("bob", "write", "ok"))

	ok, err := log2.Verify()
	require.NoError(t, err)
	require.True(t, ok, "chain appended from a reopened log must still verify")
}

func TestAuditLog_ResetClearsChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log, err := OpenAuditLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Append("alice", "write", "ok"))
	require.NoError(t, log.Reset())

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, log.Append("alice", "write", "ok"))
	ok, err := log.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}
