package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bridge.db"))
	require.NoError(t, err)
	require.NoError(t, s.Initialize())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "bridge.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Initialize())
}

func TestInitializeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Initialize())
}

func TestAuditLogRoundTrip(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().Add(-time.Minute)
	entries := []AuditEntry{
		{Timestamp: base, Tool: "execute_kasm_command", KasmID: "k1", Argument: "ls -la", Allowed: true},
		{Timestamp: base.Add(time.Second), Tool: "execute_kasm_command", KasmID: "k1", Argument: "sudo rm", Allowed: false, Violation: "blocked_command", Message: "command 'sudo' is not allowed"},
		{Timestamp: base.Add(2 * time.Second), Tool: "write_kasm_file", KasmID: "k2", Argument: "/home/kasm-user/out.txt", Allowed: true},
	}
	for _, e := range entries {
		require.NoError(t, s.LogAudit(e))
	}

	got, err := s.RecentAudit(10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	assert.Equal(t, "write_kasm_file", got[0].Tool)
	assert.Equal(t, "sudo rm", got[1].Argument)
	assert.False(t, got[1].Allowed)
	assert.Equal(t, "blocked_command", got[1].Violation)
	assert.Equal(t, "command 'sudo' is not allowed", got[1].Message)
	assert.True(t, got[2].Allowed)
	assert.Empty(t, got[2].Violation)
}

func TestRecentAuditHonorsLimit(t *testing.T) {
	s := newTestStore(t)

	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.LogAudit(AuditEntry{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Tool:      "execute_kasm_command",
			KasmID:    "k1",
			Argument:  "echo",
			Allowed:   true,
		}))
	}

	got, err := s.RecentAudit(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLogAuditFillsTimestamp(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.LogAudit(AuditEntry{Tool: "read_kasm_file", KasmID: "k1", Argument: "/tmp/f", Allowed: true}))

	got, err := s.RecentAudit(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RecordSession("k1", "kasmweb/chrome:1.8.0"))
	require.NoError(t, s.RecordSession("k2", "kasmweb/terminal:1.8.0"))

	active, err := s.ListSessions(false)
	require.NoError(t, err)
	require.Len(t, active, 2)

	require.NoError(t, s.MarkDestroyed("k1"))

	active, err = s.ListSessions(false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "k2", active[0].KasmID)

	all, err := s.ListSessions(true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, r := range all {
		if r.KasmID == "k1" {
			assert.True(t, r.DestroyedAt.Valid)
		} else {
			assert.False(t, r.DestroyedAt.Valid)
		}
	}
}

func TestMarkDestroyedUnknownSession(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.MarkDestroyed("never-created"))
}

func TestRecordSessionReplacesExisting(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RecordSession("k1", "kasmweb/chrome:1.8.0"))
	require.NoError(t, s.MarkDestroyed("k1"))
	require.NoError(t, s.RecordSession("k1", "kasmweb/chrome:1.9.0"))

	active, err := s.ListSessions(false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "kasmweb/chrome:1.9.0", active[0].Image)
}
