package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateLocksImmediately(t *testing.T) {
	var g Gate
	require.NoError(t, g.Begin(1, "u1"))
	assert.True(t, g.Locked())
	assert.ErrorIs(t, g.Begin(1, "u1"), ErrSubmissionLocked)
}

func TestGateSuccessWaitsForNextSnapshot(t *testing.T) {
	var g Gate
	require.NoError(t, g.Begin(3, "u1"))
	g.Accept()
	assert.True(t, g.Locked())

	g.Observe(3)
	assert.True(t, g.Locked())
	g.Observe(4)
	assert.False(t, g.Locked())
}

func TestGateSnapshotDuringFlightKeepsLock(t *testing.T) {
	var g Gate
	require.NoError(t, g.Begin(3, "u1"))
	g.Observe(4)
	assert.True(t, g.Locked())
}

func TestGateSuccessAfterNewerSnapshotUnlocks(t *testing.T) {
	var g Gate
	require.NoError(t, g.Begin(1, "u1"))
	g.Observe(2)
	assert.True(t, g.Locked())

	g.Accept()
	assert.False(t, g.Locked())
}

func TestGateRejection(t *testing.T) {
	tests := []struct {
		name         string
		currentActor string
		reenabled    bool
	}{
		{"same actor", "u1", true},
		{"actor moved on", "u2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Gate
			require.NoError(t, g.Begin(3, "u1"))
			g.Observe(4)
			assert.Equal(t, tt.reenabled, g.Reject(tt.currentActor))
			assert.Equal(t, !tt.reenabled, g.Locked())
		})
	}
}

func TestGateStaleRejectionUnlocksOnNextSnapshot(t *testing.T) {
	var g Gate
	require.NoError(t, g.Begin(3, "u1"))
	assert.False(t, g.Reject("u2"))
	assert.True(t, g.Locked())
	g.Observe(5)
	assert.False(t, g.Locked())
	assert.False(t, g.Reject("u1"), "nothing to reject once unlocked")
}
