package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	krl := New(1.0, 2)
	defer krl.Stop()

	assert.True(t, krl.Allow("posts"))
	assert.True(t, krl.Allow("posts"))
	assert.False(t, krl.Allow("posts"), "burst exhausted")
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(1.0, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("posts"))
	assert.False(t, krl.Allow("posts"))

	// A different key has its own bucket.
	assert.True(t, krl.Allow("books"))
}

func TestWait_RespectsContext(t *testing.T) {
	krl := New(0.1, 1)
	defer krl.Stop()

	require.True(t, krl.Allow("notifications"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := krl.Wait(ctx, "notifications")
	assert.Error(t, err, "wait should give up when the context expires")
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1.0, 1)
	krl.Stop()
	krl.Stop()
}
