package events

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, context.CancelFunc) {
	t.Helper()
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	return m, cancel
}

func waitForEvent(t *testing.T, ch chan Event, want Type) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestEmitReachesConnectedClient(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	client, err := m.Connect()
	require.NoError(t, err)
	defer m.Disconnect(client.ID)

	m.Emit(New(EventPostCreated, map[string]string{"id": "post-1"}))

	ev := waitForEvent(t, client.EventChan, EventPostCreated)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestDisconnectRemovesClient(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	client, err := m.Connect()
	require.NoError(t, err)
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	select {
	case <-client.Done:
	case <-time.After(time.Second):
		t.Fatal("done channel not closed")
	}

	// Idempotent.
	m.Disconnect(client.ID)
}

func TestSlowClientDoesNotBlockOthers(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	slow, err := m.Connect()
	require.NoError(t, err)
	defer m.Disconnect(slow.ID)

	fast, err := m.Connect()
	require.NoError(t, err)
	defer m.Disconnect(fast.ID)

	// Never read from slow; overflow its buffer and then some.
	for range cap(slow.EventChan) + 16 {
		m.Emit(New(EventPostUpdated, nil))
	}

	// The fast client keeps receiving.
	go func() {
		for range fast.EventChan { //nolint:revive // drain
		}
	}()

	m.Emit(New(EventFeedRefreshed, nil))
	assert.Eventually(t, func() bool {
		return m.ClientCount() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestEmitAfterShutdownIsDropped(t *testing.T) {
	m, cancel := newTestManager(t)
	cancel()

	ctx, cancelShutdown := context.WithTimeout(context.Background(), time.Second)
	defer cancelShutdown()
	require.NoError(t, m.Shutdown(ctx))

	// Must not panic on the closed channel.
	m.Emit(New(EventPostCreated, nil))
}

func TestShutdownClosesClients(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)

	client, err := m.Connect()
	require.NoError(t, err)

	cancel()

	select {
	case <-client.Done:
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed on manager stop")
	}
	assert.Equal(t, 0, m.ClientCount())
}
