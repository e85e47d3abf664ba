package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yuzhenbei/booktravel/internal/id"
)

// Client represents one connected view subscriber.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
}

// Manager owns the set of connected clients and fans events out to them.
type Manager struct {
	clients           map[string]*Client
	events            chan Event
	logger            *slog.Logger
	wg                sync.WaitGroup
	heartbeatInterval time.Duration
	mu                sync.RWMutex

	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates an event manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		clients:           make(map[string]*Client),
		events:            make(chan Event, 256),
		logger:            logger,
		heartbeatInterval: 30 * time.Second,
	}
}

// Start runs the fan-out loop. Call once at startup, in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	heartbeat := time.NewTicker(m.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event := <-m.events:
			m.broadcast(event)

		case <-heartbeat.C:
			m.broadcast(NewHeartbeatEvent())

		case <-ctx.Done():
			m.logger.Info("event manager stopping")
			m.closeAllClients()
			return
		}
	}
}

// Shutdown stops intake, drains queued events, and closes all clients.
func (m *Manager) Shutdown(ctx context.Context) error {
	// Flip the flag and close the channel under the same lock so Emit,
	// which holds the read lock across its send, cannot race the close.
	m.shutdownMu.Lock()
	m.shutdown = true
	close(m.events)
	m.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		for event := range m.events {
			m.broadcast(event)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("event drain timeout, some events may be lost")
	}

	m.wg.Wait()
	return nil
}

// Emit queues an event for fan-out. Non-blocking: a full queue drops the
// event rather than stalling a store mutation.
func (m *Manager) Emit(event Event) {
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()

	if m.shutdown {
		return
	}

	select {
	case m.events <- event:
	default:
		m.logger.Error("event queue full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// broadcast sends an event to every connected client, dropping for clients
// whose buffers are full.
func (m *Manager) broadcast(event Event) {
	var delivered, dropped int

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		select {
		case client.EventChan <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("dropped event for slow client",
				slog.String("client_id", client.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("event broadcast",
			slog.String("event_type", string(event.Type)),
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped))
	}
}

// Connect registers a new subscriber.
func (m *Manager) Connect() (*Client, error) {
	clientID, err := id.Generate("sub")
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:          clientID,
		EventChan:   make(chan Event, 64),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	m.clients[client.ID] = client
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("event client connected",
		slog.String("client_id", clientID),
		slog.Int("total_clients", total))
	return client, nil
}

// Disconnect removes a client and closes its channels.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.clients, clientID)
	total := len(m.clients)
	m.mu.Unlock()

	close(client.Done)
	close(client.EventChan)

	m.logger.Info("event client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("duration", time.Since(client.ConnectedAt)),
		slog.Int("total_clients", total))
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, client := range m.clients {
		close(client.Done)
		close(client.EventChan)
	}
	m.clients = make(map[string]*Client)
}
