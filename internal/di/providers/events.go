package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/yuzhenbei/booktravel/internal/events"
	"github.com/yuzhenbei/booktravel/internal/logger"
)

// EventsManagerHandle wraps the change-stream manager with its context for
// lifecycle management.
type EventsManagerHandle struct {
	*events.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *EventsManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideEventsManager provides the server-sent events manager.
func ProvideEventsManager(i do.Injector) (*EventsManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := events.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("change stream manager started")

	return &EventsManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}
