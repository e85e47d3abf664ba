package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/yuzhenbei/booktravel/internal/api"
	"github.com/yuzhenbei/booktravel/internal/config"
	"github.com/yuzhenbei/booktravel/internal/events"
	"github.com/yuzhenbei/booktravel/internal/identity"
	"github.com/yuzhenbei/booktravel/internal/logger"
	"github.com/yuzhenbei/booktravel/internal/store"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the local HTTP server the view layer talks to.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	eventsHandle := do.MustInvoke[*EventsManagerHandle](i)

	feed := do.MustInvoke[*store.FeedStore](i)
	threads := do.MustInvoke[*store.ThreadStore](i)
	notifications := do.MustInvoke[*store.NotificationCenter](i)
	station := do.MustInvoke[*store.StationStore](i)
	toasts := do.MustInvoke[*ToastCenterHandle](i)
	idc := do.MustInvoke[*identity.Client](i)

	streamHandler := events.NewHandler(eventsHandle.Manager, log.Logger)

	handler := api.NewServer(feed, threads, notifications, station, toasts.ToastCenter, idc, streamHandler, api.Options{
		Name:           cfg.Server.Name,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
