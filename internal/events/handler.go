package events

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Handler serves the change stream at GET /api/v1/stream.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler creates a stream handler.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

// ServeHTTP upgrades the request into a long-lived SSE stream.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect()
	if err != nil {
		h.logger.Error("failed to register stream client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	clientLogger := h.logger.With(slog.String("client_id", client.ID))

	if err := h.sendEvent(w, rc, "connected", map[string]string{
		"client_id": client.ID,
	}); err != nil {
		clientLogger.Warn("failed to send connection message", slog.String("error", err.Error()))
		return
	}

	ctx := r.Context()
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case event := <-client.EventChan:
			if err := h.sendEvent(w, rc, string(event.Type), event); err != nil {
				clientLogger.Info("client disconnected during send")
				return
			}

		case <-heartbeat.C:
			hb := NewHeartbeatEvent()
			if err := h.sendEvent(w, rc, string(hb.Type), hb); err != nil {
				clientLogger.Info("client disconnected during heartbeat")
				return
			}

		case <-client.Done:
			clientLogger.Info("client closed by manager")
			return

		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	if err := rc.SetWriteDeadline(time.Now().Add(60 * time.Second)); err != nil {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}
	return nil
}
