package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/yuzhenbei/booktravel/internal/events"
	"github.com/yuzhenbei/booktravel/internal/id"
)

// ToastDismissAfter is how long a toast stays up before auto-dismissing.
const ToastDismissAfter = 3000 * time.Millisecond

// ToastKind styles a toast.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastInfo    ToastKind = "info"
)

// Toast is one transient confirmation message.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      ToastKind `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// ToastCenter owns the set of live toasts. Every toast auto-dismisses after
// the configured duration unless dismissed earlier.
type ToastCenter struct {
	mu           sync.Mutex
	toasts       []Toast
	timers       map[string]*time.Timer
	emitter      EventEmitter
	logger       *slog.Logger
	dismissAfter time.Duration
	closed       bool
}

// NewToastCenter creates a toast center. dismissAfter <= 0 falls back to the
// default duration.
func NewToastCenter(emitter EventEmitter, dismissAfter time.Duration, logger *slog.Logger) *ToastCenter {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	if dismissAfter <= 0 {
		dismissAfter = ToastDismissAfter
	}
	return &ToastCenter{
		timers:       make(map[string]*time.Timer),
		emitter:      emitter,
		logger:       logger,
		dismissAfter: dismissAfter,
	}
}

// Show raises a toast and schedules its auto-dismiss.
func (t *ToastCenter) Show(message string, kind ToastKind) string {
	toast := Toast{
		ID:        id.MustGenerate("toast"),
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ""
	}
	t.toasts = append(t.toasts, toast)
	t.timers[toast.ID] = time.AfterFunc(t.dismissAfter, func() {
		t.Dismiss(toast.ID)
	})
	t.mu.Unlock()

	t.emitter.Emit(events.New(events.EventToastShown, toast))
	return toast.ID
}

// Dismiss removes a toast. Idempotent; dismissing an unknown id is a no-op.
func (t *ToastCenter) Dismiss(toastID string) {
	t.mu.Lock()
	timer, known := t.timers[toastID]
	if !known {
		t.mu.Unlock()
		return
	}
	delete(t.timers, toastID)
	for i := range t.toasts {
		if t.toasts[i].ID == toastID {
			t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
			break
		}
	}
	t.mu.Unlock()

	timer.Stop()
	t.emitter.Emit(events.New(events.EventToastDismissed, map[string]string{"id": toastID}))
}

// Active returns the live toasts, oldest first.
func (t *ToastCenter) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}

// Close cancels all pending auto-dismiss timers.
func (t *ToastCenter) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for toastID, timer := range t.timers {
		timer.Stop()
		delete(t.timers, toastID)
	}
	t.toasts = nil
}
