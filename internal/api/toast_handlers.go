package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yuzhenbei/booktravel/internal/store"
)

func (s *Server) registerToastRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listToasts",
		Method:      http.MethodGet,
		Path:        "/api/v1/toasts",
		Summary:     "List active toasts",
		Tags:        []string{"Toasts"},
	}, s.handleListToasts)

	huma.Register(s.api, huma.Operation{
		OperationID: "dismissToast",
		Method:      http.MethodDelete,
		Path:        "/api/v1/toasts/{toastID}",
		Summary:     "Dismiss a toast early",
		Tags:        []string{"Toasts"},
	}, s.handleDismissToast)
}

// ToastsResponse contains the live toasts.
type ToastsResponse struct {
	Toasts []store.Toast `json:"toasts" doc:"Active toasts, oldest first"`
}

// ToastsOutput wraps the toasts response for Huma.
type ToastsOutput struct {
	Body ToastsResponse
}

// DismissToastInput identifies a toast.
type DismissToastInput struct {
	ToastID string `path:"toastID" doc:"Toast ID"`
}

func (s *Server) handleListToasts(_ context.Context, _ *struct{}) (*ToastsOutput, error) {
	out := &ToastsOutput{}
	out.Body.Toasts = s.toasts.Active()
	return out, nil
}

func (s *Server) handleDismissToast(_ context.Context, input *DismissToastInput) (*ToastsOutput, error) {
	s.toasts.Dismiss(input.ToastID)
	out := &ToastsOutput{}
	out.Body.Toasts = s.toasts.Active()
	return out, nil
}
