package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yuzhenbei/booktravel/internal/domain"
	domainerrors "github.com/yuzhenbei/booktravel/internal/errors"
)

func (s *Server) registerThreadRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "openThread",
		Method:      http.MethodPost,
		Path:        "/api/v1/feed/posts/{postID}/thread",
		Summary:     "Open a comment thread",
		Description: "Makes the post the active thread and fetches its comments",
		Tags:        []string{"Thread"},
	}, s.handleOpenThread)

	huma.Register(s.api, huma.Operation{
		OperationID: "getActiveThread",
		Method:      http.MethodGet,
		Path:        "/api/v1/thread",
		Summary:     "Get the active thread",
		Tags:        []string{"Thread"},
	}, s.handleGetActiveThread)

	huma.Register(s.api, huma.Operation{
		OperationID: "retryThread",
		Method:      http.MethodPost,
		Path:        "/api/v1/thread/retry",
		Summary:     "Retry loading the active thread's comments",
		Tags:        []string{"Thread"},
	}, s.handleRetryThread)

	huma.Register(s.api, huma.Operation{
		OperationID:   "sendComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/thread/comments",
		Summary:       "Send a comment to the active thread",
		Tags:          []string{"Thread"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSendComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "closeThread",
		Method:      http.MethodDelete,
		Path:        "/api/v1/thread",
		Summary:     "Close the active thread",
		Tags:        []string{"Thread"},
	}, s.handleCloseThread)
}

// === DTOs ===

// ThreadResponse is the active thread: the post with its comment list loaded.
type ThreadResponse struct {
	Post   domain.Post `json:"post" doc:"Post with its comment thread"`
	Active bool        `json:"active" doc:"Whether a thread is currently open"`
}

// ThreadOutput wraps the thread response for Huma.
type ThreadOutput struct {
	Body ThreadResponse
}

// SendCommentInput carries the text of a new comment.
type SendCommentInput struct {
	Body struct {
		Content string `json:"content" doc:"Comment text; whitespace-only is ignored"`
	}
}

// CommentOutput wraps a single comment for Huma.
type CommentOutput struct {
	Body domain.Comment
}

// ClosedOutput acknowledges that the thread was closed.
type ClosedOutput struct {
	Body struct {
		Closed bool `json:"closed"`
	}
}

// === Handlers ===

func (s *Server) handleOpenThread(ctx context.Context, input *GetPostInput) (*ThreadOutput, error) {
	post, err := s.threads.OpenThread(ctx, input.PostID)
	if err != nil {
		return nil, err
	}

	out := &ThreadOutput{}
	out.Body.Post = post
	out.Body.Active = true
	return out, nil
}

func (s *Server) handleGetActiveThread(_ context.Context, _ *struct{}) (*ThreadOutput, error) {
	post, ok := s.threads.Active()
	if !ok {
		return nil, domainerrors.NotFound("no active thread")
	}

	out := &ThreadOutput{}
	out.Body.Post = post
	out.Body.Active = true
	return out, nil
}

func (s *Server) handleRetryThread(ctx context.Context, _ *struct{}) (*ThreadOutput, error) {
	post, err := s.threads.Retry(ctx)
	if err != nil {
		return nil, err
	}

	out := &ThreadOutput{}
	out.Body.Post = post
	out.Body.Active = true
	return out, nil
}

func (s *Server) handleSendComment(ctx context.Context, input *SendCommentInput) (*CommentOutput, error) {
	comment, err := s.threads.SendComment(ctx, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleCloseThread(_ context.Context, _ *struct{}) (*ClosedOutput, error) {
	s.threads.CloseThread()
	out := &ClosedOutput{}
	out.Body.Closed = true
	return out, nil
}
