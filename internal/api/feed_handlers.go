package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yuzhenbei/booktravel/internal/domain"
	domainerrors "github.com/yuzhenbei/booktravel/internal/errors"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed/posts",
		Summary:     "List feed posts",
		Description: "Returns the current feed, optionally filtered by tag",
		Tags:        []string{"Feed"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshFeed",
		Method:      http.MethodPost,
		Path:        "/api/v1/feed/refresh",
		Summary:     "Refresh the feed from the gateway",
		Tags:        []string{"Feed"},
	}, s.handleRefreshFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed/posts/{postID}",
		Summary:     "Get a single post",
		Tags:        []string{"Feed"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/api/v1/feed/posts",
		Summary:       "Create a post",
		Description:   "Creates a post optimistically; the post appears immediately and syncs in the background",
		Tags:          []string{"Feed"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/feed/posts/{postID}/like",
		Summary:     "Toggle like on a post",
		Tags:        []string{"Feed"},
	}, s.handleToggleLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "giftCoffee",
		Method:      http.MethodPost,
		Path:        "/api/v1/feed/posts/{postID}/coffee",
		Summary:     "Gift a coffee to a post",
		Tags:        []string{"Feed"},
	}, s.handleGiftCoffee)
}

// === DTOs ===

// ListPostsInput contains parameters for listing the feed.
type ListPostsInput struct {
	Tag string `query:"tag" doc:"Tag filter; the sentinel tag returns every post"`
}

// PostsResponse contains a page of feed posts.
type PostsResponse struct {
	Posts []domain.Post `json:"posts" doc:"Feed posts, newest first"`
	Total int           `json:"total" doc:"Number of posts returned"`
}

// PostsOutput wraps the feed response for Huma.
type PostsOutput struct {
	Body PostsResponse
}

// GetPostInput identifies a single post.
type GetPostInput struct {
	PostID string `path:"postID" doc:"Post ID"`
}

// PostOutput wraps a single post for Huma.
type PostOutput struct {
	Body domain.Post
}

// CreatePostInput carries the draft of a new post.
type CreatePostInput struct {
	Body domain.PostDraft
}

// === Handlers ===

func (s *Server) handleListPosts(_ context.Context, input *ListPostsInput) (*PostsOutput, error) {
	var posts []domain.Post
	if input.Tag == "" {
		posts = s.feed.Posts()
	} else {
		posts = s.feed.FilterByTag(input.Tag)
	}

	out := &PostsOutput{}
	out.Body.Posts = posts
	out.Body.Total = len(posts)
	return out, nil
}

func (s *Server) handleRefreshFeed(ctx context.Context, _ *struct{}) (*PostsOutput, error) {
	if err := s.feed.LoadPosts(ctx); err != nil {
		return nil, err
	}

	posts := s.feed.Posts()
	out := &PostsOutput{}
	out.Body.Posts = posts
	out.Body.Total = len(posts)
	return out, nil
}

func (s *Server) handleGetPost(_ context.Context, input *GetPostInput) (*PostOutput, error) {
	post, err := s.feed.Post(input.PostID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	post, err := s.feed.CreatePost(ctx, input.Body)
	if err != nil {
		var derr *domainerrors.Error
		if errors.As(err, &derr) && derr.Code == domainerrors.CodeSyncFailed {
			// The post was accepted locally; let the response carry it
			// alongside the pending-sync status.
			return nil, derr.WithDetails(post)
		}
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleToggleLike(_ context.Context, input *GetPostInput) (*PostOutput, error) {
	post, err := s.feed.ToggleLike(input.PostID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleGiftCoffee(_ context.Context, input *GetPostInput) (*PostOutput, error) {
	post, err := s.feed.GiftCoffee(input.PostID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}
