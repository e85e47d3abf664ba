package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
)

const postSelect = "id,user_id,target_user,content,book_title,location,likes_count," +
	"comments_count,image1_url,image2_url,avatar2_url,tag,created_at," +
	"user:profiles(username,avatar_url,department),book:books(title)"

// ListPosts returns the community feed, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	query := url.Values{
		"select": {postSelect},
		"order":  {"created_at.desc"},
	}

	var rows []postRow
	if err := c.do(ctx, http.MethodGet, "posts", "/rest/v1/posts", query, nil, &rows); err != nil {
		return nil, err
	}

	now := time.Now()
	posts := make([]domain.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, rows[i].toDomain(now))
	}
	return posts, nil
}

// CreatePost inserts a new feed post and returns the stored row.
func (c *Client) CreatePost(ctx context.Context, draft domain.PostDraft) (domain.Post, error) {
	payload := map[string]any{
		"target_user": draft.TargetUser,
		"content":     draft.Content,
		"location":    draft.Location,
		"book_title":  draft.BookTitle,
		"image1_url":  draft.Image1,
		"image2_url":  draft.Image2,
		"avatar2_url": draft.Avatar2,
		"tag":         draft.Tag,
	}

	query := url.Values{"select": {postSelect}}

	// PostgREST echoes inserted rows back as an array.
	var rows []postRow
	if err := c.do(ctx, http.MethodPost, "posts", "/rest/v1/posts", query, payload, &rows); err != nil {
		return domain.Post{}, err
	}
	if len(rows) == 0 {
		return domain.Post{}, errors.Transport("insert returned no row")
	}
	return rows[0].toDomain(time.Now()), nil
}
