package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
)

const commentSelect = "id,post_id,content,created_at," +
	"user:profiles(username,avatar_url,department)"

// ListComments returns a post's comments, oldest first.
func (c *Client) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	query := url.Values{
		"select":  {commentSelect},
		"post_id": {"eq." + postID},
		"order":   {"created_at.asc"},
	}

	var rows []commentRow
	if err := c.do(ctx, http.MethodGet, "comments", "/rest/v1/comments", query, nil, &rows); err != nil {
		return nil, err
	}

	now := time.Now()
	comments := make([]domain.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, rows[i].toDomain(now))
	}
	return comments, nil
}

// CreateComment inserts a comment under a post and bumps the post's comment
// counter server-side. Both writes must succeed for the comment to count as
// synced; a counter failure surfaces even when the insert went through.
func (c *Client) CreateComment(ctx context.Context, postID, content string) (domain.Comment, error) {
	payload := map[string]any{
		"post_id": postID,
		"content": content,
	}

	query := url.Values{"select": {commentSelect}}

	var rows []commentRow
	if err := c.do(ctx, http.MethodPost, "comments", "/rest/v1/comments", query, payload, &rows); err != nil {
		return domain.Comment{}, err
	}
	if len(rows) == 0 {
		return domain.Comment{}, errors.Transport("insert returned no row")
	}

	if err := c.rpc(ctx, "increment_comments_count", map[string]any{"post_id_input": postID}); err != nil {
		return domain.Comment{}, errors.Wrap(err, errors.CodeTransport, "increment comment counter")
	}
	return rows[0].toDomain(time.Now()), nil
}
