package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
)

const bookSelect = "id,title,author,cover_url,nickname,current_location," +
	"status,days_in_travel,travel_count,created_at"

// ListBooks returns every book known to the gateway, newest first.
func (c *Client) ListBooks(ctx context.Context) ([]domain.Book, error) {
	query := url.Values{
		"select": {bookSelect},
		"order":  {"created_at.desc"},
	}

	var rows []bookRow
	if err := c.do(ctx, http.MethodGet, "books", "/rest/v1/books", query, nil, &rows); err != nil {
		return nil, err
	}

	books := make([]domain.Book, 0, len(rows))
	for i := range rows {
		books = append(books, rows[i].toDomain())
	}
	return books, nil
}

// GetBook fetches a single book by id.
func (c *Client) GetBook(ctx context.Context, bookID string) (domain.Book, error) {
	query := url.Values{
		"select": {bookSelect},
		"id":     {"eq." + bookID},
	}

	var rows []bookRow
	if err := c.do(ctx, http.MethodGet, "books", "/rest/v1/books", query, nil, &rows); err != nil {
		return domain.Book{}, err
	}
	if len(rows) == 0 {
		return domain.Book{}, errors.NotFoundf("book %s not found", bookID)
	}
	return rows[0].toDomain(), nil
}

// CreateBook registers a new book and seeds its travel history with the
// starting node.
func (c *Client) CreateBook(ctx context.Context, draft domain.BookDraft) (domain.Book, error) {
	payload := map[string]any{
		"title":     draft.Title,
		"author":    draft.Author,
		"cover_url": draft.Cover,
		"nickname":  draft.Nickname,
		"status":    string(domain.BookAvailable),
	}

	query := url.Values{"select": {bookSelect}}

	var rows []bookRow
	if err := c.do(ctx, http.MethodPost, "books", "/rest/v1/books", query, payload, &rows); err != nil {
		return domain.Book{}, err
	}
	if len(rows) == 0 {
		return domain.Book{}, errors.Transport("insert returned no row")
	}
	book := rows[0].toDomain()

	start := map[string]any{
		"book_id":   book.ID,
		"node_type": string(domain.TravelStart),
		"note":      "上架",
	}
	if err := c.do(ctx, http.MethodPost, "travel_history", "/rest/v1/travel_history", nil, start, nil); err != nil {
		return domain.Book{}, errors.Wrap(err, errors.CodeTransport, "seed travel history")
	}
	return book, nil
}

// UpdateBookStatus patches a book's status field.
func (c *Client) UpdateBookStatus(ctx context.Context, bookID string, status domain.BookStatus) error {
	if !status.Valid() {
		return errors.Validationf("invalid book status %q", status)
	}

	query := url.Values{"id": {"eq." + bookID}}
	payload := map[string]any{"status": string(status)}

	return c.do(ctx, http.MethodPatch, "books", "/rest/v1/books", query, payload, nil)
}

// ListTravelHistory returns a book's journey, oldest stop first.
func (c *Client) ListTravelHistory(ctx context.Context, bookID string) ([]domain.TravelNode, error) {
	query := url.Values{
		"select": {"id,book_id,node_type,department,note,created_at," +
			"user:profiles(username,avatar_url,department)"},
		"book_id": {"eq." + bookID},
		"order":   {"created_at.asc"},
	}

	var rows []travelRow
	if err := c.do(ctx, http.MethodGet, "travel_history", "/rest/v1/travel_history", query, nil, &rows); err != nil {
		return nil, err
	}

	nodes := make([]domain.TravelNode, 0, len(rows))
	for i := range rows {
		nodes = append(nodes, rows[i].toDomain())
	}
	return nodes, nil
}

// ApplyForBook reserves an available book for the signed-in user via the
// server-side function, which rejects books that are not available.
func (c *Client) ApplyForBook(ctx context.Context, bookID string) error {
	return c.rpc(ctx, "apply_for_book", map[string]any{"book_id_input": bookID})
}
