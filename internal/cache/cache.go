// Package cache persists last-known snapshots of the remote collections so
// the daemon can present state before its first gateway round-trip. The
// gateway remains authoritative; cached rows are overwritten on every
// successful refresh and never synced back.
package cache

import (
	"database/sql"
	_ "embed"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
)

//go:embed schema.sql
var schemaSQL string

// Record kinds stored in the snapshot table.
const (
	kindPosts         = "posts"
	kindBooks         = "books"
	kindNotifications = "notifications"
)

// Cache is a SQLite-backed snapshot store.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the cache at path, configuring WAL mode and running the
// schema migration.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Cache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SavePosts stores the feed snapshot.
func (c *Cache) SavePosts(posts []domain.Post) error {
	return c.save(kindPosts, posts)
}

// LoadPosts returns the cached feed snapshot, NotFound when none exists.
func (c *Cache) LoadPosts() ([]domain.Post, error) {
	var posts []domain.Post
	if err := c.load(kindPosts, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SaveBooks stores the book snapshot.
func (c *Cache) SaveBooks(books []domain.Book) error {
	return c.save(kindBooks, books)
}

// LoadBooks returns the cached book snapshot, NotFound when none exists.
func (c *Cache) LoadBooks() ([]domain.Book, error) {
	var books []domain.Book
	if err := c.load(kindBooks, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// SaveNotifications stores the notification snapshot.
func (c *Cache) SaveNotifications(notifications []domain.Notification) error {
	return c.save(kindNotifications, notifications)
}

// LoadNotifications returns the cached notification snapshot, NotFound when
// none exists.
func (c *Cache) LoadNotifications() ([]domain.Notification, error) {
	var notifications []domain.Notification
	if err := c.load(kindNotifications, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// SavedAt reports when a kind's snapshot was last written.
func (c *Cache) SavedAt(kind string) (time.Time, error) {
	var saved string
	err := c.db.QueryRow(`SELECT saved_at FROM snapshots WHERE kind = ?`, kind).Scan(&saved)
	if err == sql.ErrNoRows {
		return time.Time{}, errors.NotFoundf("no %s snapshot", kind)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query snapshot age: %w", err)
	}
	return time.Parse(time.RFC3339Nano, saved)
}

func (c *Cache) save(kind string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "encode %s snapshot", kind)
	}

	_, err = c.db.Exec(`
		INSERT INTO snapshots (kind, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		kind, string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save %s snapshot: %w", kind, err)
	}

	c.logger.Debug("snapshot saved", "kind", kind, "bytes", len(payload))
	return nil
}

func (c *Cache) load(kind string, out any) error {
	var payload string
	err := c.db.QueryRow(`SELECT payload FROM snapshots WHERE kind = ?`, kind).Scan(&payload)
	if err == sql.ErrNoRows {
		return errors.NotFoundf("no %s snapshot", kind)
	}
	if err != nil {
		return fmt.Errorf("load %s snapshot: %w", kind, err)
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "decode %s snapshot", kind)
	}
	return nil
}
