// Package domain contains the core business entities and domain logic for the BookTravel station.
package domain

import "time"

// TagAll is the sentinel tag that matches every post.
const TagAll = "全部"

// TimeJustNow is the display marker for freshly created records that have not
// yet been reconciled with a gateway timestamp.
const TimeJustNow = "刚刚"

// Post represents a community feed entry: one reader passing a book (or a
// thought about it) along to the rest of the circle.
type Post struct {
	ID         string    `json:"id"`
	UserName   string    `json:"user_name"`
	TargetUser string    `json:"target_user"`
	Avatar1    string    `json:"avatar1,omitempty"`
	Avatar2    string    `json:"avatar2,omitempty"`
	Time       string    `json:"time"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
	Location   string    `json:"location,omitempty"`
	BookTitle  string    `json:"book_title"`
	Content    string    `json:"content"`
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	Image1     string    `json:"image1,omitempty"`
	Image2     string    `json:"image2,omitempty"`
	Liked      bool      `json:"liked"`
	HasCoffee  bool      `json:"has_coffee"`
	Tag        string    `json:"tag,omitempty"`

	// CommentsList is loaded lazily when a thread is opened; nil means
	// "not loaded", an empty slice means "loaded, no comments yet".
	CommentsList []Comment `json:"comments_list,omitempty"`
}

// PostDraft is the caller-supplied part of a new post. The store assigns
// id, time, likes, and comments; the gateway resolves the author server-side.
type PostDraft struct {
	UserName   string `json:"user_name"`
	TargetUser string `json:"target_user"`
	Avatar1    string `json:"avatar1,omitempty"`
	Avatar2    string `json:"avatar2,omitempty"`
	Location   string `json:"location,omitempty"`
	BookTitle  string `json:"book_title" validate:"required"`
	Content    string `json:"content" validate:"required,max=2000"`
	Image1     string `json:"image1,omitempty"`
	Image2     string `json:"image2,omitempty"`
	Tag        string `json:"tag,omitempty"`
}

// MatchesTag reports whether the post belongs to the given tag filter.
// The TagAll sentinel matches everything; otherwise the match is exact.
func (p *Post) MatchesTag(tag string) bool {
	if tag == TagAll {
		return true
	}
	return p.Tag == tag
}

// ToggleLike flips the liked flag and adjusts the like counter in one step.
// Repeated toggles always flip, never set, so the operation is its own inverse.
func (p *Post) ToggleLike() {
	if p.Liked {
		p.Liked = false
		p.Likes--
	} else {
		p.Liked = true
		p.Likes++
	}
}
