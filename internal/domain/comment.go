package domain

import "time"

// Comment belongs to exactly one post. The post holds comments by value in
// its thread view; a comment can still be fetched independently of its parent.
type Comment struct {
	ID        string    `json:"id"`
	UserName  string    `json:"user_name"`
	Avatar    string    `json:"avatar,omitempty"`
	Content   string    `json:"content"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
