package domain

import "time"

// BookStatus tracks where a circulating book is in its travel lifecycle.
type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookTraveling BookStatus = "traveling"
	BookReserved  BookStatus = "reserved"
)

// Valid checks if the status is valid.
func (s BookStatus) Valid() bool {
	switch s {
	case BookAvailable, BookTraveling, BookReserved:
		return true
	default:
		return false
	}
}

// Book is read-mostly reference data owned by the remote gateway. The station
// caches it and only mutates status as a side effect of a handover.
type Book struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Cover        string     `json:"cover,omitempty"`
	Nickname     string     `json:"nickname,omitempty"`
	Location     string     `json:"location,omitempty"`
	Status       BookStatus `json:"status"`
	DaysInTravel int        `json:"days_in_travel,omitempty"`
	TravelCount  int        `json:"travel_count,omitempty"`
	CreatedAt    time.Time  `json:"created_at,omitzero"`
}

// BookDraft is the caller-supplied part of a newly listed book.
type BookDraft struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	Cover    string `json:"cover,omitempty"`
	Nickname string `json:"nickname,omitempty" validate:"max=40"`
}

// HostedBook is a book currently (or formerly) in the station owner's
// custody, with the display annotations the station view shows.
type HostedBook struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Nickname string `json:"nickname,omitempty"`
	Status   string `json:"status"`
	Active   bool   `json:"active"`
	Cover    string `json:"cover,omitempty"`
	Distance string `json:"distance,omitempty"`
	Receiver string `json:"receiver,omitempty"`
	// Progress is the displayed hosting progress percentage, derived from
	// the id so it is stable across refreshes.
	Progress int `json:"progress"`
}

// MatchesQuery reports whether the book matches a station search query.
// Matching is case-insensitive substring over title, author, and nickname.
func (b *HostedBook) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	return containsFold(b.Title, query) ||
		containsFold(b.Author, query) ||
		containsFold(b.Nickname, query)
}

// TravelNodeType marks a stop's role in a book's journey.
type TravelNodeType string

const (
	TravelStart   TravelNodeType = "start"
	TravelTransit TravelNodeType = "transit"
	TravelCurrent TravelNodeType = "current"
)

// TravelNode is one stop in a book's travel history.
type TravelNode struct {
	Department string         `json:"department"`
	Date       string         `json:"date"`
	User       string         `json:"user"`
	Type       TravelNodeType `json:"type"`
	Note       string         `json:"note,omitempty"`
}
