package gateway

import (
	"fmt"
	"time"

	"github.com/yuzhenbei/booktravel/internal/domain"
)

// Row shapes mirror the backend's tables, including the embedded join
// objects PostgREST produces for select=...,user:profiles(...) queries.
// They stay unexported; everything past this file speaks domain types.

type profileJoin struct {
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url"`
	Department string `json:"department"`
}

type bookJoin struct {
	Title string `json:"title"`
}

type postRow struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	TargetUser string       `json:"target_user"`
	Content    string       `json:"content"`
	BookTitle  string       `json:"book_title"`
	Location   string       `json:"location"`
	Likes      int          `json:"likes_count"`
	Comments   int          `json:"comments_count"`
	Image1     string       `json:"image1_url"`
	Image2     string       `json:"image2_url"`
	Avatar2    string       `json:"avatar2_url"`
	Tag        string       `json:"tag"`
	CreatedAt  time.Time    `json:"created_at"`
	User       *profileJoin `json:"user"`
	Book       *bookJoin    `json:"book"`
}

type commentRow struct {
	ID        string       `json:"id"`
	PostID    string       `json:"post_id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	User      *profileJoin `json:"user"`
}

type bookRow struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	CoverURL        string    `json:"cover_url"`
	Nickname        string    `json:"nickname"`
	CurrentLocation string    `json:"current_location"`
	Status          string    `json:"status"`
	DaysInTravel    int       `json:"days_in_travel"`
	TravelCount     int       `json:"travel_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type notificationRow struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AvatarURL string    `json:"avatar_url"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type travelRow struct {
	ID         string       `json:"id"`
	BookID     string       `json:"book_id"`
	NodeType   string       `json:"node_type"`
	Department string       `json:"department"`
	Note       string       `json:"note"`
	CreatedAt  time.Time    `json:"created_at"`
	User       *profileJoin `json:"user"`
}

func (r *postRow) toDomain(now time.Time) domain.Post {
	p := domain.Post{
		ID:         r.ID,
		TargetUser: r.TargetUser,
		Avatar2:    r.Avatar2,
		Time:       displayTime(r.CreatedAt, now),
		CreatedAt:  r.CreatedAt,
		Location:   r.Location,
		BookTitle:  r.BookTitle,
		Content:    r.Content,
		Likes:      r.Likes,
		Comments:   r.Comments,
		Image1:     r.Image1,
		Image2:     r.Image2,
		Tag:        r.Tag,
	}
	if r.User != nil {
		p.UserName = r.User.Username
		p.Avatar1 = r.User.AvatarURL
	}
	if r.Book != nil && r.Book.Title != "" {
		p.BookTitle = r.Book.Title
	}
	return p
}

func (r *commentRow) toDomain(now time.Time) domain.Comment {
	c := domain.Comment{
		ID:        r.ID,
		Content:   r.Content,
		Time:      displayTime(r.CreatedAt, now),
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		c.UserName = r.User.Username
		c.Avatar = r.User.AvatarURL
	}
	return c
}

func (r *bookRow) toDomain() domain.Book {
	status := domain.BookStatus(r.Status)
	if !status.Valid() {
		status = domain.BookAvailable
	}
	return domain.Book{
		ID:           r.ID,
		Title:        r.Title,
		Author:       r.Author,
		Cover:        r.CoverURL,
		Nickname:     r.Nickname,
		Location:     r.CurrentLocation,
		Status:       status,
		DaysInTravel: r.DaysInTravel,
		TravelCount:  r.TravelCount,
		CreatedAt:    r.CreatedAt,
	}
}

func (r *notificationRow) toDomain(now time.Time) domain.Notification {
	kind := domain.NotificationKind(r.Kind)
	if !kind.Valid() {
		kind = domain.NotificationSystem
	}
	return domain.Notification{
		ID:        r.ID,
		Kind:      kind,
		Title:     r.Title,
		Content:   r.Content,
		Time:      displayTime(r.CreatedAt, now),
		CreatedAt: r.CreatedAt,
		Unread:    !r.Read,
		Avatar:    r.AvatarURL,
	}
}

func (r *travelRow) toDomain() domain.TravelNode {
	nodeType := domain.TravelNodeType(r.NodeType)
	switch nodeType {
	case domain.TravelStart, domain.TravelTransit, domain.TravelCurrent:
	default:
		nodeType = domain.TravelTransit
	}
	n := domain.TravelNode{
		Department: r.Department,
		Date:       r.CreatedAt.Format("2006-01-02"),
		Type:       nodeType,
		Note:       r.Note,
	}
	if r.User != nil {
		n.User = r.User.Username
		if n.Department == "" {
			n.Department = r.User.Department
		}
	}
	return n
}

// displayTime renders a coarse relative timestamp the way the feed shows it.
// Records younger than a minute collapse to the "just now" marker.
func displayTime(t, now time.Time) string {
	if t.IsZero() {
		return domain.TimeJustNow
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return domain.TimeJustNow
	case d < time.Hour:
		return fmt.Sprintf("%d分钟前", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d小时前", int(d.Hours()))
	case d < 48*time.Hour:
		return "昨天"
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d天前", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
