package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yuzhenbei/booktravel/internal/domain"
	domainerrors "github.com/yuzhenbei/booktravel/internal/errors"
)

func (s *Server) registerStationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listHostedBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/station/hosted",
		Summary:     "List hosted books",
		Description: "Books currently in the owner's custody, optionally filtered by search query",
		Tags:        []string{"Station"},
	}, s.handleListHosted)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCirculatedBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/station/circulated",
		Summary:     "List circulated books",
		Description: "Books the owner has passed on and that are now traveling",
		Tags:        []string{"Station"},
	}, s.handleListCirculated)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshStation",
		Method:      http.MethodPost,
		Path:        "/api/v1/station/refresh",
		Summary:     "Refresh the station shelves from the gateway",
		Tags:        []string{"Station"},
	}, s.handleRefreshStation)

	huma.Register(s.api, huma.Operation{
		OperationID:   "hostBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/station/books",
		Summary:       "List a new book at the station",
		Tags:          []string{"Station"},
		DefaultStatus: http.StatusCreated,
	}, s.handleHostBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/station/books/{bookID}",
		Summary:     "Get one book's full record",
		Tags:        []string{"Station"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTravelHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/station/books/{bookID}/travel",
		Summary:     "Get a book's travel history",
		Tags:        []string{"Station"},
	}, s.handleTravelHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyForBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/station/books/{bookID}/apply",
		Summary:     "Apply to receive a circulating book",
		Tags:        []string{"Station"},
	}, s.handleApplyForBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "beginHandover",
		Method:        http.MethodPost,
		Path:          "/api/v1/station/handover",
		Summary:       "Begin a handover workflow",
		Description:   "Opens the handover form for a hosted book; only one workflow can run at a time",
		Tags:          []string{"Handover"},
		DefaultStatus: http.StatusCreated,
	}, s.handleBeginHandover)

	huma.Register(s.api, huma.Operation{
		OperationID: "getActiveHandover",
		Method:      http.MethodGet,
		Path:        "/api/v1/station/handover",
		Summary:     "Get the active handover workflow",
		Tags:        []string{"Handover"},
	}, s.handleGetActiveHandover)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmHandover",
		Method:      http.MethodPost,
		Path:        "/api/v1/station/handover/confirm",
		Summary:     "Confirm the active handover",
		Description: "Drives the workflow through processing; on success the book moves to the circulated shelf",
		Tags:        []string{"Handover"},
	}, s.handleConfirmHandover)

	huma.Register(s.api, huma.Operation{
		OperationID: "dismissHandover",
		Method:      http.MethodDelete,
		Path:        "/api/v1/station/handover",
		Summary:     "Dismiss the active handover",
		Description: "Aborts the workflow unless it already succeeded; an aborted handover moves nothing",
		Tags:        []string{"Handover"},
	}, s.handleDismissHandover)
}

// === DTOs ===

// StationSearchInput carries the shelf search query.
type StationSearchInput struct {
	Query string `query:"q" doc:"Case-insensitive search over title, author, and nickname"`
}

// ShelfResponse contains one shelf of station books.
type ShelfResponse struct {
	Books []domain.HostedBook `json:"books" doc:"Books on the shelf"`
	Total int                 `json:"total" doc:"Number of books returned"`
}

// ShelfOutput wraps a shelf response for Huma.
type ShelfOutput struct {
	Body ShelfResponse
}

// StationOverviewResponse contains both station shelves.
type StationOverviewResponse struct {
	Hosted     []domain.HostedBook `json:"hosted" doc:"Books in the owner's custody"`
	Circulated []domain.HostedBook `json:"circulated" doc:"Books passed on and traveling"`
}

// StationOverviewOutput wraps the overview response for Huma.
type StationOverviewOutput struct {
	Body StationOverviewResponse
}

// HostBookInput carries the draft of a newly listed book.
type HostBookInput struct {
	Body domain.BookDraft
}

// HostedBookOutput wraps one shelf entry for Huma.
type HostedBookOutput struct {
	Body domain.HostedBook
}

// BookOutput wraps one full book record for Huma.
type BookOutput struct {
	Body domain.Book
}

// BookPathInput identifies a station book.
type BookPathInput struct {
	BookID string `path:"bookID" doc:"Book ID"`
}

// TravelHistoryResponse contains a book's journey.
type TravelHistoryResponse struct {
	BookID string              `json:"book_id" doc:"Book ID"`
	Nodes  []domain.TravelNode `json:"nodes" doc:"Stops along the book's journey, oldest first"`
}

// TravelHistoryOutput wraps the travel history response for Huma.
type TravelHistoryOutput struct {
	Body TravelHistoryResponse
}

// AppliedOutput acknowledges a book application.
type AppliedOutput struct {
	Body struct {
		BookID  string `json:"book_id"`
		Applied bool   `json:"applied"`
	}
}

// BeginHandoverInput carries the handover form.
type BeginHandoverInput struct {
	Body struct {
		BookID string                `json:"book_id" doc:"Hosted book to hand over"`
		Method domain.HandoverMethod `json:"method" doc:"code-exchange or drop-off"`
		Note   string                `json:"note,omitempty" doc:"Optional note for the receiver"`
	}
}

// HandoverOutput wraps a handover task for Huma.
type HandoverOutput struct {
	Body domain.HandoverTask
}

// DismissedOutput acknowledges a dismissed handover.
type DismissedOutput struct {
	Body struct {
		Dismissed bool `json:"dismissed"`
	}
}

// === Handlers ===

func (s *Server) handleListHosted(_ context.Context, input *StationSearchInput) (*ShelfOutput, error) {
	books := s.station.SearchHosted(input.Query)
	out := &ShelfOutput{}
	out.Body.Books = books
	out.Body.Total = len(books)
	return out, nil
}

func (s *Server) handleListCirculated(_ context.Context, input *StationSearchInput) (*ShelfOutput, error) {
	books := s.station.SearchCirculated(input.Query)
	out := &ShelfOutput{}
	out.Body.Books = books
	out.Body.Total = len(books)
	return out, nil
}

func (s *Server) handleRefreshStation(ctx context.Context, _ *struct{}) (*StationOverviewOutput, error) {
	if err := s.station.LoadBooks(ctx); err != nil {
		return nil, err
	}

	out := &StationOverviewOutput{}
	out.Body.Hosted = s.station.Hosted()
	out.Body.Circulated = s.station.Circulated()
	return out, nil
}

func (s *Server) handleHostBook(ctx context.Context, input *HostBookInput) (*HostedBookOutput, error) {
	book, err := s.station.HostBook(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &HostedBookOutput{Body: book}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookPathInput) (*BookOutput, error) {
	book, err := s.station.Book(ctx, input.BookID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleTravelHistory(ctx context.Context, input *BookPathInput) (*TravelHistoryOutput, error) {
	nodes, err := s.station.TravelHistory(ctx, input.BookID)
	if err != nil {
		return nil, err
	}

	out := &TravelHistoryOutput{}
	out.Body.BookID = input.BookID
	out.Body.Nodes = nodes
	return out, nil
}

func (s *Server) handleApplyForBook(ctx context.Context, input *BookPathInput) (*AppliedOutput, error) {
	if err := s.station.ApplyForBook(ctx, input.BookID); err != nil {
		return nil, err
	}

	out := &AppliedOutput{}
	out.Body.BookID = input.BookID
	out.Body.Applied = true
	return out, nil
}

func (s *Server) handleBeginHandover(_ context.Context, input *BeginHandoverInput) (*HandoverOutput, error) {
	task, err := s.station.BeginHandover(input.Body.BookID, input.Body.Note, input.Body.Method)
	if err != nil {
		return nil, err
	}
	return &HandoverOutput{Body: task}, nil
}

func (s *Server) handleGetActiveHandover(_ context.Context, _ *struct{}) (*HandoverOutput, error) {
	task, ok := s.station.ActiveHandover()
	if !ok {
		return nil, domainerrors.NotFound("no active handover")
	}
	return &HandoverOutput{Body: task}, nil
}

func (s *Server) handleConfirmHandover(ctx context.Context, _ *struct{}) (*HandoverOutput, error) {
	task, err := s.station.ConfirmHandover(ctx)
	if err != nil {
		return nil, err
	}
	return &HandoverOutput{Body: task}, nil
}

func (s *Server) handleDismissHandover(_ context.Context, _ *struct{}) (*DismissedOutput, error) {
	s.station.DismissHandover()
	out := &DismissedOutput{}
	out.Body.Dismissed = true
	return out, nil
}
