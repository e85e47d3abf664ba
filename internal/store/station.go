package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
	"github.com/yuzhenbei/booktravel/internal/events"
	"github.com/yuzhenbei/booktravel/internal/id"
	"github.com/yuzhenbei/booktravel/internal/validation"
)

// Display annotations stamped onto a book when custody transfers.
const (
	handoverDistance      = "0.5km"
	receiverPending       = "待确认"
	receiverStation       = "智能驿站"
	statusJustHandedOver  = "刚刚传出"
	statusStoredAtStation = "已入库驿站"
	stationLockerLabel    = "3F 智能驿站 - A区"
)

// StationStore owns the station owner's hosted and circulated book
// collections and drives the handover workflow. A book moves from hosted to
// circulated only when a handover reaches Success; Processing never commits.
type StationStore struct {
	mu            sync.RWMutex
	books         []domain.Book
	hosted        []domain.HostedBook
	circulated    []domain.HostedBook
	gateway       BookGateway
	notifications *NotificationCenter
	emitter       EventEmitter
	validator     *validation.Validator
	logger        *slog.Logger

	task *domain.HandoverTask
}

// NewStationStore creates a station store.
func NewStationStore(gw BookGateway, notifications *NotificationCenter, emitter EventEmitter, logger *slog.Logger) *StationStore {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &StationStore{
		gateway:       gw,
		notifications: notifications,
		emitter:       emitter,
		validator:     validation.New(),
		logger:        logger,
	}
}

// LoadBooks refreshes both collections from the gateway. Books still in
// custody (available or reserved) land in hosted; traveling books land in
// circulated. Prior state is kept on failure.
func (s *StationStore) LoadBooks(ctx context.Context) error {
	books, err := s.gateway.ListBooks(ctx)
	if err != nil {
		s.logger.Warn("book load failed", "error", err)
		return errors.Wrap(err, errors.CodeLoadFailed, "load books")
	}

	hosted, circulated := partitionBooks(books)

	s.mu.Lock()
	s.books = books
	s.hosted = hosted
	s.circulated = circulated
	s.mu.Unlock()

	s.emitter.Emit(events.New(events.EventBookUpdated, map[string]int{
		"hosted":     len(hosted),
		"circulated": len(circulated),
	}))
	return nil
}

// Seed fills empty shelves from a cached snapshot. Shelves that already hold
// books are left alone.
func (s *StationStore) Seed(books []domain.Book) {
	hosted, circulated := partitionBooks(books)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.hosted) > 0 || len(s.circulated) > 0 {
		return
	}
	s.books = books
	s.hosted = hosted
	s.circulated = circulated
}

// Books returns a snapshot of the raw book records behind both shelves.
func (s *StationStore) Books() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Book, len(s.books))
	copy(out, s.books)
	return out
}

func partitionBooks(books []domain.Book) (hosted, circulated []domain.HostedBook) {
	for i := range books {
		hb := toHostedBook(&books[i])
		if books[i].Status == domain.BookTraveling {
			circulated = append(circulated, hb)
		} else {
			hosted = append(hosted, hb)
		}
	}
	return hosted, circulated
}

func toHostedBook(b *domain.Book) domain.HostedBook {
	return domain.HostedBook{
		ID:       b.ID,
		Title:    b.Title,
		Author:   b.Author,
		Nickname: b.Nickname,
		Status:   string(b.Status),
		Active:   b.Status != domain.BookTraveling,
		Cover:    b.Cover,
		Progress: domain.HostingProgress(b.ID),
	}
}

// Hosted returns a snapshot of the books currently in custody.
func (s *StationStore) Hosted() []domain.HostedBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotBooks(s.hosted)
}

// Circulated returns a snapshot of the books already passed on.
func (s *StationStore) Circulated() []domain.HostedBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotBooks(s.circulated)
}

// SearchHosted filters the hosted collection by a case-insensitive substring
// over title, author, and nickname. Empty query matches everything.
func (s *StationStore) SearchHosted(query string) []domain.HostedBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterBooks(s.hosted, query)
}

// SearchCirculated is SearchHosted over the circulated collection.
func (s *StationStore) SearchCirculated(query string) []domain.HostedBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterBooks(s.circulated, query)
}

// HostBook lists a new book at the station. Not optimistic: the gateway owns
// book records, so the shelf updates only after the insert succeeds.
func (s *StationStore) HostBook(ctx context.Context, draft domain.BookDraft) (domain.HostedBook, error) {
	if err := s.validator.Validate(draft); err != nil {
		return domain.HostedBook{}, err
	}

	book, err := s.gateway.CreateBook(ctx, draft)
	if err != nil {
		return domain.HostedBook{}, err
	}
	hb := toHostedBook(&book)

	s.mu.Lock()
	s.books = append(s.books, book)
	s.hosted = append([]domain.HostedBook{hb}, s.hosted...)
	s.mu.Unlock()

	s.emitter.Emit(events.New(events.EventBookUpdated, hb))
	return hb, nil
}

// Book fetches one book's full record from the gateway.
func (s *StationStore) Book(ctx context.Context, bookID string) (domain.Book, error) {
	return s.gateway.GetBook(ctx, bookID)
}

// TravelHistory returns a book's journey from the gateway, oldest stop first.
func (s *StationStore) TravelHistory(ctx context.Context, bookID string) ([]domain.TravelNode, error) {
	nodes, err := s.gateway.ListTravelHistory(ctx, bookID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeLoadFailed, "load travel history")
	}
	return nodes, nil
}

// ApplyForBook reserves a book for the station owner via the gateway and
// mirrors the new status locally. Not optimistic: a reservation gates a
// physical pickup, so it commits only after the gateway accepts it.
func (s *StationStore) ApplyForBook(ctx context.Context, bookID string) error {
	if err := s.gateway.ApplyForBook(ctx, bookID); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.hosted {
		if s.hosted[i].ID == bookID {
			s.hosted[i].Status = string(domain.BookReserved)
			break
		}
	}
	s.mu.Unlock()

	s.emitter.Emit(events.New(events.EventBookUpdated, map[string]string{"id": bookID}))
	return nil
}

// BeginHandover opens a handover workflow for a hosted book, in state Form.
// Only one workflow can be open at a time.
func (s *StationStore) BeginHandover(bookID, note string, method domain.HandoverMethod) (domain.HandoverTask, error) {
	if bookID == "" {
		return domain.HandoverTask{}, errors.Validation("no book selected")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task != nil {
		return domain.HandoverTask{}, errors.Conflict("a handover is already in progress")
	}
	if !s.hostedLocked(bookID) {
		return domain.HandoverTask{}, errors.NotFoundf("book %s is not in the hosted set", bookID)
	}

	task := domain.NewHandoverTask(id.MustGenerate("task"), bookID, method, note)
	s.task = task

	s.emitter.Emit(events.New(events.EventHandoverUpdated, *task))
	return *task, nil
}

// ConfirmHandover drives the open workflow Form → Processing → Success. The
// book's remote status flips to traveling during Processing; only when that
// call succeeds does the workflow reach Success and the book move from
// hosted to circulated. On gateway failure the workflow returns to Form so
// the owner can retry, and nothing has moved.
func (s *StationStore) ConfirmHandover(ctx context.Context) (domain.HandoverTask, error) {
	s.mu.Lock()
	if s.task == nil {
		s.mu.Unlock()
		return domain.HandoverTask{}, errors.Validation("no handover in progress")
	}
	if err := s.task.Confirm(); err != nil {
		task := *s.task
		s.mu.Unlock()
		return task, err
	}
	task := *s.task
	s.mu.Unlock()

	s.emitter.Emit(events.New(events.EventHandoverUpdated, task))

	if err := s.gateway.UpdateBookStatus(ctx, task.BookID, domain.BookTraveling); err != nil {
		s.logger.Warn("handover status sync failed", "book_id", task.BookID, "error", err)

		s.mu.Lock()
		if s.task != nil && s.task.ID == task.ID {
			s.task.State = domain.HandoverForm
			task = *s.task
		}
		s.mu.Unlock()

		s.emitter.Emit(events.New(events.EventHandoverUpdated, task))
		return task, errors.Wrap(err, errors.CodeTransport, "update book status")
	}

	s.mu.Lock()
	if s.task == nil || s.task.ID != task.ID {
		// Workflow was dismissed mid-confirmation; the remote status has
		// changed but custody is not recorded as transferred locally.
		s.mu.Unlock()
		return task, errors.Conflict("handover dismissed during confirmation")
	}
	if err := s.task.Complete(handoverCredential(s.task)); err != nil {
		task = *s.task
		s.mu.Unlock()
		return task, err
	}
	task = *s.task
	moved := s.commitMoveLocked(&task)
	s.mu.Unlock()

	s.emitter.Emit(events.New(events.EventHandoverUpdated, task))
	if moved != nil {
		s.emitter.Emit(events.New(events.EventBookUpdated, *moved))
		s.notifyHandover(&task, moved)
	}
	return task, nil
}

// commitMoveLocked removes the task's book from hosted and prepends it to
// circulated with the transfer annotations. Caller holds s.mu.
func (s *StationStore) commitMoveLocked(task *domain.HandoverTask) *domain.HostedBook {
	for i := range s.hosted {
		if s.hosted[i].ID != task.BookID {
			continue
		}
		book := s.hosted[i]
		s.hosted = append(s.hosted[:i], s.hosted[i+1:]...)

		book.Active = false
		book.Distance = handoverDistance
		if task.Method == domain.HandoverCodeExchange {
			book.Status = statusJustHandedOver
			book.Receiver = receiverPending
		} else {
			book.Status = statusStoredAtStation
			book.Receiver = receiverStation
		}
		s.circulated = append([]domain.HostedBook{book}, s.circulated...)
		return &book
	}
	return nil
}

func (s *StationStore) notifyHandover(task *domain.HandoverTask, book *domain.HostedBook) {
	if s.notifications == nil {
		return
	}
	title := "投递任务已准备"
	if task.Method == domain.HandoverCodeExchange {
		title = "交接任务已启动"
	}
	if _, err := s.notifications.AddLocal(domain.NotificationDraft{
		Kind:    domain.NotificationHandover,
		Title:   title,
		Content: fmt.Sprintf("《%s》的接力任务已就绪，请按指引完成最后一步。", book.Title),
	}); err != nil {
		s.logger.Warn("handover notification failed", "error", err)
	}
}

// ActiveHandover returns the open workflow, if any.
func (s *StationStore) ActiveHandover() (domain.HandoverTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.task == nil {
		return domain.HandoverTask{}, false
	}
	return *s.task, true
}

// DismissHandover closes the open workflow. From Form or Processing this
// aborts without moving the book; from Success the move has already been
// committed. Idempotent.
func (s *StationStore) DismissHandover() {
	s.mu.Lock()
	s.task = nil
	s.mu.Unlock()

	s.emitter.Emit(events.New(events.EventHandoverUpdated, map[string]bool{"open": false}))
}

func (s *StationStore) hostedLocked(bookID string) bool {
	for i := range s.hosted {
		if s.hosted[i].ID == bookID {
			return true
		}
	}
	return false
}

// handoverCredential derives the workflow's display credential from the task
// id. A pure hash keeps the credential stable across renders of the same
// task, like the hosting-progress derivation.
func handoverCredential(task *domain.HandoverTask) string {
	var hash int
	for _, r := range task.ID {
		hash = hash*31 + int(r)
	}
	if hash < 0 {
		hash = -hash
	}

	code := fmt.Sprintf("%04d-%04d", hash%10000, (hash/10000)%10000)
	if task.Method == domain.HandoverDropOff {
		return fmt.Sprintf("%s · # %04d *", stationLockerLabel, hash%10000)
	}
	return code
}

func snapshotBooks(books []domain.HostedBook) []domain.HostedBook {
	out := make([]domain.HostedBook, len(books))
	copy(out, books)
	return out
}

func filterBooks(books []domain.HostedBook, query string) []domain.HostedBook {
	out := make([]domain.HostedBook, 0, len(books))
	for i := range books {
		if books[i].MatchesQuery(query) {
			out = append(out, books[i])
		}
	}
	return out
}
