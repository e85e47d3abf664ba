package domain

import "fmt"

// HandoverMethod is how custody of a book physically changes hands.
type HandoverMethod string

const (
	// HandoverCodeExchange hands the book over face to face against a
	// generated exchange code.
	HandoverCodeExchange HandoverMethod = "code-exchange"
	// HandoverDropOff deposits the book at the smart station locker.
	HandoverDropOff HandoverMethod = "drop-off"
)

// Valid checks if the method is valid.
func (m HandoverMethod) Valid() bool {
	switch m {
	case HandoverCodeExchange, HandoverDropOff:
		return true
	default:
		return false
	}
}

// HandoverState is the workflow state of a handover task.
//
//	Form ──confirm──▶ Processing ──complete──▶ Success
//
// Dismissing from Form or Processing aborts without committing the book
// move; only Success commits.
type HandoverState string

const (
	HandoverForm       HandoverState = "form"
	HandoverProcessing HandoverState = "processing"
	HandoverSuccess    HandoverState = "success"
)

// HandoverTask drives one hosted book through a transfer of custody.
// Transient: it is never persisted, only the committed book move is.
type HandoverTask struct {
	ID     string         `json:"id"`
	BookID string         `json:"book_id"`
	Note   string         `json:"note,omitempty"`
	Method HandoverMethod `json:"method"`
	State  HandoverState  `json:"state"`
	// Credential is the code-exchange code or the drop-off locker label,
	// populated on the transition to Success.
	Credential string `json:"credential,omitempty"`
}

// NewHandoverTask starts a handover in the Form state. Selection of the book
// is the caller's responsibility; the task does not self-validate it.
func NewHandoverTask(id, bookID string, method HandoverMethod, note string) *HandoverTask {
	return &HandoverTask{
		ID:     id,
		BookID: bookID,
		Note:   note,
		Method: method,
		State:  HandoverForm,
	}
}

// Confirm moves the task from Form to Processing.
func (t *HandoverTask) Confirm() error {
	if t.State != HandoverForm {
		return fmt.Errorf("cannot confirm handover in state %q", t.State)
	}
	if !t.Method.Valid() {
		return fmt.Errorf("invalid handover method %q", t.Method)
	}
	t.State = HandoverProcessing
	return nil
}

// Complete moves the task from Processing to Success and records the
// credential the receiver needs.
func (t *HandoverTask) Complete(credential string) error {
	if t.State != HandoverProcessing {
		return fmt.Errorf("cannot complete handover in state %q", t.State)
	}
	t.State = HandoverSuccess
	t.Credential = credential
	return nil
}

// Committed reports whether the book move has been committed.
// Only a task that reached Success commits; a dismissed Form or Processing
// task leaves the hosted collection untouched.
func (t *HandoverTask) Committed() bool {
	return t.State == HandoverSuccess
}
