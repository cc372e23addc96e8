package model

import "time"

// Reservation status lifecycle.  A reservation starts as pending (created
// through the pre-reservation form) or onsite_pending (registered at the
// door).  The deposit matcher or an admin moves it forward from there.
// Ambiguous is a parking state: several pending reservations share the
// depositor name and an operator has to resolve the match by hand.
const (
	StatusPending       = "pending"
	StatusAmbiguous     = "ambiguous"
	StatusPaid          = "paid"
	StatusOnsitePending = "onsite_pending"
	StatusOnsitePaid    = "onsite_paid"
)

// Email delivery bookkeeping states recorded on the reservation by the
// ticket mail consumer.  "sending" is the observable in-flight marker the
// admin dashboard shows while a delivery attempt is running.
const (
	EmailStatusSending = "sending"
	EmailStatusSuccess = "success"
	EmailStatusError   = "error"
)

// Reservation is one attendee's ticket request and its lifecycle state.
// Name doubles as the depositor-name match key for bank transfers.  Token
// is set exactly when the reservation has reached a paid state at least
// once; it is the opaque credential used for ticket verification and
// check-in.
//
// Nullable columns are pointers so absent values serialize as JSON null,
// matching the loosely shaped documents the clients already consume.
type Reservation struct {
	ID               uint64     `json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	Amount           int64      `json:"amount"`
	Status           string     `json:"status"`
	Token            *string    `json:"token,omitempty"`
	DepositTime      *time.Time `json:"depositTime,omitempty"`
	CheckedIn        bool       `json:"checkedIn"`
	CheckedInAt      *time.Time `json:"checkedInAt,omitempty"`
	EmailStatus      *string    `json:"emailStatus,omitempty"`
	EmailAttemptedAt *time.Time `json:"emailAttemptedAt,omitempty"`
	EmailSentAt      *time.Time `json:"emailSentAt,omitempty"`
	EmailError       *string    `json:"emailError,omitempty"`
	EmailResult      *string    `json:"emailResult,omitempty"`
	VisitedFor       string     `json:"visitedFor,omitempty"`
	Description      string     `json:"description,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
