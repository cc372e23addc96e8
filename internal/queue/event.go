// Package queue carries the ticket.issued event between the paid transition
// and the email delivery worker.
package queue

import "time"

// TicketQueueName is the durable queue for ticket issuance events.
const TicketQueueName = "ticket.issued"

// TicketIssuedEvent is published exactly once per reservation transition
// into paid, by whichever code path won the transition (deposit matcher or
// admin approval).  The consumer turns it into the ticket email.
type TicketIssuedEvent struct {
	ReservationID uint64    `json:"reservationId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Token         string    `json:"token"`
	IssuedAt      time.Time `json:"issuedAt"`
}
