package model

// Settings is the singleton application settings row.  IsReservationClosed
// gates creation of new pre-reservations; onsite registration at the door is
// deliberately not gated by it.
type Settings struct {
	IsReservationClosed bool `json:"isReservationClosed"`
}
