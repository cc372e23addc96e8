package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/atempo/atempo-server/internal/model"
)

func TestCheckInAdmitsPaidTicket(t *testing.T) {
	store := newFakeReservations()
	token := "t_abc123"
	res := store.add(model.Reservation{Name: "홍길동", Status: model.StatusPaid, Token: &token})
	h := NewCheckinHandler(store)

	e := newEcho()
	c, w := newContext(t, e, http.MethodPost, "/v1/checkin", map[string]string{"token": token})
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	checkStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["alreadyCheckedIn"] != false {
		t.Fatalf("alreadyCheckedIn = %v, want false", body["alreadyCheckedIn"])
	}
	got, _ := store.GetByID(c.Request().Context(), res.ID)
	if !got.CheckedIn || got.CheckedInAt == nil {
		t.Fatal("reservation not marked checked in")
	}
}

func TestCheckInIsIdempotent(t *testing.T) {
	store := newFakeReservations()
	token := "t_abc123"
	first := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	res := store.add(model.Reservation{
		Name: "홍길동", Status: model.StatusPaid, Token: &token,
		CheckedIn: true, CheckedInAt: &first,
	})
	h := NewCheckinHandler(store)

	e := newEcho()
	c, w := newContext(t, e, http.MethodPost, "/v1/checkin", map[string]string{"token": token})
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	checkStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["alreadyCheckedIn"] != true {
		t.Fatalf("alreadyCheckedIn = %v, want true", body["alreadyCheckedIn"])
	}
	got, _ := store.GetByID(c.Request().Context(), res.ID)
	if !got.CheckedInAt.Equal(first) {
		t.Fatalf("checkedInAt changed from %v to %v", first, got.CheckedInAt)
	}
}

func TestCheckInRejectsUnpaid(t *testing.T) {
	store := newFakeReservations()
	for _, status := range []string{model.StatusPending, model.StatusAmbiguous, model.StatusOnsitePending} {
		token := "t_" + status
		store.add(model.Reservation{Name: "홍길동", Status: status, Token: &token})
		h := NewCheckinHandler(store)

		e := newEcho()
		c, w := newContext(t, e, http.MethodPost, "/v1/checkin", map[string]string{"token": token})
		if err := h.CheckIn(c); err != nil {
			t.Fatalf("CheckIn: %v", err)
		}
		if w.Code != http.StatusConflict {
			t.Errorf("status %s: code = %d, want 409", status, w.Code)
		}
	}
}

func TestCheckInUnknownToken(t *testing.T) {
	h := NewCheckinHandler(newFakeReservations())
	e := newEcho()
	c, w := newContext(t, e, http.MethodPost, "/v1/checkin", map[string]string{"token": "t_nothing"})
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	checkStatus(t, w, http.StatusNotFound)
}

func TestCheckinStats(t *testing.T) {
	store := newFakeReservations()
	t1, t2 := "t_1", "t_2"
	store.add(model.Reservation{Name: "a", Status: model.StatusPaid, Token: &t1, CheckedIn: true})
	store.add(model.Reservation{Name: "b", Status: model.StatusPaid, Token: &t2})
	store.add(model.Reservation{Name: "c", Status: model.StatusPending})
	h := NewCheckinHandler(store)

	e := newEcho()
	c, w := newContext(t, e, http.MethodGet, "/v1/checkin/stats", nil)
	if err := h.Stats(c); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	checkStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["paid"] != float64(2) || body["checkedIn"] != float64(1) {
		t.Fatalf("stats = %v, want paid=2 checkedIn=1", body)
	}
}
