package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/atempo/atempo-server/internal/model"
)

func TestVerifyKnownToken(t *testing.T) {
	store := newFakeReservations()
	token := "t_abc123"
	store.add(model.Reservation{Name: "홍길동", Status: model.StatusPaid, Token: &token})
	h := NewVerifyHandler(store)

	// Both the bare token and the full ticket URL must resolve.
	for _, input := range []string{token, "https://atempo.vercel.app/?auth=" + token} {
		e := newEcho()
		c, w := newContext(t, e, http.MethodPost, "/v1/tickets/verify", map[string]string{"token": input})
		if err := h.Verify(c); err != nil {
			t.Fatalf("Verify(%q): %v", input, err)
		}
		checkStatus(t, w, http.StatusOK)

		body := decodeBody(t, w)
		if body["success"] != true {
			t.Fatalf("Verify(%q): success = %v, want true", input, body["success"])
		}
		if body["name"] != "홍길동" || body["status"] != model.StatusPaid || body["token"] != token {
			t.Fatalf("Verify(%q): unexpected body %v", input, body)
		}
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	h := NewVerifyHandler(newFakeReservations())
	e := newEcho()
	c, w := newContext(t, e, http.MethodPost, "/v1/tickets/verify", map[string]string{"token": "t_nothing"})
	if err := h.Verify(c); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	checkStatus(t, w, http.StatusOK)
	if body := decodeBody(t, w); body["success"] != false {
		t.Fatalf("success = %v, want false", body["success"])
	}
}

func TestVerifyDoesNotMutate(t *testing.T) {
	store := newFakeReservations()
	token := "t_abc123"
	res := store.add(model.Reservation{Name: "홍길동", Status: model.StatusPaid, Token: &token})
	h := NewVerifyHandler(store)

	for i := 0; i < 3; i++ {
		e := newEcho()
		c, _ := newContext(t, e, http.MethodPost, "/v1/tickets/verify", map[string]string{"token": token})
		if err := h.Verify(c); err != nil {
			t.Fatalf("Verify: %v", err)
		}
	}

	got, _ := store.GetByID(context.Background(), res.ID)
	if got.CheckedIn || got.CheckedInAt != nil || got.Status != model.StatusPaid {
		t.Fatalf("verification mutated the reservation: %+v", got)
	}
}
