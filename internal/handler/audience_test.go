package handler

import (
	"net/http"
	"regexp"
	"testing"
)

var deviceUIDPattern = regexp.MustCompile(`^device_[0-9]+_[a-z0-9]+$`)

func TestCreateSessionMintsDeviceUID(t *testing.T) {
	h := NewAudienceHandler()

	e := newEcho()
	c, w := newContext(t, e, http.MethodPost, "/v1/audience/session", map[string]string{})
	if err := h.CreateSession(c); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	checkStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	uid, _ := body["uid"].(string)
	if !deviceUIDPattern.MatchString(uid) {
		t.Fatalf("uid %q does not match device_<millis>_<rand>", uid)
	}
	if nick, _ := body["name"].(string); nick == "" {
		t.Fatal("blank nickname was not replaced with a generated one")
	}
	if body["role"] != "audience" {
		t.Fatalf("role = %v, want audience", body["role"])
	}
	if body["enteredAt"] == nil {
		t.Fatal("enteredAt missing")
	}
}

func TestCreateSessionKeepsExistingIdentity(t *testing.T) {
	h := NewAudienceHandler()

	e := newEcho()
	c, w := newContext(t, e, http.MethodPost, "/v1/audience/session", map[string]string{
		"deviceUid": "device_1700000000000_abc123",
		"nickname":  "행복한 라이언",
	})
	if err := h.CreateSession(c); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	checkStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["uid"] != "device_1700000000000_abc123" {
		t.Fatalf("returning device got a new uid: %v", body["uid"])
	}
	if body["name"] != "행복한 라이언" {
		t.Fatalf("nickname rewritten: %v", body["name"])
	}
}

func TestCreateSessionRejectsForeignUIDShape(t *testing.T) {
	h := NewAudienceHandler()

	// Bare numbers belong to performer accounts; a session claiming one
	// gets a freshly minted device uid instead.
	e := newEcho()
	c, w := newContext(t, e, http.MethodPost, "/v1/audience/session", map[string]string{
		"deviceUid": "3",
	})
	if err := h.CreateSession(c); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	checkStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	uid, _ := body["uid"].(string)
	if !deviceUIDPattern.MatchString(uid) {
		t.Fatalf("uid %q was not replaced with a minted device uid", uid)
	}
}
