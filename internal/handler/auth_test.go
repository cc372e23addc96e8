package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/atempo/atempo-server/internal/config"
	"github.com/atempo/atempo-server/internal/model"
	"github.com/atempo/atempo-server/internal/repository"
)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]*model.User
}

func newFakeUsers() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[uint64]*model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now().UTC()
	cp := *u
	f.users[cp.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) ListPerformers(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserStore) DeleteWithSessions(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeTokenStore struct {
	mu      sync.Mutex
	active  map[string]uint64 // hash -> user
	revoked map[string]bool
}

func newFakeTokens() *fakeTokenStore {
	return &fakeTokenStore{active: map[string]uint64{}, revoked: map[string]bool{}}
}

func (f *fakeTokenStore) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[hash] = userID
	return nil
}

func (f *fakeTokenStore) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked[hash] {
		return 0, repository.ErrNotFound
	}
	uid, ok := f.active[hash]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return uid, nil
}

func (f *fakeTokenStore) RevokeByHash(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[hash] = true
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, uid := range f.active {
		if uid == userID {
			f.revoked[h] = true
		}
	}
	return nil
}

func authTestHandler() (*AuthHandler, *fakeUserStore, *fakeTokenStore) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
		AdminEmails:    []string{"admin@atempo.kr"},
	}
	return NewAuthHandler(cfg, users, tokens), users, tokens
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	h, users, _ := authTestHandler()

	e := newEcho()
	c, w := newContext(t, e, http.MethodPost, "/v1/auth/register", map[string]string{
		"name": "김연주", "email": "kim@atempo.kr", "password": "12345",
	})
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	checkStatus(t, w, http.StatusBadRequest)
	if len(users.users) != 0 {
		t.Fatal("account created despite rejected password")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	h, _, _ := authTestHandler()

	e := newEcho()
	c, w := newContext(t, e, http.MethodPost, "/v1/auth/register", map[string]string{
		"name": "김연주", "email": "Kim@atempo.kr", "password": "secret6",
	})
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	checkStatus(t, w, http.StatusCreated)

	body := decodeBody(t, w)
	user, _ := body["user"].(map[string]any)
	if user["email"] != "kim@atempo.kr" {
		t.Fatalf("email not lower-cased: %v", user["email"])
	}
	if user["role"] != model.RolePerformer {
		t.Fatalf("role = %v, want performer", user["role"])
	}
	if user["isAdmin"] != false {
		t.Fatalf("isAdmin = %v, want false", user["isAdmin"])
	}

	c, w = newContext(t, e, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": "kim@atempo.kr", "password": "secret6",
	})
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	checkStatus(t, w, http.StatusOK)

	c, w = newContext(t, e, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": "kim@atempo.kr", "password": "wrong-pass",
	})
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	checkStatus(t, w, http.StatusUnauthorized)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _, _ := authTestHandler()
	e := newEcho()

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		c, w := newContext(t, e, http.MethodPost, "/v1/auth/register", map[string]string{
			"name": "김연주", "email": "kim@atempo.kr", "password": "secret6",
		})
		if err := h.Register(c); err != nil {
			t.Fatalf("Register #%d: %v", i, err)
		}
		checkStatus(t, w, want)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	h, _, _ := authTestHandler()
	e := newEcho()

	c, w := newContext(t, e, http.MethodPost, "/v1/auth/register", map[string]string{
		"name": "김연주", "email": "kim@atempo.kr", "password": "secret6",
	})
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	refresh, _ := decodeBody(t, w)["refresh"].(map[string]any)
	raw, _ := refresh["token"].(string)
	if raw == "" {
		t.Fatal("no refresh token issued")
	}

	c, w = newContext(t, e, http.MethodPost, "/v1/auth/refresh", map[string]string{"refresh_token": raw})
	if err := h.Refresh(c); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	checkStatus(t, w, http.StatusOK)

	// The old token was revoked by rotation; replaying it must fail.
	c, w = newContext(t, e, http.MethodPost, "/v1/auth/refresh", map[string]string{"refresh_token": raw})
	if err := h.Refresh(c); err != nil {
		t.Fatalf("Refresh replay: %v", err)
	}
	checkStatus(t, w, http.StatusUnauthorized)
}

func TestAdminFlagOnLogin(t *testing.T) {
	h, _, _ := authTestHandler()
	e := newEcho()

	c, w := newContext(t, e, http.MethodPost, "/v1/auth/register", map[string]string{
		"name": "관리자", "email": "admin@atempo.kr", "password": "secret6",
	})
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	user, _ := decodeBody(t, w)["user"].(map[string]any)
	if user["isAdmin"] != true {
		t.Fatalf("isAdmin = %v, want true for allow-listed email", user["isAdmin"])
	}
}
