package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/model"
	"github.com/atempo/atempo-server/internal/queue"
	"github.com/atempo/atempo-server/internal/repository"
	"github.com/atempo/atempo-server/pkg/validator"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

// newContext builds an echo context around a JSON request.
func newContext(t *testing.T, e *echo.Echo, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// fakeReservationStore is an in-memory ReservationStore.
type fakeReservationStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Reservation
}

func newFakeReservations() *fakeReservationStore {
	return &fakeReservationStore{nextID: 1, rows: map[uint64]*model.Reservation{}}
}

func (f *fakeReservationStore) add(r model.Reservation) *model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID
	f.nextID++
	cp := r
	f.rows[cp.ID] = &cp
	return &cp
}

func (f *fakeReservationStore) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res.ID = f.nextID
	f.nextID++
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	f.rows[cp.ID] = &cp
	return nil
}

func (f *fakeReservationStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservationStore) GetByToken(_ context.Context, token string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Token != nil && *r.Token == token {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReservationStore) FindPendingByName(_ context.Context, name string) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, r := range f.rows {
		if r.Name == name && r.Status == model.StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) MarkPendingAmbiguous(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.Name == name && r.Status == model.StatusPending {
			r.Status = model.StatusAmbiguous
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationStore) MarkPaid(_ context.Context, id uint64, token string, at time.Time, fromStatuses ...string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	if len(fromStatuses) == 0 {
		fromStatuses = []string{model.StatusPending}
	}
	allowed := false
	for _, s := range fromStatuses {
		if r.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	r.Status = model.StatusPaid
	r.Token = &token
	r.DepositTime = &at
	return true, nil
}

func (f *fakeReservationStore) MarkOnsitePaid(_ context.Context, id uint64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.Status != model.StatusOnsitePending {
		return false, nil
	}
	r.Status = model.StatusOnsitePaid
	r.DepositTime = &at
	return true, nil
}

func (f *fakeReservationStore) CheckIn(_ context.Context, id uint64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.CheckedIn {
		return false, nil
	}
	r.CheckedIn = true
	r.CheckedInAt = &at
	return true, nil
}

func (f *fakeReservationStore) UpdateContact(_ context.Context, id uint64, name, phone, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Name, r.Phone, r.Email = name, phone, email
	return nil
}

func (f *fakeReservationStore) SetVisitedFor(_ context.Context, id uint64, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[id]; ok {
		r.VisitedFor = value
	}
	return nil
}

func (f *fakeReservationStore) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeReservationStore) DeleteAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.rows))
	f.rows = map[uint64]*model.Reservation{}
	return n, nil
}

func (f *fakeReservationStore) List(_ context.Context) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReservationStore) CheckinStats(_ context.Context) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var paid, checkedIn int64
	for _, r := range f.rows {
		if r.Status == model.StatusPaid {
			paid++
			if r.CheckedIn {
				checkedIn++
			}
		}
	}
	return paid, checkedIn, nil
}

// publishRecorder captures published events for assertions.
type publishRecorder struct {
	mu     sync.Mutex
	events []queue.TicketIssuedEvent
}

func (p *publishRecorder) publish(_ context.Context, ev queue.TicketIssuedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

// fakeSettingsStore is an in-memory SettingsStore.
type fakeSettingsStore struct {
	closed bool
}

func (f *fakeSettingsStore) Get(_ context.Context) (*model.Settings, error) {
	return &model.Settings{IsReservationClosed: f.closed}, nil
}

func (f *fakeSettingsStore) SetReservationClosed(_ context.Context, closed bool) error {
	f.closed = closed
	return nil
}

// fakePostStore is an in-memory PostStore.
type fakePostStore struct {
	mu       sync.Mutex
	nextID   uint64
	posts    map[uint64]*model.Post
	comments map[uint64]*model.Comment
}

func newFakePosts() *fakePostStore {
	return &fakePostStore{nextID: 1, posts: map[uint64]*model.Post{}, comments: map[uint64]*model.Comment{}}
}

func (f *fakePostStore) Create(_ context.Context, p *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.posts[cp.ID] = &cp
	return nil
}

func (f *fakePostStore) GetByID(_ context.Context, id uint64) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostStore) List(_ context.Context) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Post{}
	for _, p := range f.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePostStore) Update(_ context.Context, id uint64, content, color string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Content, p.Color = content, color
	return nil
}

func (f *fakePostStore) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostStore) CreateComment(_ context.Context, cm *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm.ID = f.nextID
	f.nextID++
	cm.CreatedAt = time.Now().UTC()
	cp := *cm
	f.comments[cp.ID] = &cp
	return nil
}

func (f *fakePostStore) ListComments(_ context.Context, postID uint64) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Comment{}
	for _, cm := range f.comments {
		if cm.PostID == postID {
			out = append(out, *cm)
		}
	}
	return out, nil
}

func (f *fakePostStore) GetComment(_ context.Context, id uint64) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm, ok := f.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *cm
	return &cp, nil
}

func (f *fakePostStore) DeleteComment(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func checkStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, want, rec.Body.String())
	}
}
