// Package handler implements the HTTP endpoints.  Handlers depend on small
// store interfaces rather than concrete repositories so tests can substitute
// in-memory implementations; the repository package satisfies every one of
// them.
package handler

import (
	"context"
	"time"

	"github.com/atempo/atempo-server/internal/model"
	"github.com/atempo/atempo-server/internal/queue"
)

// ReservationStore is the reservation persistence surface the handlers use.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GetByToken(ctx context.Context, token string) (*model.Reservation, error)
	FindPendingByName(ctx context.Context, name string) ([]model.Reservation, error)
	MarkPendingAmbiguous(ctx context.Context, name string) (int64, error)
	MarkPaid(ctx context.Context, id uint64, token string, at time.Time, fromStatuses ...string) (bool, error)
	MarkOnsitePaid(ctx context.Context, id uint64, at time.Time) (bool, error)
	CheckIn(ctx context.Context, id uint64, at time.Time) (bool, error)
	UpdateContact(ctx context.Context, id uint64, name, phone, email string) error
	SetVisitedFor(ctx context.Context, id uint64, value string) error
	Delete(ctx context.Context, id uint64) error
	DeleteAll(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]model.Reservation, error)
	CheckinStats(ctx context.Context) (paid, checkedIn int64, err error)
}

// UserStore is the performer account surface.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	ListPerformers(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	DeleteWithSessions(ctx context.Context, id uint64) error
}

// TokenStore is the refresh-token session surface.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// PostStore is the fan board surface.
type PostStore interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id uint64) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, id uint64, content, color string) error
	Delete(ctx context.Context, id uint64) error
	CreateComment(ctx context.Context, cm *model.Comment) error
	ListComments(ctx context.Context, postID uint64) ([]model.Comment, error)
	GetComment(ctx context.Context, id uint64) (*model.Comment, error)
	DeleteComment(ctx context.Context, id uint64) error
}

// SettingsStore is the site settings surface.
type SettingsStore interface {
	Get(ctx context.Context) (*model.Settings, error)
	SetReservationClosed(ctx context.Context, closed bool) error
}

// Publisher emits a ticket.issued event.  The production value is
// queue_publisher.PublishTicketIssued; tests substitute a recorder.
type Publisher func(ctx context.Context, event queue.TicketIssuedEvent) error
