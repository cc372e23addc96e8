package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/atempo/atempo-server/internal/model"
)

// SettingsRepo persists the site-wide settings singleton (row id = 1).
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo returns a new SettingsRepo bound to the given database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get reads the settings row.  A missing row reads as all-defaults so a
// fresh database behaves like an open reservation window.
func (r *SettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	var s model.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT is_reservation_closed FROM settings WHERE id = 1`).Scan(&s.IsReservationClosed)
	if err == sql.ErrNoRows {
		return &model.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetReservationClosed upserts the reservation-window flag.
func (r *SettingsRepo) SetReservationClosed(ctx context.Context, closed bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, is_reservation_closed, updated_at) VALUES (1, ?, ?)
		 ON DUPLICATE KEY UPDATE is_reservation_closed = VALUES(is_reservation_closed), updated_at = VALUES(updated_at)`,
		closed, time.Now().UTC())
	return err
}
