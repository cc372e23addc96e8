package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/atempo/atempo-server/internal/model"
)

// ReservationRepo provides CRUD and state-transition operations for
// reservations.  Every status transition is a conditional UPDATE that
// names the state it expects to leave, so concurrent writers (deposit
// matcher vs. admin override) cannot double-fire a transition: whichever
// statement matches a row wins, the other sees zero affected rows.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, name, phone, email, amount, status, token,
	deposit_time, checked_in, checked_in_at,
	email_status, email_attempted_at, email_sent_at, email_error, email_result,
	visited_for, description, created_at, updated_at`

// scanReservation reads one row into a model.Reservation, mapping nullable
// columns onto pointers.
func scanReservation(s interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		r           model.Reservation
		token       sql.NullString
		depositTime sql.NullTime
		checkedInAt sql.NullTime
		emStatus    sql.NullString
		emAttempted sql.NullTime
		emSentAt    sql.NullTime
		emError     sql.NullString
		emResult    sql.NullString
		visitedFor  sql.NullString
		description sql.NullString
	)
	err := s.Scan(
		&r.ID, &r.Name, &r.Phone, &r.Email, &r.Amount, &r.Status, &token,
		&depositTime, &r.CheckedIn, &checkedInAt,
		&emStatus, &emAttempted, &emSentAt, &emError, &emResult,
		&visitedFor, &description, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if token.Valid {
		r.Token = &token.String
	}
	if depositTime.Valid {
		t := depositTime.Time
		r.DepositTime = &t
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		r.CheckedInAt = &t
	}
	if emStatus.Valid {
		r.EmailStatus = &emStatus.String
	}
	if emAttempted.Valid {
		t := emAttempted.Time
		r.EmailAttemptedAt = &t
	}
	if emSentAt.Valid {
		t := emSentAt.Time
		r.EmailSentAt = &t
	}
	if emError.Valid {
		r.EmailError = &emError.String
	}
	if emResult.Valid {
		r.EmailResult = &emResult.String
	}
	r.VisitedFor = visitedFor.String
	r.Description = description.String
	return &r, nil
}

// Create inserts a new reservation and populates the generated ID and
// timestamps on the provided struct.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	now := time.Now().UTC()
	const q = `INSERT INTO reservations
		(name, phone, email, amount, status, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.Name, res.Phone, res.Email, res.Amount, res.Status, res.Description, now, now)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.CreatedAt = now
	res.UpdatedAt = now
	return nil
}

// GetByID loads a single reservation.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return res, err
}

// GetByToken loads the reservation bearing the given ticket token.
func (r *ReservationRepo) GetByToken(ctx context.Context, token string) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE token = ?`, token)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return res, err
}

// FindPendingByName returns all reservations whose depositor name matches
// and whose status is still pending.  This is the deposit matcher's lookup.
func (r *ReservationRepo) FindPendingByName(ctx context.Context, name string) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE name = ? AND status = ?`,
		name, model.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// MarkPendingAmbiguous flips every pending reservation with the given name
// to ambiguous in a single statement; the store applies it atomically as a
// set.  Returns the number of rows marked.
func (r *ReservationRepo) MarkPendingAmbiguous(ctx context.Context, name string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = ? WHERE name = ? AND status = ?`,
		model.StatusAmbiguous, time.Now().UTC(), name, model.StatusPending)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MarkPaid performs the paid transition: sets status, token and deposit
// time, but only when the row is currently in one of fromStatuses.  The
// boolean result reports whether this caller won the transition; callers
// publish the ticket.issued event only on true, which keeps the email
// trigger edge-triggered.
func (r *ReservationRepo) MarkPaid(ctx context.Context, id uint64, token string, at time.Time, fromStatuses ...string) (bool, error) {
	if len(fromStatuses) == 0 {
		fromStatuses = []string{model.StatusPending}
	}
	q := `UPDATE reservations SET status = ?, token = ?, deposit_time = ?, updated_at = ?
		WHERE id = ? AND status IN (?` // one placeholder per allowed source status
	args := []any{model.StatusPaid, token, at, time.Now().UTC(), id, fromStatuses[0]}
	for _, s := range fromStatuses[1:] {
		q += ",?"
		args = append(args, s)
	}
	q += ")"
	result, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n == 1, err
}

// MarkOnsitePaid confirms a door payment: onsite_pending -> onsite_paid.
func (r *ReservationRepo) MarkOnsitePaid(ctx context.Context, id uint64, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ?, deposit_time = ?, updated_at = ? WHERE id = ? AND status = ?`,
		model.StatusOnsitePaid, at, time.Now().UTC(), id, model.StatusOnsitePending)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n == 1, err
}

// CheckIn records admission once.  The checked_in = 0 guard makes repeated
// scans of the same ticket no-ops; the first scan's timestamp survives.
func (r *ReservationRepo) CheckIn(ctx context.Context, id uint64, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET checked_in = 1, checked_in_at = ?, updated_at = ? WHERE id = ? AND checked_in = 0`,
		at, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n == 1, err
}

// UpdateContact lets an attendee correct name/phone/email on their own
// reservation.  Status and payment fields are deliberately untouchable
// through this path.
func (r *ReservationRepo) UpdateContact(ctx context.Context, id uint64, name, phone, email string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET name = ?, phone = ?, email = ?, updated_at = ? WHERE id = ?`,
		name, phone, email, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVisitedFor tags a reservation with the free-form admin label.
func (r *ReservationRepo) SetVisitedFor(ctx context.Context, id uint64, value string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET visited_for = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), id)
	return err
}

// Delete removes one reservation.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll wipes every reservation and reports how many were removed.
func (r *ReservationRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// List returns every reservation, newest first, for the admin dashboard.
func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// CheckinStats returns the paid-reservation count and how many of those are
// already checked in, for the check-in desk header.
func (r *ReservationRepo) CheckinStats(ctx context.Context) (paid, checkedIn int64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(checked_in), 0) FROM reservations WHERE status = ?`,
		model.StatusPaid).Scan(&paid, &checkedIn)
	return paid, checkedIn, err
}

// MarkEmailSending records the in-flight delivery state before an attempt:
// status sending, the attempt timestamp, previous error/result cleared.
func (r *ReservationRepo) MarkEmailSending(ctx context.Context, id uint64, attemptedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET email_status = ?, email_attempted_at = ?, email_error = NULL, email_result = NULL, updated_at = ? WHERE id = ?`,
		model.EmailStatusSending, attemptedAt, time.Now().UTC(), id)
	return err
}

// MarkEmailSent records a successful delivery and its transport receipt.
func (r *ReservationRepo) MarkEmailSent(ctx context.Context, id uint64, sentAt time.Time, result string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET email_status = ?, email_sent_at = ?, email_result = ?, updated_at = ? WHERE id = ?`,
		model.EmailStatusSuccess, sentAt, result, time.Now().UTC(), id)
	return err
}

// MarkEmailFailed records a delivery failure.  attemptedAt is only written
// when the failure happened before a sending marker could be set (the
// missing email/token case).
func (r *ReservationRepo) MarkEmailFailed(ctx context.Context, id uint64, message string, attemptedAt *time.Time) error {
	if attemptedAt != nil {
		_, err := r.db.ExecContext(ctx,
			`UPDATE reservations SET email_status = ?, email_attempted_at = ?, email_error = ?, updated_at = ? WHERE id = ?`,
			model.EmailStatusError, *attemptedAt, message, time.Now().UTC(), id)
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET email_status = ?, email_error = ?, updated_at = ? WHERE id = ?`,
		model.EmailStatusError, message, time.Now().UTC(), id)
	return err
}
