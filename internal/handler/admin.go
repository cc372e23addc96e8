package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/config"
	"github.com/atempo/atempo-server/internal/model"
	"github.com/atempo/atempo-server/internal/queue"
	"github.com/atempo/atempo-server/internal/repository"
	"github.com/atempo/atempo-server/internal/utils"
)

// AdminHandler backs the dashboard: reservation overrides, performer
// management and the reservation-window toggle.  Every route here sits
// behind JWTAuth plus the admin allow-list middleware.
type AdminHandler struct {
	Cfg          config.Config
	Reservations ReservationStore
	Users        UserStore
	Settings     SettingsStore
	Publish      Publisher
}

func NewAdminHandler(cfg config.Config, r ReservationStore, u UserStore, s SettingsStore, p Publisher) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Reservations: r, Users: u, Settings: s, Publish: p}
}

// ListReservations returns the full reservation list, newest first.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// Approve manually marks a reservation as paid, for deposits the matcher
// could not resolve.  The issued token carries the m_ prefix so a manually
// approved ticket is distinguishable in logs.  Approval is allowed from
// pending and ambiguous; a reservation already paid yields 409.
func (h *AdminHandler) Approve(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	token := utils.NewTicketToken(utils.ManualTokenPrefix)
	now := time.Now().UTC()
	won, err := h.Reservations.MarkPaid(ctx, id, token, now, model.StatusPending, model.StatusAmbiguous)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !won {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation not pending or ambiguous"})
	}

	log.Printf("[Admin] reservation %d manually approved by %v", id, c.Get("email"))
	if err := h.Publish(ctx, queue.TicketIssuedEvent{
		ReservationID: id,
		Name:          res.Name,
		Email:         res.Email,
		Token:         token,
		IssuedAt:      now,
	}); err != nil {
		log.Printf("[Admin] publish failed for reservation %d: %v", id, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": model.StatusPaid, "token": token})
}

// ApproveOnsite confirms a door payment: onsite_pending -> onsite_paid.
func (h *AdminHandler) ApproveOnsite(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Reservations.MarkOnsitePaid(ctx, id, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !ok {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation not onsite_pending"})
	}
	log.Printf("[Admin] reservation %d onsite payment confirmed by %v", id, c.Get("email"))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": model.StatusOnsitePaid})
}

// CheckInByID admits a reservation without a ticket scan, for door
// registrations and holders who cannot open their ticket link.
func (h *AdminHandler) CheckInByID(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if res.Status != model.StatusPaid && res.Status != model.StatusOnsitePaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation not paid", "status": res.Status})
	}

	now := time.Now().UTC()
	admitted, err := h.Reservations.CheckIn(ctx, id, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !admitted {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "alreadyCheckedIn": true, "checkedInAt": res.CheckedInAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "alreadyCheckedIn": false, "checkedInAt": now})
}

type visitedForReq struct {
	VisitedFor string `json:"visitedFor"`
}

// SetVisitedFor tags a reservation with which performer the guest came for.
func (h *AdminHandler) SetVisitedFor(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req visitedForReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.SetVisitedFor(ctx, id, req.VisitedFor); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteReservation removes one reservation.
func (h *AdminHandler) DeleteReservation(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Reservations.Delete(ctx, id)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	log.Printf("[Admin] reservation %d deleted by %v", id, c.Get("email"))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteAllReservations wipes the reservation table, used to reset between
// shows.  Destructive enough that the client asks for double confirmation.
func (h *AdminHandler) DeleteAllReservations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	n, err := h.Reservations.DeleteAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	log.Printf("[Admin] all reservations deleted (%d rows) by %v", n, c.Get("email"))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "deleted": n})
}

// ListPerformers returns every performer account for the management panel.
func (h *AdminHandler) ListPerformers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListPerformers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{
			ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
			IsAdmin: h.Cfg.IsAdminEmail(u.Email),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// DeletePerformer removes an account and revokes its sessions.
func (h *AdminHandler) DeletePerformer(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Users.DeleteWithSessions(ctx, id)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "performer not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	log.Printf("[Admin] performer %d deleted by %v", id, c.Get("email"))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type resetPasswordReq struct {
	Password string `json:"password"`
}

// ResetPerformerPassword sets a new password for a performer who lost
// theirs.  Same minimum length as signup.
func (h *AdminHandler) ResetPerformerPassword(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	err = h.Users.UpdatePassword(ctx, id, hash)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "performer not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	log.Printf("[Admin] performer %d password reset by %v", id, c.Get("email"))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type reservationClosedReq struct {
	IsReservationClosed bool `json:"isReservationClosed"`
}

// SetReservationClosed toggles the public reservation window.
func (h *AdminHandler) SetReservationClosed(c echo.Context) error {
	var req reservationClosedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Settings.SetReservationClosed(ctx, req.IsReservationClosed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	log.Printf("[Admin] reservation window closed=%v by %v", req.IsReservationClosed, c.Get("email"))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "isReservationClosed": req.IsReservationClosed})
}
