package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/config"
	"github.com/atempo/atempo-server/internal/model"
	"github.com/atempo/atempo-server/internal/repository"
)

// ReservationHandler serves the public reservation form and the door
// registration desk.
type ReservationHandler struct {
	Cfg          config.Config
	Reservations ReservationStore
	Settings     SettingsStore
}

func NewReservationHandler(cfg config.Config, r ReservationStore, s SettingsStore) *ReservationHandler {
	return &ReservationHandler{Cfg: cfg, Reservations: r, Settings: s}
}

type createReservationReq struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Description string `json:"description"`
}

// Create registers a pending reservation from the public form.  While the
// admin has closed the reservation window the endpoint refuses with 403;
// door registration stays open regardless.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	settings, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settings lookup failed"})
	}
	if settings.IsReservationClosed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "reservation closed"})
	}

	res := &model.Reservation{
		Name:        strings.TrimSpace(req.Name),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		Amount:      h.Cfg.TicketAmount,
		Status:      model.StatusPending,
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.Reservations.Create(ctx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	log.Printf("[Reservation] %d created, name=%q", res.ID, res.Name)
	return c.JSON(http.StatusCreated, res)
}

type onsiteReservationReq struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	Description string `json:"description"`
}

// CreateOnsite registers a walk-up at the door.  The reservation starts as
// onsite_pending until staff confirm the cash or transfer payment.  Walk-ups
// get their ticket in person, so the email stays optional.
func (h *ReservationHandler) CreateOnsite(c echo.Context) error {
	var req onsiteReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res := &model.Reservation{
		Name:        strings.TrimSpace(req.Name),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		Amount:      h.Cfg.OnsiteAmount,
		Status:      model.StatusOnsitePending,
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.Reservations.Create(ctx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	log.Printf("[Reservation] %d created onsite, name=%q", res.ID, res.Name)
	return c.JSON(http.StatusCreated, res)
}

type updateContactReq struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateContact corrects the contact details on a reservation.  Payment
// state is untouchable here; only the admin endpoints change status.
func (h *ReservationHandler) UpdateContact(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateContactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Reservations.UpdateContact(ctx, id,
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone), strings.TrimSpace(req.Email))
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}
