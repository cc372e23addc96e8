package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/model"
	"github.com/atempo/atempo-server/internal/repository"
	"github.com/atempo/atempo-server/internal/utils"
)

// CheckinHandler runs the door: it admits ticket holders and reports
// headcount for the check-in desk.
type CheckinHandler struct {
	Reservations ReservationStore
}

func NewCheckinHandler(r ReservationStore) *CheckinHandler {
	return &CheckinHandler{Reservations: r}
}

type checkinReq struct {
	Token string `json:"token"`
}

// CheckIn admits the holder of a ticket token.  Only paid reservations
// (bank transfer or confirmed door payment) can be admitted.  Scanning the
// same ticket twice is reported, not re-recorded; the first scan's
// timestamp stands.
func (h *CheckinHandler) CheckIn(c echo.Context) error {
	var req checkinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	token := utils.ExtractTicketToken(req.Token)
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByToken(ctx, token)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown ticket"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	if res.Status != model.StatusPaid && res.Status != model.StatusOnsitePaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation not paid", "status": res.Status})
	}

	now := time.Now().UTC()
	admitted, err := h.Reservations.CheckIn(ctx, res.ID, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !admitted {
		// Already checked in; report the original admission time.
		return c.JSON(http.StatusOK, echo.Map{
			"success":          true,
			"alreadyCheckedIn": true,
			"name":             res.Name,
			"checkedInAt":      res.CheckedInAt,
		})
	}

	log.Printf("[Checkin] reservation %d admitted, name=%q", res.ID, res.Name)
	return c.JSON(http.StatusOK, echo.Map{
		"success":          true,
		"alreadyCheckedIn": false,
		"name":             res.Name,
		"checkedInAt":      now,
	})
}

// Stats reports how many paid reservations exist and how many are admitted.
func (h *CheckinHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	paid, checkedIn, err := h.Reservations.CheckinStats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"paid": paid, "checkedIn": checkedIn})
}
