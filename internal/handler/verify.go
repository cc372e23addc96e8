package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/repository"
	"github.com/atempo/atempo-server/internal/utils"
)

// VerifyHandler resolves a ticket token to its reservation.  Verification
// is a pure read; it never changes reservation state, so a ticket can be
// opened any number of times before the holder reaches the door.
type VerifyHandler struct {
	Reservations ReservationStore
}

func NewVerifyHandler(r ReservationStore) *VerifyHandler {
	return &VerifyHandler{Reservations: r}
}

type verifyReq struct {
	Token string `json:"token"`
}

// Verify accepts either a bare token or a full ticket URL and reports
// whether it belongs to a reservation.  An unknown token is a normal
// outcome (success=false), not an error.
func (h *VerifyHandler) Verify(c echo.Context) error {
	var req verifyReq
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
		return c.JSON(http.StatusOK, echo.Map{"success": false})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"reservationId": res.ID,
		"name":          res.Name,
		"status":        res.Status,
		"checkedIn":     res.CheckedIn,
		"checkedInAt":   res.CheckedInAt,
		"token":         token,
	})
}
