package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/atempo/atempo-server/internal/repository"
	"github.com/atempo/atempo-server/internal/utils"
)

// QRHandler renders a ticket token as a scannable QR PNG for the ticket
// page.
type QRHandler struct {
	Reservations ReservationStore
	BaseURL      string
}

func NewQRHandler(r ReservationStore, baseURL string) *QRHandler {
	return &QRHandler{Reservations: r, BaseURL: baseURL}
}

// Ticket serves the QR code for ?token=<ticket token>.  The code encodes
// the full ticket URL, so the check-in desk scanner lands on the same link
// the email carried.  Unknown tokens get 404 rather than a QR for a dead
// link.
func (h *QRHandler) Ticket(c echo.Context) error {
	token := utils.ExtractTicketToken(c.QueryParam("token"))
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Reservations.GetByToken(ctx, token); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown ticket"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	png, err := qrcode.Encode(utils.TicketURL(h.BaseURL, token), qrcode.Medium, 256)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode failed"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
