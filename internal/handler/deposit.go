package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/model"
	"github.com/atempo/atempo-server/internal/queue"
	"github.com/atempo/atempo-server/internal/utils"
)

// DepositHandler receives bank deposit notifications and matches them to
// pending reservations by depositor name.
type DepositHandler struct {
	Reservations ReservationStore
	Publish      Publisher
}

func NewDepositHandler(r ReservationStore, p Publisher) *DepositHandler {
	return &DepositHandler{Reservations: r, Publish: p}
}

type depositReq struct {
	Name string `json:"name"`
	// Amount arrives as a JSON number (20000) or a formatted string
	// ("20,000원") depending on which bank relay forwarded the deposit.
	Amount any `json:"amount"`
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// rawAmount renders the amount field as text regardless of the JSON type
// the webhook sent.
func rawAmount(v any) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return a
	case float64:
		return strconv.FormatFloat(a, 'f', -1, 64)
	default:
		return fmt.Sprint(a)
	}
}

// NormalizeAmount strips everything but digits from a raw amount string, so
// "20,000원" and "20000" both read as 20000.  Returns 0 when no digits
// remain.
func NormalizeAmount(raw string) int64 {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// HandleDeposit matches one deposit notification against pending
// reservations:
//
//	no pending match      -> 404, nothing mutated
//	exactly one match     -> paid + ticket token, ticket.issued published
//	two or more matches   -> all flipped to ambiguous for manual review
//
// A body missing the name or a readable amount is rejected before any
// matching.  The amount itself is logged but never used to narrow the
// match; depositors routinely transfer the wrong amount and the venue
// resolves that by hand.
func (h *DepositHandler) HandleDeposit(c echo.Context) error {
	var req depositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	amount := NormalizeAmount(rawAmount(req.Amount))
	if amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	matches, err := h.Reservations.FindPendingByName(ctx, name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	switch len(matches) {
	case 0:
		log.Printf("[Deposit] no pending reservation for name=%q amount=%d", name, amount)
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "no pending reservation for depositor"})

	case 1:
		res := matches[0]
		token := utils.NewTicketToken(utils.TicketTokenPrefix)
		now := time.Now().UTC()
		won, err := h.Reservations.MarkPaid(ctx, res.ID, token, now, model.StatusPending)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		if !won {
			// Someone else (a concurrent notification or an admin) already
			// moved this reservation out of pending.
			log.Printf("[Deposit] reservation %d already transitioned, name=%q", res.ID, name)
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation no longer pending"})
		}
		log.Printf("[Deposit] reservation %d paid, name=%q amount=%d", res.ID, name, amount)
		if err := h.Publish(ctx, queue.TicketIssuedEvent{
			ReservationID: res.ID,
			Name:          res.Name,
			Email:         res.Email,
			Token:         token,
			IssuedAt:      now,
		}); err != nil {
			// The transition is committed; email delivery will need a manual
			// retrigger via admin approval if the broker stays down.
			log.Printf("[Deposit] publish failed for reservation %d: %v", res.ID, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "reservation confirmed",
			"status":  model.StatusPaid,
			"token":   token,
		})

	default:
		n, err := h.Reservations.MarkPendingAmbiguous(ctx, name)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		log.Printf("[Deposit] %d reservations marked ambiguous, name=%q amount=%d", n, name, amount)
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": "multiple pending reservations share this name",
			"status":  model.StatusAmbiguous,
			"count":   n,
		})
	}
}
