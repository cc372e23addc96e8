package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// PerformerListHandler serves the public performer directory the board's
// recipient picker uses.  Only id and display name leave the server.
type PerformerListHandler struct {
	Users UserStore
}

func NewPerformerListHandler(u UserStore) *PerformerListHandler {
	return &PerformerListHandler{Users: u}
}

type performerEntry struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// List returns every performer's id and name.  Sits behind the response
// cache; the roster changes rarely.
func (h *PerformerListHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListPerformers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]performerEntry, 0, len(users))
	for _, u := range users {
		out = append(out, performerEntry{ID: u.ID, Name: u.Name})
	}
	return c.JSON(http.StatusOK, out)
}
