package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SettingsHandler serves the public settings document and the health probe.
type SettingsHandler struct {
	Settings SettingsStore
}

func NewSettingsHandler(s SettingsStore) *SettingsHandler {
	return &SettingsHandler{Settings: s}
}

// Get returns the public site settings (currently just the reservation
// window flag).  The response sits behind the Redis cache middleware; a
// short TTL keeps the admin toggle responsive.
func (h *SettingsHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settings lookup failed"})
	}
	return c.JSON(http.StatusOK, s)
}

// Health is the liveness probe.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
