package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/utils"
)

// AudienceHandler issues anonymous audience sessions.  There is no server
// state behind them: the device uid plus nickname the client gets back is
// the whole identity, stored client-side and echoed on board requests.
type AudienceHandler struct{}

func NewAudienceHandler() *AudienceHandler { return &AudienceHandler{} }

type sessionReq struct {
	DeviceUID string `json:"deviceUid"`
	Nickname  string `json:"nickname"`
}

// CreateSession mints or confirms an audience identity.  A returning device
// sends its stored uid and keeps it; a fresh one gets a new uid.  A blank
// nickname gets a generated one.
func (h *AudienceHandler) CreateSession(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	// A uid outside the minted device_ namespace gets replaced; the board
	// reserves bare numeric uids for performer accounts.
	uid := strings.TrimSpace(req.DeviceUID)
	if !strings.HasPrefix(uid, utils.DeviceUIDPrefix) {
		uid = utils.NewDeviceUID()
	}
	return c.JSON(http.StatusOK, echo.Map{
		"uid":       uid,
		"name":      utils.NormalizeNickname(req.Nickname),
		"role":      "audience",
		"enteredAt": time.Now().UTC(),
	})
}
