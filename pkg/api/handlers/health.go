package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/kenkudeck/pkg/api/types"
	"github.com/urmzd/kenkudeck/pkg/dispatch"
)

// Link reports whether the serial connection to the board is up.
type Link interface {
	IsOpen() bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	deck Deck
	link Link
}

// NewHealthHandler creates a new health handler. link may be nil when the
// deck runs without a board.
func NewHealthHandler(deck Deck, link Link) *HealthHandler {
	return &HealthHandler{deck: deck, link: link}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Reports the serial link, the dispatcher state and the last Kenku FM error
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Deck is healthy"
// @Failure      503  {object}  types.HealthResponse  "Serial link down or dispatcher stopped"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	serialStatus := "none"
	if h.link != nil {
		serialStatus = "disconnected"
		if h.link.IsOpen() {
			serialStatus = "connected"
		}
	}

	stats := h.deck.Stats()

	status := "healthy"
	httpStatus := http.StatusOK
	if serialStatus == "disconnected" || stats.State == dispatch.Closed.String() {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:          status,
		Serial:          serialStatus,
		Dispatcher:      stats,
		LastRemoteError: stats.LastError,
		Timestamp:       time.Now(),
	})
}
