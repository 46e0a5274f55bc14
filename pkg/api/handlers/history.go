package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/kenkudeck/pkg/api/types"
	"github.com/urmzd/kenkudeck/pkg/db"
)

// HistoryHandler serves the instruction journal
type HistoryHandler struct {
	journal db.JournalStore
}

// NewHistoryHandler creates a new history handler. journal may be nil when
// journaling is disabled.
func NewHistoryHandler(journal db.JournalStore) *HistoryHandler {
	return &HistoryHandler{journal: journal}
}

// History handles GET /history?limit=N
// @Summary      Instruction history
// @Description  Returns the most recent journaled instructions, newest first
// @Tags         history
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries (default 50, max 1000)"
// @Success      200    {object}  types.HistoryResponse
// @Failure      400    {object}  types.ErrorResponse  "Invalid limit"
// @Failure      503    {object}  types.ErrorResponse  "Journal disabled"
// @Failure      500    {object}  types.ErrorResponse  "Journal error"
// @Router       /history [get]
func (h *HistoryHandler) History(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{
			Error:   "journal_disabled",
			Message: "Instruction journal is not enabled",
		})
		return
	}

	limit := db.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	entries, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "journal_error",
			Message: err.Error(),
		})
		return
	}

	out := make([]types.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.HistoryEntry(e))
	}
	c.JSON(http.StatusOK, types.HistoryResponse{Entries: out, Count: len(out)})
}
