package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/kenkudeck/pkg/api/types"
	"github.com/urmzd/kenkudeck/pkg/kenku"
)

// Views exposes the cached playback views. *kenku.Player implements it.
type Views interface {
	Playlist() *kenku.View
	Soundboard() *kenku.View
}

// StateHandler reports cached playback without contacting Kenku FM
type StateHandler struct {
	views Views
}

// NewStateHandler creates a new state handler
func NewStateHandler(views Views) *StateHandler {
	return &StateHandler{views: views}
}

// GetState handles GET /state
// @Summary      Cached playback state
// @Description  Returns the cached playlist and soundboard playback without contacting Kenku FM
// @Tags         state
// @Produce      json
// @Success      200  {object}  types.PlaybackResponse
// @Router       /state [get]
func (h *StateHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, PlaybackResponse(h.views, time.Now()))
}

// PlaybackResponse snapshots both views as of now.
func PlaybackResponse(views Views, now time.Time) types.PlaybackResponse {
	return types.PlaybackResponse{
		Playlist:   snapshot(views.Playlist(), now),
		Soundboard: snapshot(views.Soundboard(), now),
		Timestamp:  now,
	}
}

func snapshot(v *kenku.View, now time.Time) types.ViewSnapshot {
	state, expiry, ok := v.Snapshot()
	if !ok {
		return types.ViewSnapshot{}
	}
	return types.ViewSnapshot{
		Cached: true,
		Fresh:  !now.After(expiry),
		Expiry: &expiry,
		State:  state,
	}
}
