package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/kenkudeck/pkg/action"
	"github.com/urmzd/kenkudeck/pkg/api/types"
	"github.com/urmzd/kenkudeck/pkg/dispatch"
	"github.com/urmzd/kenkudeck/pkg/kenku"
)

// Deck is the dispatcher surface the API drives. *dispatch.Dispatcher
// implements it.
type Deck interface {
	Press(ctx context.Context, code byte) (dispatch.Outcome, error)
	Stats() dispatch.Stats
	Subscribe() chan dispatch.Event
	Unsubscribe(ch chan dispatch.Event)
}

var _ Deck = (*dispatch.Dispatcher)(nil)

// KeysHandler lists bindings and presses keys
type KeysHandler struct {
	deck     Deck
	registry *action.Registry
}

// NewKeysHandler creates a new keys handler
func NewKeysHandler(deck Deck, registry *action.Registry) *KeysHandler {
	return &KeysHandler{deck: deck, registry: registry}
}

// ListBindings handles GET /bindings
// @Summary      List key bindings
// @Description  Returns every configured key code with its ordered commands
// @Tags         keys
// @Produce      json
// @Success      200  {object}  types.BindingsResponse
// @Router       /bindings [get]
func (h *KeysHandler) ListBindings(c *gin.Context) {
	c.JSON(http.StatusOK, BindingsResponse(h.registry))
}

// BindingsResponse renders the registry's bindings.
func BindingsResponse(registry *action.Registry) types.BindingsResponse {
	bindings := registry.Bindings()
	out := make([]types.Binding, 0, len(bindings))
	for _, b := range bindings {
		commands := make([]types.Command, 0, len(b.Commands))
		for _, cmd := range b.Commands {
			commands = append(commands, types.Command{Name: cmd.Name, Params: cmd.Params})
		}
		out = append(out, types.Binding{
			Code:        string(b.Code),
			Description: b.Description,
			Commands:    commands,
		})
	}
	return types.BindingsResponse{Bindings: out, Count: len(out)}
}

// Press handles POST /keys/:code
// @Summary      Press a key
// @Description  Runs the commands bound to code as a virtual instruction. Virtual presses are never acknowledged on the serial line
// @Tags         keys
// @Produce      json
// @Param        code  path      string  true  "Single character key code"
// @Success      200   {object}  types.PressResponse
// @Failure      400   {object}  types.ErrorResponse  "Invalid code"
// @Failure      404   {object}  types.ErrorResponse  "Unbound code"
// @Failure      502   {object}  types.ErrorResponse  "Kenku FM error"
// @Failure      503   {object}  types.ErrorResponse  "Dispatcher stopped"
// @Failure      504   {object}  types.ErrorResponse  "Request timed out"
// @Router       /keys/{code} [post]
func (h *KeysHandler) Press(c *gin.Context) {
	code := c.Param("code")
	if len(code) != 1 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_code",
			Message: "Key code must be a single ASCII character",
		})
		return
	}

	outcome, err := h.deck.Press(c.Request.Context(), code[0])
	if err != nil {
		status, body := pressError(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, types.PressResponse{Outcome: outcome})
}

func pressError(err error) (int, types.ErrorResponse) {
	switch {
	case errors.Is(err, action.ErrUnknownCode):
		return http.StatusNotFound, types.ErrorResponse{Error: "unknown_code", Message: err.Error()}
	case errors.Is(err, dispatch.ErrStopped), errors.Is(err, dispatch.ErrNotRunning):
		return http.StatusServiceUnavailable, types.ErrorResponse{Error: "dispatcher_stopped", Message: err.Error()}
	case errors.Is(err, action.ErrConfiguration):
		return http.StatusInternalServerError, types.ErrorResponse{Error: "configuration_error", Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, types.ErrorResponse{Error: "timeout", Message: "Request timed out waiting for the deck"}
	case errors.Is(err, kenku.ErrRemote), errors.Is(err, kenku.ErrTransport):
		return http.StatusBadGateway, types.ErrorResponse{Error: "remote_error", Message: err.Error()}
	default:
		return http.StatusInternalServerError, types.ErrorResponse{Error: "deck_error", Message: err.Error()}
	}
}
