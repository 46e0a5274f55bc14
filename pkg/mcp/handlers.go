package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/kenkudeck/pkg/action"
	"github.com/urmzd/kenkudeck/pkg/api/handlers"
	"github.com/urmzd/kenkudeck/pkg/dispatch"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	serialStatus := "none"
	if s.link != nil {
		serialStatus = "disconnected"
		if s.link.IsOpen() {
			serialStatus = "connected"
		}
	}

	stats := s.deck.Stats()
	status := "healthy"
	if serialStatus == "disconnected" || stats.State == dispatch.Closed.String() {
		status = "unhealthy"
	}

	out := GetHealthOutput{
		Status:          status,
		Serial:          serialStatus,
		Dispatcher:      stats,
		LastRemoteError: stats.LastError,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListBindings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatJSON(handlers.BindingsResponse(s.registry))), nil
}

func (s *Server) handleListCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatJSON(action.Commands())), nil
}

func (s *Server) handlePressKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := requiredString(request, "code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(code) != 1 {
		return mcp.NewToolResultError(fmt.Sprintf("key code %q must be a single ASCII character", code)), nil
	}

	outcome, err := s.deck.Press(ctx, code[0])
	if err != nil {
		switch {
		case errors.Is(err, action.ErrUnknownCode):
			return mcp.NewToolResultError(fmt.Sprintf("key %q is not bound; use list_bindings", code)), nil
		case errors.Is(err, dispatch.ErrStopped), errors.Is(err, dispatch.ErrNotRunning):
			return mcp.NewToolResultError(fmt.Sprintf("deck is not accepting key presses: %s", err)), nil
		case len(outcome.Commands) > 0:
			out := PressKeyOutput{Success: false, Outcome: outcome}
			return mcp.NewToolResultError(formatJSON(out)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to press key %q: %s", code, err)), nil
	}

	return mcp.NewToolResultText(formatJSON(PressKeyOutput{Success: true, Outcome: outcome})), nil
}

func (s *Server) handleGetPlaybackState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetBool("refresh", false) {
		if err := s.playback.RefreshPlaylist(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to refresh playlist: %s", err)), nil
		}
		if err := s.playback.RefreshSoundboard(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to refresh soundboard: %s", err)), nil
		}
	}

	return mcp.NewToolResultText(formatJSON(handlers.PlaybackResponse(s.playback, time.Now()))), nil
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
