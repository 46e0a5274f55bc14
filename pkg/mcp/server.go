// Package mcp exposes the deck to MCP clients as tools.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/kenkudeck/pkg/action"
	"github.com/urmzd/kenkudeck/pkg/api/handlers"
)

// Playback is the cached playback the tools report and refresh.
// *kenku.Player implements it.
type Playback interface {
	handlers.Views
	RefreshPlaylist(ctx context.Context) error
	RefreshSoundboard(ctx context.Context) error
}

// Server wraps the MCP server with the deck's tools
type Server struct {
	mcpServer *server.MCPServer
	deck      handlers.Deck
	registry  *action.Registry
	playback  Playback
	link      handlers.Link
}

// NewServer creates a new MCP server. link may be nil when no board is attached.
func NewServer(deck handlers.Deck, registry *action.Registry, playback Playback, link handlers.Link) *Server {
	s := &Server{
		deck:     deck,
		registry: registry,
		playback: playback,
		link:     link,
	}

	s.mcpServer = server.NewMCPServer(
		"kenkudeck",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
