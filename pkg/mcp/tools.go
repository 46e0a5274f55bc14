package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check the serial link to the key deck, the dispatcher state and the last Kenku FM error"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_bindings",
			mcp.WithDescription("List every configured key with the Kenku FM commands it runs, in order"),
		),
		s.handleListBindings,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_commands",
			mcp.WithDescription("List the commands a key binding may use, with their parameter schemas"),
		),
		s.handleListCommands,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("press_key",
			mcp.WithDescription("Press a configured key as if it came from the deck. Runs the key's commands against Kenku FM"),
			mcp.WithString("code",
				mcp.Required(),
				mcp.Description("Single character key code, e.g. \"1\" or \"+\""),
			),
		),
		s.handlePressKey,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_playback_state",
			mcp.WithDescription("Get the cached Kenku FM playlist and soundboard playback"),
			mcp.WithBoolean("refresh",
				mcp.Description("Fetch both views from Kenku FM before answering (default false)"),
			),
		),
		s.handleGetPlaybackState,
	)
}
