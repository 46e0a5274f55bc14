package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/kenkudeck/pkg/action"
	"github.com/urmzd/kenkudeck/pkg/config"
	"github.com/urmzd/kenkudeck/pkg/db"
	"github.com/urmzd/kenkudeck/pkg/dispatch"
	"github.com/urmzd/kenkudeck/pkg/kenku"
	"github.com/urmzd/kenkudeck/pkg/logging"
	deckmcp "github.com/urmzd/kenkudeck/pkg/mcp"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration")
	logLevel := flag.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Also write JSON logs to this rotated file")
	flag.Parse()

	// Logging must go to stderr, stdout is the MCP transport
	closer, err := logging.Setup(logging.Options{Level: *logLevel, File: *logFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = closer.Close() }()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client, err := kenku.NewClient(cfg.Kenku.URL, cfg.Kenku.Port, cfg.Kenku.Timeout.Duration())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid Kenku FM address")
	}
	player := kenku.NewPlayer(client, cfg.Kenku.Freshness.Duration())

	registry, err := action.FromConfig(cfg.Keys)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid key bindings")
	}

	// No board: virtual presses are never acknowledged
	dispatcher := dispatch.New(registry, player, io.Discard)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	if cfg.Journal.Enabled {
		database, err := db.Open(cfg.Journal.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open journal")
		}
		defer func() {
			if err := database.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close journal")
			}
		}()
		if err := database.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to run journal migrations")
		}
		go db.Follow(ctx, database.Journal(), dispatcher.SubscribeBuffered(db.FollowBuffer))
	}

	mcpServer := deckmcp.NewServer(dispatcher, registry, player, nil)

	log.Info().Int("keys", registry.Len()).Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
}
