package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/kenkudeck/pkg/action"
	"github.com/urmzd/kenkudeck/pkg/api"
	"github.com/urmzd/kenkudeck/pkg/config"
	"github.com/urmzd/kenkudeck/pkg/db"
	"github.com/urmzd/kenkudeck/pkg/deck"
	"github.com/urmzd/kenkudeck/pkg/dispatch"
	"github.com/urmzd/kenkudeck/pkg/kenku"
	"github.com/urmzd/kenkudeck/pkg/logging"

	_ "github.com/urmzd/kenkudeck/docs"
)

var errLinkLost = errors.New("serial link lost")

// @title           kenkudeck API
// @version         1.0
// @description     Status and virtual key presses for a serial Kenku FM key deck

// @host      localhost:8090
// @BasePath  /api/v1
// @schemes   http

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration")
	serialPort := flag.String("port", "", "Serial port of the key deck, or \"auto\" (overrides config)")
	logLevel := flag.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Also write JSON logs to this rotated file")
	flag.Parse()

	closer, err := logging.Setup(logging.Options{Level: *logLevel, File: *logFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	err = run(*configPath, *serialPort)
	_ = closer.Close()
	if err != nil {
		log.Error().Err(err).Msg("kenkudeck stopped")
		os.Exit(1)
	}
}

func run(configPath, serialPort string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serialPort != "" {
		cfg.Serial.Port = serialPort
	}

	log.Info().
		Str("kenku", fmt.Sprintf("%s:%d", cfg.Kenku.URL, cfg.Kenku.Port)).
		Dur("freshness", cfg.Kenku.Freshness.Duration()).
		Int("keys", len(cfg.Keys)).
		Msg("Configuration loaded")

	client, err := kenku.NewClient(cfg.Kenku.URL, cfg.Kenku.Port, cfg.Kenku.Timeout.Duration())
	if err != nil {
		return err
	}
	player := kenku.NewPlayer(client, cfg.Kenku.Freshness.Duration())

	registry, err := action.FromConfig(cfg.Keys)
	if err != nil {
		return err
	}

	portPath := cfg.Serial.Port
	if portPath == config.AutoPort {
		portPath, err = deck.Detect()
		if err != nil {
			return err
		}
	}
	port, err := deck.OpenSerial(portPath, cfg.Serial.Baud, cfg.Serial.Timeout.Duration())
	if err != nil {
		return err
	}
	defer func() {
		if err := port.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close serial port")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := dispatch.New(registry, player, port)
	dispatcher.Start(ctx)

	var journal db.JournalStore
	if cfg.Journal.Enabled {
		database, err := db.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate journal: %w", err)
		}
		log.Info().Str("path", database.Path()).Msg("Journal opened")

		journal = database.Journal()
		events := dispatcher.SubscribeBuffered(db.FollowBuffer)
		followed := make(chan struct{})
		go func() {
			defer close(followed)
			db.Follow(context.WithoutCancel(ctx), journal, events)
		}()
		defer func() {
			dispatcher.Unsubscribe(events)
			<-followed
		}()
	}

	if cfg.API.Enabled {
		router := api.NewRouter(api.Dependencies{
			Deck:     dispatcher,
			Registry: registry,
			Views:    player,
			Link:     port,
			Journal:  journal,
			Origins:  cfg.API.AllowOrigins,
		})
		srv := &http.Server{
			Addr:              cfg.API.Address,
			Handler:           router.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info().Str("address", cfg.API.Address).Msg("Starting API server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("API server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Closing the port unblocks Serve.
	go func() {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down...")
		case <-dispatcher.Done():
		}
		_ = port.Close()
	}()

	if err := dispatcher.Serve(ctx, deck.NewReader(port)); err != nil {
		return err
	}
	if ctx.Err() == nil {
		return fmt.Errorf("%w: %s", errLinkLost, port.Path())
	}
	return nil
}
