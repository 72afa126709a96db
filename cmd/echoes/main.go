// Package main is the entry point for Dungeon of Echoes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/entity"
	"github.com/samdwyer/echoes/internal/game"
	"github.com/samdwyer/echoes/internal/gamedata"
	"github.com/samdwyer/echoes/internal/logging"
	"github.com/samdwyer/echoes/internal/telemetry"
	"github.com/samdwyer/echoes/internal/ui"
)

func main() {
	configPath := flag.String("config", "echoes.yaml", "path to the YAML tuning file")
	flag.Parse()

	// Not fatal: the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Note: .env file not loaded: %v", err)
	}
	setupOTelEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			logger.Warn("telemetry setup failed, running without tracing", zap.Error(err))
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Warn("telemetry shutdown", zap.Error(err))
				}
			}()
		}
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("game error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	content := gamedata.MustLoadContent()

	class := content.Classes.GetByID(cfg.Settings.PlayerClass)
	if class == nil {
		return fmt.Errorf("unknown player class %q", cfg.Settings.PlayerClass)
	}
	player := entity.NewPlayer("player", cfg.Settings.PlayerName, class, content, cfg.Settings)

	screen, err := ui.NewScreen()
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	g := game.New(cfg, content, player, screen, logger)
	defer g.Close()

	logger.Info("game started",
		zap.String("player", player.Name),
		zap.String("class", class.ID),
		zap.Int64("seed", cfg.Settings.Seed),
	)
	return g.Run(ctx)
}

// setupOTelEnv points the OTLP exporter at Honeycomb when an API key is
// present and no endpoint was configured.
func setupOTelEnv() {
	apiKey := os.Getenv("HONEYCOMB_ECHOES_API_KEY")
	if apiKey == "" {
		return
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")
	}
	dataset := os.Getenv("HONEYCOMB_ECHOES_DATASET")
	if dataset == "" {
		dataset = telemetry.ServiceName
	}
	os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
		fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
}
