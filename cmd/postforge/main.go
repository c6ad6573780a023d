package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/postforge/internal/config"
	"github.com/aleister1102/postforge/internal/logger"
	"github.com/aleister1102/postforge/internal/orchestrator"
)

func main() {
	flags := ParseFlags()

	// Load Global Configuration
	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
	}

	// Initialize zerolog logger
	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}

	// Validate the loaded configuration
	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}

	// Credentials come from the environment, never the config file
	credentials, err := config.LoadEnvCredentials(flags.EnvFile, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Missing workflow credentials")
	}

	publisher, err := orchestrator.NewPublisher(gCfg, credentials, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize publisher")
	}
	defer publisher.Close()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, cancelling publish run...")
		cancel()
	}()

	outcome, err := publisher.Publish(ctx)
	if err != nil {
		zLogger.Error().Err(err).Msg("Publish run failed")
		os.Exit(1)
	}

	fmt.Printf("Post published: %s (%s)\n", outcome.FilePath, outcome.Title)
}
