// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package main

import (
	"context"
	"fmt"
	"time"

	internal_coordinator "github.com/samvaad/api/relay-api/internal/coordinator"
	internal_history "github.com/samvaad/api/relay-api/internal/history"
	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/config"
	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/connectors"
)

func loadConfig() (*config.AppConfig, commons.Logger, error) {
	v, err := config.InitConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := config.GetApplicationConfig(v)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	opts := []commons.LoggerOption{commons.Name(cfg.Name), commons.Level(cfg.LogLevel)}
	if cfg.LogPath != "" {
		opts = append(opts, commons.Path(cfg.LogPath))
	}
	logger, err := commons.NewApplicationLogger(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func openHistory(ctx context.Context, cfg *config.AppConfig, logger commons.Logger) (connectors.PostgresConnector, internal_history.Store, error) {
	postgres := connectors.NewPostgresConnector(&cfg.PostgresConfig, logger)
	if err := postgres.Connect(ctx); err != nil {
		return nil, nil, err
	}
	cipher, err := internal_history.NewCipher(cfg.HistoryConfig.EncryptionKey)
	if err != nil {
		_ = postgres.Disconnect(ctx)
		return nil, nil, err
	}
	return postgres, internal_history.NewStore(postgres, cipher, logger), nil
}

// coordinatorConfig maps the relay settings onto turn-taking parameters.
func coordinatorConfig(relay config.RelayConfig) (internal_coordinator.Config, error) {
	cfg := internal_coordinator.DefaultConfig()
	cfg.SilenceTimeout = time.Duration(relay.SilenceTimeoutMs) * time.Millisecond
	cfg.MinSpeechLength = relay.MinSpeechLength
	if relay.TranslationTimeoutMs > 0 {
		cfg.TranslationTimeout = time.Duration(relay.TranslationTimeoutMs) * time.Millisecond
	}
	party, err := internal_type.ParseParty(relay.InitialParty)
	if err != nil {
		return cfg, err
	}
	cfg.InitialParty = party
	return cfg, nil
}
