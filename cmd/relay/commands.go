// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	internal_auth "github.com/samvaad/api/relay-api/internal/auth"
)

const defaultTokenTTL = 12 * time.Hour

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	postgres, history, err := openHistory(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer postgres.Disconnect(cmd.Context())

	if err := history.Migrate(cmd.Context()); err != nil {
		return err
	}
	logger.Infof("history tables are up to date")
	return nil
}

func runHistoryFind(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	postgres, history, err := openHistory(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer postgres.Disconnect(cmd.Context())

	records, err := history.FindByIdentifier(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	role, _ := cmd.Flags().GetString("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	token, err := internal_auth.NewAuthenticator(logger, cfg.Secret, cfg.Name).Sign(args[0], role, ttl)
	if err != nil {
		return err
	}
	cmd.Println(token)
	return nil
}
