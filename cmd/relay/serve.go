// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	internal_analysis "github.com/samvaad/api/relay-api/internal/analysis"
	internal_auth "github.com/samvaad/api/relay-api/internal/auth"
	internal_capture_google "github.com/samvaad/api/relay-api/internal/capture/google"
	internal_narrator "github.com/samvaad/api/relay-api/internal/narrator"
	internal_narrator_google "github.com/samvaad/api/relay-api/internal/narrator/google"
	internal_session "github.com/samvaad/api/relay-api/internal/session"
	internal_translator "github.com/samvaad/api/relay-api/internal/translator"
	relay_routers "github.com/samvaad/api/relay-api/router"
	"github.com/samvaad/pkg/connectors"
	"github.com/samvaad/pkg/utils"
)

const (
	sweepInterval   = time.Minute
	endedSessionTTL = 30 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	postgres, history, err := openHistory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := history.Migrate(ctx); err != nil {
		return err
	}

	var redis connectors.RedisConnector
	if cfg.RedisConfig.Enabled() {
		redis = connectors.NewRedisConnector(&cfg.RedisConfig, logger)
		if err := redis.Connect(ctx); err != nil {
			logger.Warnf("translation cache disabled: %v", err)
			redis = nil
		}
	}

	translator, err := internal_translator.NewTranslator(cfg, logger, redis)
	if err != nil {
		return err
	}

	if !internal_capture_google.HasCredentials(cfg.GoogleConfig) {
		logger.Infof("no google credentials configured, using application default credentials")
	}
	clientOpts := internal_capture_google.ClientOptions(cfg.GoogleConfig)
	providerOpts := utils.Option{"listen.model": cfg.GoogleConfig.ListenModel}
	recognizer, err := internal_capture_google.NewRecognizer(ctx, logger, cfg.GoogleConfig.SampleRateHertz, providerOpts, clientOpts...)
	if err != nil {
		return err
	}
	defer recognizer.Close()
	synthesizer, err := internal_narrator_google.NewSynthesizer(ctx, logger, cfg.GoogleConfig.SampleRateHertz, providerOpts, clientOpts...)
	if err != nil {
		return err
	}
	defer synthesizer.Close()

	var analyzer internal_analysis.Analyzer
	if generator, err := internal_analysis.NewGeminiGenerator(ctx, logger, cfg.GeminiConfig.ApiKey, cfg.GeminiConfig.Model); err != nil {
		logger.Warnf("analysis disabled: %v", err)
	} else {
		analyzer = internal_analysis.NewAnalyzer(logger, generator)
	}

	coordinatorCfg, err := coordinatorConfig(cfg.RelayConfig)
	if err != nil {
		return err
	}
	manager := internal_session.NewManager(ctx, logger, coordinatorCfg,
		internal_session.Defaults{
			ClinicianLanguage: cfg.RelayConfig.ClinicianLanguage,
			PatientLanguage:   cfg.RelayConfig.PatientLanguage,
			AutoFlow:          cfg.RelayConfig.AutoFlow,
		},
		internal_session.Dependencies{
			Recognizer:  recognizer,
			Translator:  translator,
			Synthesizer: synthesizer,
			Normalizer:  internal_narrator.NewNumberNormalizer(logger),
			History:     history,
			Analyzer:    analyzer,
		},
	)

	auth := internal_auth.NewAuthenticator(logger, cfg.Secret, cfg.Name)
	engine := relay_routers.NewEngine(cfg, logger)
	relay_routers.HealthCheckRoutes(cfg, engine, logger, postgres)
	relay_routers.ConsultationRoutes(cfg, engine, logger, auth, manager, history)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("%s %s listening on %s", cfg.Name, cfg.Version, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				manager.Sweep(endedSessionTTL)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		manager.Close(shutdownCtx)
		if redis != nil {
			_ = redis.Disconnect(shutdownCtx)
		}
		_ = postgres.Disconnect(shutdownCtx)
		return err
	})
	return g.Wait()
}
