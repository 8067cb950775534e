// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_translator

import (
	"fmt"
	"time"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/config"
	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/connectors"
)

// NewTranslator builds the configured provider, wrapped with one retry and,
// when redis is available, a translation cache.
func NewTranslator(cfg *config.AppConfig, logger commons.Logger, redis connectors.RedisConnector) (internal_type.Translator, error) {
	timeout := time.Duration(cfg.RelayConfig.TranslationTimeoutMs) * time.Millisecond

	var provider internal_type.Translator
	switch cfg.RelayConfig.TranslationProvider {
	case "google", "":
		provider = NewGoogleTranslator(logger, cfg.RelayConfig.TranslationEndpoint, timeout)
	case "openai":
		if cfg.OpenAIConfig.ApiKey == "" {
			return nil, fmt.Errorf("openai translation requires an api key")
		}
		provider = NewOpenAITranslator(logger, cfg.OpenAIConfig.ApiKey, cfg.OpenAIConfig.Model)
	default:
		return nil, fmt.Errorf("unknown translation provider %q", cfg.RelayConfig.TranslationProvider)
	}

	translator := NewRetryingTranslator(logger, provider)
	if redis != nil && redis.GetConnection() != nil && cfg.RelayConfig.TranslationCacheTTL > 0 {
		ttl := time.Duration(cfg.RelayConfig.TranslationCacheTTL) * time.Second
		translator = NewCachedTranslator(logger, translator, redis.GetConnection(), ttl)
	}
	logger.Infof("translator ready: provider=%s", provider.Name())
	return translator, nil
}
