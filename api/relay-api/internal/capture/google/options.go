// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_capture_google

import (
	"google.golang.org/api/option"

	"github.com/samvaad/config"
	"github.com/samvaad/pkg/utils"
)

// Introduced constants for default values
const (
	DefaultModel           = "latest_long"
	DefaultSampleRateHertz = 16000
)

// ClientOptions turns the configured google credentials into client options.
// An empty result means the client falls back to application default
// credentials.
func ClientOptions(cfg config.GoogleConfig) []option.ClientOption {
	co := make([]option.ClientOption, 0)
	if cfg.ApiKey != "" {
		co = append(co, option.WithAPIKey(cfg.ApiKey))
	}
	if cfg.ProjectId != "" {
		co = append(co, option.WithQuotaProject(cfg.ProjectId))
	}
	if cfg.ServiceAccountKey != "" {
		co = append(co, option.WithCredentialsJSON([]byte(cfg.ServiceAccountKey)))
	}
	return co
}

// HasCredentials reports whether explicit credentials were configured.
func HasCredentials(cfg config.GoogleConfig) bool {
	return !utils.IsEmpty(cfg.ApiKey) || !utils.IsEmpty(cfg.ServiceAccountKey)
}
