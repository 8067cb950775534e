// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package utils

const (
	HEADER_AUTH_KEY        = "Authorization"
	HEADER_SOURCE_KEY      = "X-Relay-Source"
	HEADER_ENVIRONMENT_KEY = "X-Relay-Environment"
	HEADER_SESSION_KEY     = "X-Relay-Session"

	BEARER_PREFIX = "Bearer "
)
