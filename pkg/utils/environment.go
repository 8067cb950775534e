// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package utils

import "strings"

type RelayEnvironment string

const (
	PRODUCTION  RelayEnvironment = "production"
	DEVELOPMENT RelayEnvironment = "development"
)

func (e RelayEnvironment) Get() string {
	return string(e)
}

// FromEnvironmentStr parses an environment name; anything unknown is development.
func FromEnvironmentStr(s string) RelayEnvironment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production":
		return PRODUCTION
	default:
		return DEVELOPMENT
	}
}
