// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package configs

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// MaxConnection caps the client pool.
	MaxConnection int `mapstructure:"max_connection"`
}

// Enabled reports whether a redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}
