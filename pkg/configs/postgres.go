// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package configs

type PostgresAuth struct {
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

type PostgresConfig struct {
	Host               string       `mapstructure:"host" validate:"required"`
	Port               int          `mapstructure:"port" validate:"required"`
	DBName             string       `mapstructure:"db_name" validate:"required"`
	Auth               PostgresAuth `mapstructure:"auth" validate:"required"`
	MaxOpenConnection  int          `mapstructure:"max_open_connection"`
	MaxIdealConnection int          `mapstructure:"max_ideal_connection"`
	SslMode            string       `mapstructure:"ssl_mode"`
	// Driver selects the gorm dialect: "postgres" (default) or "sqlite".
	Driver string `mapstructure:"driver"`
	// SqlitePath is only read when Driver is "sqlite".
	SqlitePath string `mapstructure:"sqlite_path"`
}
