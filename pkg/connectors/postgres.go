// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gorm/caches/v4"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/configs"
)

// PostgresConnector hands out request-scoped gorm sessions.
type PostgresConnector interface {
	Connect(ctx context.Context) error
	IsConnected(ctx context.Context) bool
	DB(ctx context.Context) *gorm.DB
	Disconnect(ctx context.Context) error
	Name() string
}

type postgresConnector struct {
	cfg    *configs.PostgresConfig
	db     *gorm.DB
	logger commons.Logger
}

func NewPostgresConnector(cfg *configs.PostgresConfig, logger commons.Logger) PostgresConnector {
	return &postgresConnector{cfg: cfg, logger: logger}
}

func (p *postgresConnector) dialector() gorm.Dialector {
	if p.cfg.Driver == "sqlite" {
		path := p.cfg.SqlitePath
		if path == "" {
			path = "file::memory:?cache=shared"
		}
		return sqlite.Open(path)
	}
	sslMode := p.cfg.SslMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		p.cfg.Host, p.cfg.Auth.User, p.cfg.Auth.Password, p.cfg.DBName, p.cfg.Port, sslMode)
	return postgres.Open(dsn)
}

func (p *postgresConnector) Connect(ctx context.Context) error {
	db, err := gorm.Open(p.dialector(), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", p.Name(), err)
	}
	// identical reads issued concurrently share one round trip
	if err := db.Use(&caches.Caches{Conf: &caches.Config{Easer: true}}); err != nil {
		return fmt.Errorf("failed to register query easer: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle: %w", err)
	}
	if p.cfg.MaxOpenConnection > 0 {
		sqlDB.SetMaxOpenConns(p.cfg.MaxOpenConnection)
	}
	if p.cfg.MaxIdealConnection > 0 {
		sqlDB.SetMaxIdleConns(p.cfg.MaxIdealConnection)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	p.db = db
	p.logger.Infof("%s connection established", p.Name())
	return nil
}

func (p *postgresConnector) IsConnected(ctx context.Context) bool {
	if p.db == nil {
		return false
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func (p *postgresConnector) DB(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

func (p *postgresConnector) Disconnect(ctx context.Context) error {
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *postgresConnector) Name() string {
	if p.cfg.Driver == "sqlite" {
		return "SQLITE"
	}
	return fmt.Sprintf("PSQL %s:%d", p.cfg.Host, p.cfg.Port)
}
