// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package connectors

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/configs"
)

type RedisConnector interface {
	Connect(ctx context.Context) error
	IsConnected(ctx context.Context) bool
	GetConnection() *redis.Client
	Disconnect(ctx context.Context) error
	Name() string
}

type redisConnector struct {
	cfg    *configs.RedisConfig
	client *redis.Client
	logger commons.Logger
}

func NewRedisConnector(cfg *configs.RedisConfig, logger commons.Logger) RedisConnector {
	return &redisConnector{cfg: cfg, logger: logger}
}

func (r *redisConnector) Connect(ctx context.Context) error {
	r.client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", r.cfg.Host, r.cfg.Port),
		Password: r.cfg.Password,
		DB:       r.cfg.DB,
		PoolSize: r.cfg.MaxConnection,
	})
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping %s: %w", r.Name(), err)
	}
	r.logger.Infof("%s connection established", r.Name())
	return nil
}

func (r *redisConnector) IsConnected(ctx context.Context) bool {
	return r.client != nil && r.client.Ping(ctx).Err() == nil
}

func (r *redisConnector) GetConnection() *redis.Client {
	return r.client
}

func (r *redisConnector) Disconnect(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *redisConnector) Name() string {
	return fmt.Sprintf("REDIS %s:%d", r.cfg.Host, r.cfg.Port)
}
