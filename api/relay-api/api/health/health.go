// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package health_check_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samvaad/config"
	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/connectors"
)

type HealthCheckApi struct {
	cfg      *config.AppConfig
	logger   commons.Logger
	postgres connectors.PostgresConnector
}

func New(cfg *config.AppConfig, logger commons.Logger, postgres connectors.PostgresConnector) *HealthCheckApi {
	return &HealthCheckApi{cfg: cfg, logger: logger, postgres: postgres}
}

// Healthz reports that the process is serving.
func (h *HealthCheckApi) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"healthy": true, "service": h.cfg.Name, "version": h.cfg.Version})
}

// Readiness additionally requires the history database.
func (h *HealthCheckApi) Readiness(c *gin.Context) {
	if h.postgres == nil || !h.postgres.IsConnected(c.Request.Context()) {
		h.logger.Warnf("readiness check failed: %s is not connected", h.name())
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, h.name(): false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true, h.name(): true})
}

func (h *HealthCheckApi) name() string {
	if h.postgres == nil {
		return "postgres"
	}
	return h.postgres.Name()
}
