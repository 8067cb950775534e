// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package relay_routers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	consultationApi "github.com/samvaad/api/relay-api/api/consultation"
	healthCheckApi "github.com/samvaad/api/relay-api/api/health"
	internal_auth "github.com/samvaad/api/relay-api/internal/auth"
	internal_history "github.com/samvaad/api/relay-api/internal/history"
	internal_session "github.com/samvaad/api/relay-api/internal/session"
	"github.com/samvaad/config"
	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/connectors"
	"github.com/samvaad/pkg/utils"
)

// NewEngine builds the gin engine with middleware every route shares.
func NewEngine(cfg *config.AppConfig, logger commons.Logger) *gin.Engine {
	if utils.FromEnvironmentStr(cfg.Env) == utils.PRODUCTION {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type",
			utils.HEADER_AUTH_KEY,
			utils.HEADER_SOURCE_KEY,
			utils.HEADER_ENVIRONMENT_KEY,
			utils.HEADER_SESSION_KEY,
		},
		MaxAge: 12 * time.Hour,
	}))
	return engine
}

func requestLogger(logger commons.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func HealthCheckRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger, postgres connectors.PostgresConnector) {
	logger.Info("Internal HealthCheckRoutes and Connectors added to engine.")
	apiv1 := engine.Group("")
	hcApi := healthCheckApi.New(cfg, logger, postgres)
	{
		apiv1.GET("/readiness/", hcApi.Readiness)
		apiv1.GET("/healthz/", hcApi.Healthz)
	}
}

func ConsultationRoutes(
	cfg *config.AppConfig,
	engine *gin.Engine,
	logger commons.Logger,
	auth *internal_auth.Authenticator,
	manager *internal_session.Manager,
	history internal_history.Store,
) {
	logger.Info("ConsultationRoutes added to engine.")
	cApi := consultationApi.NewConsultationApi(cfg, logger, manager, history)

	apiv1 := engine.Group("v1", auth.Middleware())
	{
		apiv1.GET("/languages", cApi.Languages)
		apiv1.GET("/history", cApi.History)

		apiv1.POST("/consultations", cApi.Create)
		apiv1.GET("/consultations/:id", cApi.Get)
		apiv1.POST("/consultations/:id/capture/:party/start", cApi.StartCapture)
		apiv1.POST("/consultations/:id/capture/:party/stop", cApi.StopCapture)
		apiv1.PUT("/consultations/:id/auto-flow", cApi.SetAutoFlow)
		apiv1.PUT("/consultations/:id/language", cApi.SetLanguage)
		apiv1.POST("/consultations/:id/playback/cancel", cApi.CancelPlayback)
		apiv1.POST("/consultations/:id/playback/replay", cApi.Replay)
		apiv1.POST("/consultations/:id/end", cApi.End)
		apiv1.POST("/consultations/:id/analysis", cApi.RetryAnalysis)
		apiv1.POST("/consultations/:id/verify", cApi.Verify)
		apiv1.GET("/consultations/:id/stream", cApi.Stream)
	}
}
