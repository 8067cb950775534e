// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package consultation_api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internal_analysis "github.com/samvaad/api/relay-api/internal/analysis"
	internal_history "github.com/samvaad/api/relay-api/internal/history"
	internal_session "github.com/samvaad/api/relay-api/internal/session"
	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/config"
	"github.com/samvaad/pkg/commons"
)

type ConsultationApi struct {
	cfg        *config.AppConfig
	logger     commons.Logger
	manager    *internal_session.Manager
	history    internal_history.Store
	sampleRate int
}

// NewConsultationApi serves the operator surface of live consultations.
// history may be nil, in which case lookups are unavailable.
func NewConsultationApi(cfg *config.AppConfig, logger commons.Logger, manager *internal_session.Manager, history internal_history.Store) *ConsultationApi {
	return &ConsultationApi{
		cfg:        cfg,
		logger:     logger,
		manager:    manager,
		history:    history,
		sampleRate: cfg.GoogleConfig.SampleRateHertz,
	}
}

type autoFlowRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type languageRequest struct {
	Party    *internal_type.Party `json:"party" binding:"required"`
	Language string               `json:"language" binding:"required"`
}

type partyRequest struct {
	Party *internal_type.Party `json:"party" binding:"required"`
}

func (api *ConsultationApi) session(c *gin.Context) (*internal_session.Session, bool) {
	s, err := api.manager.Get(c.Param("id"))
	if err != nil {
		api.fail(c, err)
		return nil, false
	}
	return s, true
}

func (api *ConsultationApi) party(c *gin.Context) (internal_type.Party, bool) {
	p, err := internal_type.ParseParty(c.Param("party"))
	if err != nil {
		badRequest(c, err)
		return 0, false
	}
	return p, true
}

// Languages lists the languages either party can speak.
func (api *ConsultationApi) Languages(c *gin.Context) {
	ok(c, http.StatusOK, internal_type.SupportedLanguages())
}

// Create starts a consultation.
func (api *ConsultationApi) Create(c *gin.Context) {
	var req internal_session.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := api.manager.Create(req)
	if err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, s.View())
}

func (api *ConsultationApi) Get(c *gin.Context) {
	s, found := api.session(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, s.View())
}

func (api *ConsultationApi) StartCapture(c *gin.Context) {
	api.withParty(c, (*internal_session.Session).StartCapture)
}

func (api *ConsultationApi) StopCapture(c *gin.Context) {
	api.withParty(c, (*internal_session.Session).StopCapture)
}

func (api *ConsultationApi) withParty(c *gin.Context, action func(*internal_session.Session, internal_type.Party) error) {
	s, found := api.session(c)
	if !found {
		return
	}
	p, valid := api.party(c)
	if !valid {
		return
	}
	if err := action(s, p); err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusOK, s.View())
}

func (api *ConsultationApi) SetAutoFlow(c *gin.Context) {
	s, found := api.session(c)
	if !found {
		return
	}
	var req autoFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.SetAutoFlow(*req.Enabled); err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusOK, s.View())
}

func (api *ConsultationApi) SetLanguage(c *gin.Context) {
	s, found := api.session(c)
	if !found {
		return
	}
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.SetLanguage(*req.Party, req.Language); err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusOK, s.View())
}

func (api *ConsultationApi) CancelPlayback(c *gin.Context) {
	s, found := api.session(c)
	if !found {
		return
	}
	if err := s.CancelPlayback(); err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusOK, s.View())
}

// Replay narrates the last translation spoken by party again.
func (api *ConsultationApi) Replay(c *gin.Context) {
	s, found := api.session(c)
	if !found {
		return
	}
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.Replay(*req.Party); err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusOK, s.View())
}

// End finishes the consultation. A failed analysis still returns the
// transcript, with the failure in analysisError so the client can retry.
func (api *ConsultationApi) End(c *gin.Context) {
	s, found := api.session(c)
	if !found {
		return
	}
	outcome, err := s.End(c.Request.Context())
	if err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusOK, outcome)
}

func (api *ConsultationApi) RetryAnalysis(c *gin.Context) {
	s, found := api.session(c)
	if !found {
		return
	}
	outcome, err := s.RetryAnalysis(c.Request.Context())
	if err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusOK, outcome)
}

func (api *ConsultationApi) Verify(c *gin.Context) {
	s, found := api.session(c)
	if !found {
		return
	}
	var req internal_analysis.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := s.Verify(c.Request.Context(), req)
	if err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusOK, result)
}

// History returns the stored consultations of a patient identifier.
func (api *ConsultationApi) History(c *gin.Context) {
	if api.history == nil {
		api.fail(c, errHistoryDisabled)
		return
	}
	identifier := c.Query("identifier")
	if identifier == "" {
		badRequest(c, errors.New("identifier is required"))
		return
	}
	records, err := api.history.FindByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		api.fail(c, err)
		return
	}
	ok(c, http.StatusOK, records)
}
