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
)

var errHistoryDisabled = errors.New("history is not configured")

func statusOf(err error) int {
	switch {
	case errors.Is(err, internal_session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, internal_type.ErrInvalidMetadata),
		errors.Is(err, internal_type.ErrUnsupportedLanguage),
		errors.Is(err, internal_analysis.ErrInvalidVerificationRequest),
		errors.Is(err, internal_analysis.ErrEmptyTranscript),
		errors.Is(err, internal_history.ErrMissingIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, internal_type.ErrInvalidTransition),
		errors.Is(err, internal_type.ErrCaptureActive),
		errors.Is(err, internal_type.ErrNothingToReplay),
		errors.Is(err, internal_type.ErrSessionEnded),
		errors.Is(err, internal_type.ErrSessionNotStarted):
		return http.StatusConflict
	case errors.Is(err, internal_type.ErrCaptureUnavailable),
		errors.Is(err, internal_type.ErrTranslationUnavailable),
		errors.Is(err, internal_type.ErrAnalysisUnavailable),
		errors.Is(err, internal_type.ErrVerificationUnavailable),
		errors.Is(err, errHistoryDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (api *ConsultationApi) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		api.logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	} else {
		api.logger.Debugf("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
