// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package consultation_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	channel_websocket "github.com/samvaad/api/relay-api/internal/channel/websocket"
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Stream carries operator microphone audio and intents in, and events and
// narrated audio out. A newer connection to the same consultation replaces
// the older one.
//
// @Router /v1/consultations/:id/stream [get]
func (api *ConsultationApi) Stream(c *gin.Context) {
	s, found := api.session(c)
	if !found {
		return
	}
	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		api.logger.Errorf("websocket upgrade failed for session %s: %v", s.ID, err)
		return
	}

	streamer := channel_websocket.NewStreamer(api.logger, conn, api.sampleRate)
	s.Attach(streamer)
	defer s.Detach(streamer)

	api.logger.Infof("operator stream attached to session %s", s.ID)
	if err := streamer.Run(s); err != nil {
		api.logger.Warnf("operator stream of session %s closed: %v", s.ID, err)
		return
	}
	api.logger.Infof("operator stream of session %s closed", s.ID)
}
