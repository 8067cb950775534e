// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import "time"

// Operator intents accepted on the live stream.
const (
	IntentStartCapture   = "start_capture"
	IntentStopCapture    = "stop_capture"
	IntentAutoFlow       = "auto_flow"
	IntentSetLanguage    = "set_language"
	IntentCancelPlayback = "cancel_playback"
	IntentReplay         = "replay"
	IntentEnd            = "end"
)

// Events pushed to the operator.
const (
	EventState      = "state"
	EventTranscript = "transcript"
	EventUtterance  = "utterance"
	EventPlayback   = "playback"
	EventNotice     = "notice"
	EventAnalysis   = "analysis"
	EventError      = "error"
)

type Intent struct {
	Type     string `json:"type"`
	Party    *Party `json:"party,omitempty"`
	Enabled  *bool  `json:"enabled,omitempty"`
	Language string `json:"language,omitempty"`
}

type Event struct {
	Type      string      `json:"type"`
	State     string      `json:"state,omitempty"`
	Party     *Party      `json:"party,omitempty"`
	Text      string      `json:"text,omitempty"`
	Outcome   string      `json:"outcome,omitempty"`
	Kind      string      `json:"kind,omitempty"`
	Message   string      `json:"message,omitempty"`
	Utterance *Utterance  `json:"utterance,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Time      time.Time   `json:"time"`
}

// EventSink receives events for the operator. Emit must not block.
type EventSink interface {
	Emit(event Event)
}
