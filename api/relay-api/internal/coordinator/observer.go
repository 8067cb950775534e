// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_coordinator

import (
	internal_type "github.com/samvaad/api/relay-api/internal/type"
)

type NoticeKind string

const (
	NoticeCaptureUnavailable     NoticeKind = "capture_unavailable"
	NoticeCaptureFailed          NoticeKind = "capture_failed"
	NoticeTranslationUnavailable NoticeKind = "translation_unavailable"
	NoticePlaybackFailure        NoticeKind = "playback_failure"
)

// Notice is an inline, non-fatal message for the operator.
type Notice struct {
	Kind    NoticeKind          `json:"kind"`
	Party   internal_type.Party `json:"party"`
	Message string              `json:"message"`
}

// Observer receives coordinator events on the coordinator's own goroutine.
// Implementations must return quickly and must not call back into the
// coordinator.
type Observer interface {
	OnState(state State)
	OnTranscript(party internal_type.Party, text string)
	OnUtterance(utterance internal_type.Utterance)
	OnPlayback(listener internal_type.Party, text string, outcome internal_type.PlaybackOutcome)
	OnNotice(notice Notice)
}

type nopObserver struct{}

func (nopObserver) OnState(State)                                                         {}
func (nopObserver) OnTranscript(internal_type.Party, string)                              {}
func (nopObserver) OnUtterance(internal_type.Utterance)                                   {}
func (nopObserver) OnPlayback(internal_type.Party, string, internal_type.PlaybackOutcome) {}
func (nopObserver) OnNotice(Notice)                                                       {}
