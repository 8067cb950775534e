// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import "errors"

var (
	// ErrCaptureUnavailable means speech capture cannot be opened at all.
	ErrCaptureUnavailable = errors.New("capture unavailable")
	// ErrTranslationUnavailable is returned by translators on network or parse failure.
	ErrTranslationUnavailable  = errors.New("translation unavailable")
	ErrPlaybackFailure         = errors.New("playback failure")
	ErrAnalysisUnavailable     = errors.New("analysis unavailable")
	ErrVerificationUnavailable = errors.New("verification unavailable")

	ErrSessionEnded        = errors.New("session ended")
	ErrSessionNotStarted   = errors.New("session not started")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidMetadata     = errors.New("invalid session metadata")
	ErrCaptureActive       = errors.New("capture active")
	ErrNothingToReplay     = errors.New("nothing to replay")
)
