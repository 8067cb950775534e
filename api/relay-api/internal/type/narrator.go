// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import "context"

// =============================================================================
// Narration
// =============================================================================

type PlaybackOutcome int

const (
	PlaybackPending PlaybackOutcome = iota
	PlaybackCompleted
	PlaybackCancelled
	PlaybackFailed
)

func (o PlaybackOutcome) String() string {
	switch o {
	case PlaybackCompleted:
		return "completed"
	case PlaybackCancelled:
		return "cancelled"
	case PlaybackFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Playback is the handle of one asynchronous narration.
type Playback interface {
	Done() <-chan struct{}
	// Outcome is PlaybackPending until Done is closed.
	Outcome() PlaybackOutcome
	Err() error
}

// Narrator plays one synthesized utterance at a time.
type Narrator interface {
	// Speak starts playback and implicitly cancels any prior one.
	Speak(ctx context.Context, text, language string) Playback
	// Cancel stops the active playback, resolving it as cancelled.
	Cancel()
}

// Synthesizer converts text into raw PCM16 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	Name() string
}

// AudioSink consumes synthesized audio. Play returns once the audio has been
// played out or ctx is cancelled.
type AudioSink interface {
	Play(ctx context.Context, audio []byte) error
}

// TextNormalizer rewrites text before synthesis.
type TextNormalizer interface {
	Normalize(ctx context.Context, text, language string) string
}
