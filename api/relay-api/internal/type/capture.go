// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import "context"

// =============================================================================
// Capture
// =============================================================================

// Snapshot is the running transcript of one capture.
type Snapshot struct {
	Text       string
	Confidence float32
	// Final marks the last snapshot of a capture. A final snapshot that arrives
	// without Stop having been called is an implicit stop.
	Final bool
	// Err is set when the capture ended because the device or provider failed.
	Err error
}

// CaptureChannel wraps one continuous speech-to-text capture. Both parties use
// their own instance of the same implementation.
type CaptureChannel interface {
	// Open starts a capture in the given language. Snapshots are delivered on
	// the returned channel, which is closed once the capture ends.
	Open(ctx context.Context, language string) (<-chan Snapshot, error)

	// Feed pushes raw PCM16 audio into the open capture.
	Feed(audio []byte) error

	// Stop is idempotent and always returns the final snapshot.
	Stop() Snapshot
}

// RecognitionResult is one hypothesis from a streaming recognizer.
type RecognitionResult struct {
	Text       string
	IsFinal    bool
	Confidence float32
	Err        error
}

// Recognizer opens provider side streaming recognition.
type Recognizer interface {
	Stream(ctx context.Context, language string) (RecognitionStream, error)
	Name() string
}

// RecognitionStream is a single provider session.
type RecognitionStream interface {
	Send(audio []byte) error
	// Results is closed when the provider has delivered everything.
	Results() <-chan RecognitionResult
	// CloseSend signals end of audio so the provider flushes final results.
	CloseSend() error
	Close() error
}
