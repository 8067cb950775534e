// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_narrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

// ============================================================================
// Test helpers
// ============================================================================

type fakeSynthesizer struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeSynthesizer) Name() string { return "fake" }

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(text), nil
}

// gatedSink blocks every Play until release is closed.
type gatedSink struct {
	release chan struct{}
	err     error
	mu      sync.Mutex
	played  [][]byte
}

func newGatedSink() *gatedSink {
	return &gatedSink{release: make(chan struct{})}
}

func (s *gatedSink) Play(ctx context.Context, audio []byte) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	s.played = append(s.played, audio)
	s.mu.Unlock()
	return s.err
}

func newTestLogger() commons.Logger {
	logger, _ := commons.NewApplicationLogger()
	return logger
}

func wait(t *testing.T, p internal_type.Playback) internal_type.PlaybackOutcome {
	t.Helper()
	select {
	case <-p.Done():
		return p.Outcome()
	case <-time.After(time.Second):
		t.Fatal("playback never settled")
	}
	return internal_type.PlaybackPending
}

// ============================================================================
// Tests
// ============================================================================

func TestNarrator_Completes(t *testing.T) {
	sink := newGatedSink()
	close(sink.release)
	n := NewNarrator(newTestLogger(), &fakeSynthesizer{}, sink, nil)

	p := n.Speak(context.Background(), "Namaste", "hi-IN")
	assert.Equal(t, internal_type.PlaybackCompleted, wait(t, p))
	assert.NoError(t, p.Err())
	assert.Equal(t, [][]byte{[]byte("Namaste")}, sink.played)
}

func TestNarrator_CancelResolvesAsCancelled(t *testing.T) {
	sink := newGatedSink()
	n := NewNarrator(newTestLogger(), &fakeSynthesizer{}, sink, nil)

	p := n.Speak(context.Background(), "Namaste", "hi-IN")
	assert.Equal(t, internal_type.PlaybackPending, p.Outcome())

	n.Cancel()
	assert.Equal(t, internal_type.PlaybackCancelled, wait(t, p))
	assert.NoError(t, p.Err())
	assert.Empty(t, sink.played)

	n.Cancel()
}

func TestNarrator_NewSpeakCancelsPrior(t *testing.T) {
	sink := newGatedSink()
	n := NewNarrator(newTestLogger(), &fakeSynthesizer{}, sink, nil)

	first := n.Speak(context.Background(), "first", "en-US")
	second := n.Speak(context.Background(), "second", "en-US")

	assert.Equal(t, internal_type.PlaybackCancelled, wait(t, first))
	close(sink.release)
	assert.Equal(t, internal_type.PlaybackCompleted, wait(t, second))
}

func TestNarrator_Failures(t *testing.T) {
	t.Run("synthesis", func(t *testing.T) {
		sink := newGatedSink()
		close(sink.release)
		n := NewNarrator(newTestLogger(), &fakeSynthesizer{err: errors.New("quota")}, sink, nil)

		p := n.Speak(context.Background(), "Namaste", "hi-IN")
		assert.Equal(t, internal_type.PlaybackFailed, wait(t, p))
		assert.ErrorIs(t, p.Err(), internal_type.ErrPlaybackFailure)
	})

	t.Run("sink", func(t *testing.T) {
		sink := newGatedSink()
		sink.err = errors.New("socket closed")
		close(sink.release)
		n := NewNarrator(newTestLogger(), &fakeSynthesizer{}, sink, nil)

		p := n.Speak(context.Background(), "Namaste", "hi-IN")
		assert.Equal(t, internal_type.PlaybackFailed, wait(t, p))
		assert.ErrorIs(t, p.Err(), internal_type.ErrPlaybackFailure)
	})
}

func TestNarrator_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n := NewNarrator(newTestLogger(), &fakeSynthesizer{}, newGatedSink(), nil)

	p := n.Speak(ctx, "Namaste", "hi-IN")
	cancel()
	assert.Equal(t, internal_type.PlaybackCancelled, wait(t, p))
}

func TestNarrator_AppliesNormalizer(t *testing.T) {
	synth := &fakeSynthesizer{}
	sink := newGatedSink()
	close(sink.release)
	n := NewNarrator(newTestLogger(), synth, sink, NewNumberNormalizer(newTestLogger()))

	p := n.Speak(context.Background(), "Take 2 tablets", "en-US")
	require.Equal(t, internal_type.PlaybackCompleted, wait(t, p))
	assert.Equal(t, []string{"Take two tablets"}, synth.texts)
}
