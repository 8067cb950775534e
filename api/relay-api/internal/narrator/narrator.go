// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_narrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

// =============================================================================
// Playback
// =============================================================================

type playback struct {
	done    chan struct{}
	once    sync.Once
	cancel  context.CancelFunc
	mu      sync.Mutex
	outcome internal_type.PlaybackOutcome
	err     error
}

func newPlayback(cancel context.CancelFunc) *playback {
	return &playback{done: make(chan struct{}), cancel: cancel}
}

func (p *playback) Done() <-chan struct{} { return p.done }

func (p *playback) Outcome() internal_type.PlaybackOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome
}

func (p *playback) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// resolve settles the playback once; later calls are ignored.
func (p *playback) resolve(outcome internal_type.PlaybackOutcome, err error) {
	p.once.Do(func() {
		p.mu.Lock()
		p.outcome = outcome
		p.err = err
		p.mu.Unlock()
		p.cancel()
		close(p.done)
	})
}

// =============================================================================
// Narrator
// =============================================================================

type narrator struct {
	logger      commons.Logger
	synthesizer internal_type.Synthesizer
	sink        internal_type.AudioSink
	normalizer  internal_type.TextNormalizer

	mu      sync.Mutex
	current *playback
}

// NewNarrator synthesizes text and plays it into sink, one utterance at a
// time. normalizer may be nil.
func NewNarrator(logger commons.Logger, synthesizer internal_type.Synthesizer, sink internal_type.AudioSink, normalizer internal_type.TextNormalizer) internal_type.Narrator {
	return &narrator{
		logger:      logger,
		synthesizer: synthesizer,
		sink:        sink,
		normalizer:  normalizer,
	}
}

func (n *narrator) Speak(ctx context.Context, text, language string) internal_type.Playback {
	pctx, cancel := context.WithCancel(ctx)
	p := newPlayback(cancel)

	n.mu.Lock()
	prior := n.current
	n.current = p
	n.mu.Unlock()
	if prior != nil {
		prior.resolve(internal_type.PlaybackCancelled, nil)
	}

	go n.run(pctx, p, text, language)
	return p
}

func (n *narrator) Cancel() {
	n.mu.Lock()
	p := n.current
	n.current = nil
	n.mu.Unlock()
	if p != nil {
		p.resolve(internal_type.PlaybackCancelled, nil)
	}
}

func (n *narrator) run(ctx context.Context, p *playback, text, language string) {
	start := time.Now()
	defer func() {
		n.logger.Benchmark("narrator.Speak", time.Since(start))
		n.mu.Lock()
		if n.current == p {
			n.current = nil
		}
		n.mu.Unlock()
	}()

	if n.normalizer != nil {
		text = n.normalizer.Normalize(ctx, text, language)
	}

	audio, err := n.synthesizer.Synthesize(ctx, text, language)
	if ctx.Err() != nil {
		p.resolve(internal_type.PlaybackCancelled, nil)
		return
	}
	if err != nil {
		n.logger.Warnf("synthesis via %s failed: %v", n.synthesizer.Name(), err)
		p.resolve(internal_type.PlaybackFailed, fmt.Errorf("%w: synthesis: %v", internal_type.ErrPlaybackFailure, err))
		return
	}

	err = n.sink.Play(ctx, audio)
	if ctx.Err() != nil {
		p.resolve(internal_type.PlaybackCancelled, nil)
		return
	}
	if err != nil {
		n.logger.Warnf("playback failed: %v", err)
		p.resolve(internal_type.PlaybackFailed, fmt.Errorf("%w: %v", internal_type.ErrPlaybackFailure, err))
		return
	}
	p.resolve(internal_type.PlaybackCompleted, nil)
}
