// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/utils"
)

const (
	// DefaultStopGrace bounds how long Stop waits for the provider to flush
	// its final hypothesis.
	DefaultStopGrace = 1500 * time.Millisecond

	snapshotBufferSize = 32
)

var ErrNotCapturing = errors.New("capture not open")

// channel turns a provider recognition stream into running transcript
// snapshots. The same implementation serves both parties.
type channel struct {
	logger     commons.Logger
	recognizer internal_type.Recognizer
	party      internal_type.Party
	stopGrace  time.Duration

	mu         sync.Mutex
	open       bool
	stopping   bool
	stream     internal_type.RecognitionStream
	cancel     context.CancelFunc
	finals     []string
	interim    string
	confidence []float32
	lastErr    error
	drained    chan struct{}
	last       internal_type.Snapshot
}

type Option func(*channel)

func WithStopGrace(d time.Duration) Option {
	return func(c *channel) { c.stopGrace = d }
}

func NewCaptureChannel(logger commons.Logger, party internal_type.Party, recognizer internal_type.Recognizer, opts ...Option) internal_type.CaptureChannel {
	c := &channel{
		logger:     logger,
		recognizer: recognizer,
		party:      party,
		stopGrace:  DefaultStopGrace,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *channel) Open(ctx context.Context, language string) (<-chan internal_type.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return nil, fmt.Errorf("%s capture: %w", c.party, internal_type.ErrCaptureActive)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := c.recognizer.Stream(streamCtx, language)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s capture via %s: %w: %v", c.party, c.recognizer.Name(), internal_type.ErrCaptureUnavailable, err)
	}

	c.open = true
	c.stopping = false
	c.stream = stream
	c.cancel = cancel
	c.finals = nil
	c.interim = ""
	c.confidence = nil
	c.lastErr = nil
	c.drained = make(chan struct{})
	c.last = internal_type.Snapshot{}

	out := make(chan internal_type.Snapshot, snapshotBufferSize)
	go c.consume(streamCtx, stream, c.drained, out)

	c.logger.Debugf("%s capture opened: language=%s recognizer=%s", c.party, language, c.recognizer.Name())
	return out, nil
}

// consume folds provider results into snapshots until the stream ends. When
// the stream ends on its own the last snapshot is marked final, carrying the
// last good transcript and the failure if there was one.
func (c *channel) consume(ctx context.Context, stream internal_type.RecognitionStream, drained chan struct{}, out chan<- internal_type.Snapshot) {
	defer close(out)
	defer close(drained)

	for res := range stream.Results() {
		c.mu.Lock()
		if res.Err != nil {
			c.lastErr = res.Err
			c.mu.Unlock()
			c.logger.Warnf("%s capture failed: %v", c.party, res.Err)
			break
		}
		c.applyLocked(res)
		snap := c.snapshotLocked(false)
		stopping := c.stopping
		c.mu.Unlock()

		if stopping {
			continue
		}
		select {
		case out <- snap:
		case <-ctx.Done():
			return
		}
	}

	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		return
	}
	c.open = false
	final := c.snapshotLocked(true)
	final.Err = c.lastErr
	c.last = final
	c.stream = nil
	cancel := c.cancel
	c.mu.Unlock()

	select {
	case out <- final:
	case <-ctx.Done():
	}
	if err := stream.Close(); err != nil {
		c.logger.Debugf("%s capture close: %v", c.party, err)
	}
	cancel()
}

func (c *channel) applyLocked(res internal_type.RecognitionResult) {
	text := strings.TrimSpace(res.Text)
	if res.IsFinal {
		if text != "" {
			c.finals = append(c.finals, text)
			if res.Confidence > 0 {
				c.confidence = append(c.confidence, res.Confidence)
			}
		}
		c.interim = ""
		return
	}
	c.interim = text
}

func (c *channel) snapshotLocked(final bool) internal_type.Snapshot {
	parts := make([]string, 0, len(c.finals)+1)
	parts = append(parts, c.finals...)
	if c.interim != "" {
		parts = append(parts, c.interim)
	}
	return internal_type.Snapshot{
		Text:       strings.Join(parts, " "),
		Confidence: utils.AverageFloat32(c.confidence),
		Final:      final,
	}
}

func (c *channel) Feed(audio []byte) error {
	c.mu.Lock()
	stream := c.stream
	open := c.open && !c.stopping
	c.mu.Unlock()
	if !open || stream == nil {
		return ErrNotCapturing
	}
	return stream.Send(audio)
}

// Stop ends the capture and returns its final snapshot. Calling it again, or
// after the capture ended on its own, returns the same snapshot.
func (c *channel) Stop() internal_type.Snapshot {
	c.mu.Lock()
	if !c.open {
		last := c.last
		c.mu.Unlock()
		return last
	}
	c.stopping = true
	stream, cancel, drained := c.stream, c.cancel, c.drained
	c.mu.Unlock()

	if err := stream.CloseSend(); err != nil {
		c.logger.Debugf("%s capture close send: %v", c.party, err)
	}
	select {
	case <-drained:
	case <-time.After(c.stopGrace):
		c.logger.Warnf("%s capture did not flush within %s", c.party, c.stopGrace)
	}
	if err := stream.Close(); err != nil {
		c.logger.Debugf("%s capture close: %v", c.party, err)
	}
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	final := c.snapshotLocked(true)
	final.Err = c.lastErr
	c.open = false
	c.stream = nil
	c.last = final
	return final
}
