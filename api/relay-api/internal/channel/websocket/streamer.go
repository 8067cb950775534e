// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package channel_websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

const (
	OutputChannelSize = 256
	FrameDuration     = 20 * time.Millisecond

	writeWait = 5 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
)

var ErrStreamClosed = errors.New("stream closed")

// Handler receives what the operator sends on the stream.
type Handler interface {
	OnAudio(audio []byte)
	OnIntent(intent internal_type.Intent)
}

type outbound struct {
	kind int
	data []byte
}

// Streamer is the operator's live connection. It carries capture audio and
// intents in, and events plus narrated audio out. All writes go through one
// writer goroutine.
type Streamer struct {
	mu     sync.Mutex
	logger commons.Logger
	conn   *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	outputCh   chan outbound
	frameBytes int
	pace       time.Duration
}

type Option func(*Streamer)

// WithPace overrides the delay between narrated audio frames.
func WithPace(d time.Duration) Option {
	return func(s *Streamer) { s.pace = d }
}

// NewStreamer wraps an upgraded connection. sampleRate is the rate of the
// PCM16 audio handed to Play.
func NewStreamer(logger commons.Logger, conn *websocket.Conn, sampleRate int, opts ...Option) *Streamer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Streamer{
		logger:     logger,
		conn:       conn,
		ctx:        ctx,
		cancel:     cancel,
		outputCh:   make(chan outbound, OutputChannelSize),
		frameBytes: sampleRate * 2 * int(FrameDuration/time.Millisecond) / 1000,
		pace:       FrameDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.frameBytes <= 0 {
		s.frameBytes = 640
	}
	go s.runOutputWriter()
	return s
}

func (s *Streamer) Context() context.Context {
	return s.ctx
}

// Run reads from the connection until it fails or the streamer is closed.
func (s *Streamer) Run(handler Handler) error {
	defer s.Close()
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if s.ctx.Err() != nil {
				return nil
			}
			return err
		}
		switch kind {
		case websocket.BinaryMessage:
			handler.OnAudio(data)
		case websocket.TextMessage:
			var intent internal_type.Intent
			if err := json.Unmarshal(data, &intent); err != nil || intent.Type == "" {
				s.logger.Warnf("ignoring malformed intent: %s", string(data))
				s.Emit(internal_type.Event{Type: internal_type.EventError, Message: "malformed intent"})
				continue
			}
			handler.OnIntent(intent)
		}
	}
}

// Emit queues an event. Events are dropped when the connection is slow.
func (s *Streamer) Emit(event internal_type.Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf("unable to encode %s event: %v", event.Type, err)
		return
	}
	select {
	case s.outputCh <- outbound{kind: websocket.TextMessage, data: data}:
	case <-s.ctx.Done():
	default:
		s.logger.Warnw("Output channel full, dropping event", "type", event.Type)
	}
}

// Play streams PCM16 audio to the operator in real-time sized frames and
// returns once the last frame is queued or ctx is cancelled.
func (s *Streamer) Play(ctx context.Context, audio []byte) error {
	ticker := time.NewTicker(s.pace)
	defer ticker.Stop()

	for offset := 0; offset < len(audio); offset += s.frameBytes {
		end := offset + s.frameBytes
		if end > len(audio) {
			end = len(audio)
		}
		frame := make([]byte, end-offset)
		copy(frame, audio[offset:end])

		select {
		case s.outputCh <- outbound{kind: websocket.BinaryMessage, data: frame}:
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return ErrStreamClosed
		}
		if end == len(audio) {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return ErrStreamClosed
		}
	}
	return nil
}

func (s *Streamer) runOutputWriter() {
	ping := time.NewTicker(pingEvery)
	defer ping.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.outputCh:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(msg.kind, msg.data); err != nil {
				s.logger.Warnf("stream write failed: %v", err)
				s.Close()
				return
			}
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.logger.Debugf("stream ping failed: %v", err)
			}
		}
	}
}

// Close is idempotent.
func (s *Streamer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	s.cancel()
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("close stream: %w", err)
	}
	return nil
}
