// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_capture_google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/utils"
)

const audioQueueSize = 64

type googleRecognizer struct {
	logger     commons.Logger
	client     *speech.Client
	sampleRate int32
	opts       utils.Option
}

// NewRecognizer creates the shared speech client. Failing to create it means
// capture is unavailable for every session.
func NewRecognizer(ctx context.Context, logger commons.Logger, sampleRate int, opts utils.Option, clientOpts ...option.ClientOption) (*googleRecognizer, error) {
	client, err := speech.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: google speech client: %v", internal_type.ErrCaptureUnavailable, err)
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRateHertz
	}
	return &googleRecognizer{logger: logger, client: client, sampleRate: int32(sampleRate), opts: opts}, nil
}

func (g *googleRecognizer) Name() string {
	return "google-speech"
}

func (g *googleRecognizer) Close() error {
	return g.client.Close()
}

func (g *googleRecognizer) streamingConfig(language string) *speechpb.StreamingRecognitionConfig {
	model := DefaultModel
	if m, err := g.opts.GetString("listen.model"); err == nil {
		model = m
	}
	return &speechpb.StreamingRecognitionConfig{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            g.sampleRate,
			AudioChannelCount:          1,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
			Model:                      model,
		},
		InterimResults: true,
	}
}

func (g *googleRecognizer) Stream(ctx context.Context, language string) (internal_type.RecognitionStream, error) {
	rpc, err := g.client.StreamingRecognize(ctx)
	if err != nil {
		return nil, fmt.Errorf("open streaming recognize: %w", err)
	}
	if err := rpc.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: g.streamingConfig(language),
		},
	}); err != nil {
		return nil, fmt.Errorf("send streaming config: %w", err)
	}

	s := &stream{
		logger:  g.logger,
		rpc:     rpc,
		audio:   make(chan []byte, audioQueueSize),
		results: make(chan internal_type.RecognitionResult, 16),
	}
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return s.sendLoop(gctx) })
	group.Go(func() error { return s.recvLoop(gctx) })
	go func() {
		if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			select {
			case s.results <- internal_type.RecognitionResult{Err: err}:
			default:
				s.logger.Errorf("speech stream failed with full result queue: %v", err)
			}
		}
		close(s.results)
	}()
	return s, nil
}

// stream serializes every Send and CloseSend on one goroutine since a gRPC
// client stream does not allow concurrent senders.
type stream struct {
	logger  commons.Logger
	rpc     speechpb.Speech_StreamingRecognizeClient
	audio   chan []byte
	results chan internal_type.RecognitionResult

	mu     sync.Mutex
	closed bool
}

func (s *stream) Send(audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return io.ErrClosedPipe
	}
	select {
	case s.audio <- audio:
		return nil
	default:
		s.logger.Warnf("speech audio queue full, dropping %d bytes", len(audio))
		return nil
	}
}

func (s *stream) Results() <-chan internal_type.RecognitionResult {
	return s.results
}

func (s *stream) CloseSend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.audio)
	}
	return nil
}

func (s *stream) Close() error {
	return s.CloseSend()
}

func (s *stream) sendLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-s.audio:
			if !ok {
				return s.rpc.CloseSend()
			}
			if err := s.rpc.Send(&speechpb.StreamingRecognizeRequest{
				StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{AudioContent: chunk},
			}); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("send audio: %w", err)
			}
		}
	}
}

func (s *stream) recvLoop(ctx context.Context) error {
	for {
		resp, err := s.rpc.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("receive results: %w", err)
		}
		if st := resp.GetError(); st != nil && st.GetCode() != 0 {
			return fmt.Errorf("recognition error %d: %s", st.GetCode(), st.GetMessage())
		}

		var interim []string
		for _, result := range resp.GetResults() {
			alts := result.GetAlternatives()
			if len(alts) == 0 {
				continue
			}
			if result.GetIsFinal() {
				if !s.emit(ctx, internal_type.RecognitionResult{
					Text:       alts[0].GetTranscript(),
					IsFinal:    true,
					Confidence: alts[0].GetConfidence(),
				}) {
					return ctx.Err()
				}
				continue
			}
			interim = append(interim, strings.TrimSpace(alts[0].GetTranscript()))
		}
		if len(interim) > 0 {
			if !s.emit(ctx, internal_type.RecognitionResult{Text: strings.Join(interim, " ")}) {
				return ctx.Err()
			}
		}
	}
}

func (s *stream) emit(ctx context.Context, r internal_type.RecognitionResult) bool {
	select {
	case s.results <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
