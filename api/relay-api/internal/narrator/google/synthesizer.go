// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_narrator_google

import (
	"bytes"
	"context"
	"fmt"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/utils"
)

const (
	DefaultSampleRateHertz = 16000
	wavHeaderSize          = 44
)

type googleSynthesizer struct {
	logger     commons.Logger
	client     *texttospeech.Client
	sampleRate int32
	opts       utils.Option
}

// NewSynthesizer creates a text-to-speech client producing mono PCM16.
// Voices can be pinned per language with "speak.voice.<tag>" options.
func NewSynthesizer(ctx context.Context, logger commons.Logger, sampleRate int, opts utils.Option, clientOpts ...option.ClientOption) (*googleSynthesizer, error) {
	client, err := texttospeech.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("google text-to-speech client: %w", err)
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRateHertz
	}
	return &googleSynthesizer{logger: logger, client: client, sampleRate: int32(sampleRate), opts: opts}, nil
}

func (g *googleSynthesizer) Name() string {
	return "google-tts"
}

func (g *googleSynthesizer) Close() error {
	return g.client.Close()
}

func (g *googleSynthesizer) request(text, language string) *texttospeechpb.SynthesizeSpeechRequest {
	voice := &texttospeechpb.VoiceSelectionParams{
		LanguageCode: language,
		SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
	}
	if name, err := g.opts.GetString("speak.voice." + language); err == nil {
		voice.Name = name
	}
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: voice,
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: g.sampleRate,
		},
	}
}

func (g *googleSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	start := time.Now()
	defer func() { g.logger.Benchmark("googleSynthesizer.Synthesize", time.Since(start)) }()

	resp, err := g.client.SynthesizeSpeech(ctx, g.request(text, language))
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return stripWavHeader(resp.GetAudioContent()), nil
}

// stripWavHeader drops the RIFF header LINEAR16 responses carry so the sink
// receives bare samples.
func stripWavHeader(audio []byte) []byte {
	if len(audio) >= wavHeaderSize && bytes.HasPrefix(audio, []byte("RIFF")) && bytes.Equal(audio[8:12], []byte("WAVE")) {
		return audio[wavHeaderSize:]
	}
	return audio
}
