// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/samvaad/pkg/commons"
)

const DefaultModel = "gemini-2.5-flash-lite"

// Generator turns a prompt into a JSON document.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

type geminiGenerator struct {
	logger commons.Logger
	client *genai.Client
	model  string
}

// NewGeminiGenerator builds a generator on the Gemini developer API.
func NewGeminiGenerator(ctx context.Context, logger commons.Logger, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create gemini client: %w", err)
	}
	return &geminiGenerator{logger: logger, client: client, model: model}, nil
}

func (g *geminiGenerator) Name() string {
	return "gemini:" + g.model
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	})
	g.logger.Benchmark("gemini.GenerateContent", time.Since(start))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%s returned an empty response", g.Name())
	}
	return text, nil
}

// stripFences removes a markdown code fence around a JSON document, if any.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	for _, open := range []string{"```json", "```"} {
		start := strings.Index(text, open)
		if start < 0 {
			continue
		}
		body := text[start+len(open):]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	return text
}
