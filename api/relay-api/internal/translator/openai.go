// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

const DefaultOpenAIModel = "gpt-4o-mini"

type openaiTranslator struct {
	logger commons.Logger
	client openai.Client
	model  string
}

// NewOpenAITranslator translates with a chat completion model. It is meant for
// clinical phrasing the web endpoint handles poorly.
func NewOpenAITranslator(logger commons.Logger, apiKey, model string, opts ...option.RequestOption) internal_type.Translator {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &openaiTranslator{
		logger: logger,
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o *openaiTranslator) Name() string {
	return "openai"
}

func (o *openaiTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	start := time.Now()
	defer func() { o.logger.Benchmark("openaiTranslator.Translate", time.Since(start)) }()

	src, _ := internal_type.LookupLanguage(sourceLang)
	tgt, _ := internal_type.LookupLanguage(targetLang)
	instruction := fmt.Sprintf(
		"Translate the user's message from %s (%s) to %s (%s). "+
			"It is a line spoken during a medical consultation. "+
			"Reply with the translation only.",
		src.DisplayName, sourceLang, tgt.DisplayName, targetLang)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", internal_type.ErrTranslationUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", internal_type.ErrTranslationUnavailable)
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("%w: empty completion", internal_type.ErrTranslationUnavailable)
	}
	return out, nil
}
