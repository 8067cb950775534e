// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_translator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

// DefaultGoogleEndpoint is the public web translate endpoint.
const DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

type googleTranslator struct {
	logger   commons.Logger
	client   *resty.Client
	endpoint string
}

// NewGoogleTranslator translates through the web translate endpoint, sending
// only the primary subtag of each language tag.
func NewGoogleTranslator(logger commons.Logger, endpoint string, timeout time.Duration) internal_type.Translator {
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	return &googleTranslator{
		logger:   logger,
		endpoint: endpoint,
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (g *googleTranslator) Name() string {
	return "google"
}

func (g *googleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	start := time.Now()
	defer func() { g.logger.Benchmark("googleTranslator.Translate", time.Since(start)) }()

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     internal_type.PrimarySubtag(sourceLang),
			"tl":     internal_type.PrimarySubtag(targetLang),
			"dt":     "t",
			"q":      text,
		}).
		Get(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", internal_type.ErrTranslationUnavailable, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: unexpected status %d", internal_type.ErrTranslationUnavailable, resp.StatusCode())
	}

	translated, err := parseGoogleResponse(resp.Body())
	if err != nil {
		return "", fmt.Errorf("%w: %v", internal_type.ErrTranslationUnavailable, err)
	}
	return translated, nil
}

// parseGoogleResponse joins the translated segments found at data[0][i][0].
func parseGoogleResponse(body []byte) (string, error) {
	var data []interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("invalid response body: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty response")
	}
	segments, ok := data[0].([]interface{})
	if !ok || len(segments) == 0 {
		return "", fmt.Errorf("response has no segments")
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("response has no translated text")
	}
	return out, nil
}
