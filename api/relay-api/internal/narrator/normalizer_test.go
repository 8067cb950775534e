// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_narrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberNormalizer(t *testing.T) {
	normalizer := NewNumberNormalizer(newTestLogger())

	tests := []struct {
		name     string
		input    string
		language string
		expected string
	}{
		{
			name:     "integer dose",
			input:    "Take 2 tablets",
			language: "en-US",
			expected: "Take two tablets",
		},
		{
			name:     "decimal dose",
			input:    "Apply 2.5 ml",
			language: "en-US",
			expected: "Apply two point five ml",
		},
		{
			name:     "several numbers",
			input:    "3 times for 10 days",
			language: "en-US",
			expected: "three times for ten days",
		},
		{
			name:     "collapses whitespace",
			input:    "  rest   well \n",
			language: "en-US",
			expected: "rest well",
		},
		{
			name:     "non english left alone",
			input:    "2 goli lijiye",
			language: "hi-IN",
			expected: "2 goli lijiye",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizer.Normalize(context.Background(), tt.input, tt.language))
		})
	}
}
