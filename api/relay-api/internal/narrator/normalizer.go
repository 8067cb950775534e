// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_narrator

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	ntw "moul.io/number-to-words"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

var (
	decimalPattern = regexp.MustCompile(`\b(\d+)\.(\d+)\b`)
	integerPattern = regexp.MustCompile(`\b\d{1,9}\b`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// numberNormalizer spells out numerals for English narration so doses such as
// "2.5 mg" are read as words. Other languages are only whitespace-normalized.
type numberNormalizer struct {
	logger commons.Logger
}

func NewNumberNormalizer(logger commons.Logger) internal_type.TextNormalizer {
	return &numberNormalizer{logger: logger}
}

func (n *numberNormalizer) Normalize(ctx context.Context, text, language string) string {
	text = strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
	if internal_type.PrimarySubtag(language) != "en" {
		return text
	}

	text = decimalPattern.ReplaceAllStringFunc(text, func(m string) string {
		parts := decimalPattern.FindStringSubmatch(m)
		whole, err := strconv.Atoi(parts[1])
		if err != nil {
			return m
		}
		digits := make([]string, 0, len(parts[2]))
		for _, d := range parts[2] {
			digits = append(digits, ntw.IntegerToEnUs(int(d-'0')))
		}
		return ntw.IntegerToEnUs(whole) + " point " + strings.Join(digits, " ")
	})

	return integerPattern.ReplaceAllStringFunc(text, func(m string) string {
		v, err := strconv.Atoi(m)
		if err != nil {
			n.logger.Debugf("leaving numeral %q as is: %v", m, err)
			return m
		}
		return ntw.IntegerToEnUs(v)
	})
}
