// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import (
	"fmt"
	"strings"
	"time"
)

// TranslationFailedMarker replaces the translated text of a turn whose
// translation could not be obtained.
const TranslationFailedMarker = "Translation failed"

// Utterance is one finalized turn. It is never modified after creation.
type Utterance struct {
	ID             string    `json:"id"`
	Sequence       uint64    `json:"sequence"`
	Speaker        Party     `json:"speaker"`
	OriginalText   string    `json:"originalText"`
	TranslatedText string    `json:"translatedText"`
	SourceLang     string    `json:"sourceLang"`
	TargetLang     string    `json:"targetLang"`
	Timestamp      time.Time `json:"timestamp"`
}

// TranslationFailed reports whether the turn carries the failure marker.
func (u Utterance) TranslationFailed() bool {
	return u.TranslatedText == TranslationFailedMarker
}

// SerializeTranscript renders utterances as "Speaker: text" lines.
func SerializeTranscript(utterances []Utterance) string {
	var sb strings.Builder
	for i, u := range utterances {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s: %s", u.Speaker.Speaker(), u.OriginalText)
	}
	return sb.String()
}
