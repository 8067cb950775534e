// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import "strings"

// Language is one entry of the fixed supported set.
type Language struct {
	Tag         string `json:"tag"`
	DisplayName string `json:"displayName"`
}

var supportedLanguages = []Language{
	{Tag: "en-US", DisplayName: "English"},
	{Tag: "hi-IN", DisplayName: "Hindi"},
	{Tag: "te-IN", DisplayName: "Telugu"},
	{Tag: "ta-IN", DisplayName: "Tamil"},
	{Tag: "kn-IN", DisplayName: "Kannada"},
	{Tag: "ml-IN", DisplayName: "Malayalam"},
}

// SupportedLanguages returns a copy of the supported (tag, displayName) list.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// LookupLanguage finds a supported language by tag, case-insensitively.
func LookupLanguage(tag string) (Language, bool) {
	for _, l := range supportedLanguages {
		if strings.EqualFold(l.Tag, strings.TrimSpace(tag)) {
			return l, true
		}
	}
	return Language{}, false
}

// PrimarySubtag strips the region from a BCP-47 tag ("hi-IN" -> "hi").
func PrimarySubtag(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}
