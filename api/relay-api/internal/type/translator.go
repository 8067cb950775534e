// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import "context"

// Translator translates one finalized utterance. Implementations return an
// error wrapping ErrTranslationUnavailable on network or parse failure.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	Name() string
}
