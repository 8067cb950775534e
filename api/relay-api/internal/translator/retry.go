// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_translator

import (
	"context"
	"errors"
	"fmt"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

// retryingTranslator retries a failed translation exactly once.
type retryingTranslator struct {
	logger commons.Logger
	inner  internal_type.Translator
}

func NewRetryingTranslator(logger commons.Logger, inner internal_type.Translator) internal_type.Translator {
	return &retryingTranslator{logger: logger, inner: inner}
}

func (r *retryingTranslator) Name() string {
	return r.inner.Name()
}

func (r *retryingTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	out, err := r.inner.Translate(ctx, text, sourceLang, targetLang)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return "", wrapUnavailable(ctx.Err())
	}

	r.logger.Warnf("translation via %s failed, retrying once: %v", r.inner.Name(), err)
	out, err = r.inner.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", wrapUnavailable(err)
	}
	return out, nil
}

func wrapUnavailable(err error) error {
	if errors.Is(err, internal_type.ErrTranslationUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", internal_type.ErrTranslationUnavailable, err)
}
