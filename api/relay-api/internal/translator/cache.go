// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_translator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

// cachedTranslator memoizes translations in redis. Cache errors never fail a
// translation.
type cachedTranslator struct {
	logger commons.Logger
	inner  internal_type.Translator
	client *redis.Client
	ttl    time.Duration
}

func NewCachedTranslator(logger commons.Logger, inner internal_type.Translator, client *redis.Client, ttl time.Duration) internal_type.Translator {
	return &cachedTranslator{logger: logger, inner: inner, client: client, ttl: ttl}
}

func (c *cachedTranslator) Name() string {
	return c.inner.Name()
}

func cacheKey(provider, text, sourceLang, targetLang string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("translation:%s:%s:%s:%s", provider,
		internal_type.PrimarySubtag(sourceLang), internal_type.PrimarySubtag(targetLang), hex.EncodeToString(sum[:]))
}

func (c *cachedTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	key := cacheKey(c.inner.Name(), text, sourceLang, targetLang)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warnf("translation cache read failed: %v", err)
	}

	out, err := c.inner.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, key, out, c.ttl).Err(); err != nil {
		c.logger.Warnf("translation cache write failed: %v", err)
	}
	return out, nil
}
