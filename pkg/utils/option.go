// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package utils

import "fmt"

// Option is a loosely typed bag of provider settings keyed by dotted names
// such as "listen.language" or "speak.voice.id".
type Option map[string]interface{}

func (o Option) GetString(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", fmt.Errorf("option %s not found", key)
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", fmt.Errorf("option %s is empty", key)
		}
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("option %s is not a string", key)
	}
}
