// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package utils

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
)

// Go runs fn on a new goroutine and keeps a panic inside it from taking the
// process down.
func Go(ctx context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "recovered goroutine panic: %v\n%s\n", r, debug.Stack())
			}
		}()
		select {
		case <-ctx.Done():
			return
		default:
		}
		fn()
	}()
}
