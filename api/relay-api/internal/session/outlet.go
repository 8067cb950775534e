// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_session

import (
	"context"
	"sync"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
)

// Outlet is where a session's narrated audio and events go.
type Outlet interface {
	internal_type.AudioSink
	internal_type.EventSink
}

// outlet forwards to the operator connection currently attached. Without
// one, events are dropped and audio completes immediately.
type outlet struct {
	mu     sync.RWMutex
	target Outlet
}

func (o *outlet) attach(target Outlet) Outlet {
	o.mu.Lock()
	defer o.mu.Unlock()
	prev := o.target
	o.target = target
	return prev
}

func (o *outlet) detach(target Outlet) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.target == target {
		o.target = nil
	}
}

func (o *outlet) current() Outlet {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.target
}

func (o *outlet) Play(ctx context.Context, audio []byte) error {
	if t := o.current(); t != nil {
		return t.Play(ctx, audio)
	}
	return nil
}

func (o *outlet) Emit(event internal_type.Event) {
	if t := o.current(); t != nil {
		t.Emit(event)
	}
}
