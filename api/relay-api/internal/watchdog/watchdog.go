// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_watchdog

import (
	"sync"
	"time"
)

// DefaultTimeout is the quiet interval after which a turn is finalized.
const DefaultTimeout = 5 * time.Second

// Watchdog is a restartable silence timer. Every Arm, Reset and Cancel bumps
// the generation; a fire only reaches the callback when its generation is
// still current, and the callback receives that generation so the receiver
// can check it again after any queueing.
type Watchdog struct {
	mu         sync.Mutex
	timer      *time.Timer
	timeout    time.Duration
	generation uint64
	armed      bool
	onFire     func(generation uint64)
}

func NewWatchdog(onFire func(generation uint64)) *Watchdog {
	return &Watchdog{timeout: DefaultTimeout, onFire: onFire}
}

// Arm schedules one fire after timeout and returns the new generation. A
// non-positive timeout keeps the previous one.
func (w *Watchdog) Arm(timeout time.Duration) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timeout > 0 {
		w.timeout = timeout
	}
	return w.scheduleLocked()
}

// Reset cancels the pending fire and schedules a fresh one with the full
// timeout. It does nothing when the watchdog is not armed.
func (w *Watchdog) Reset() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.armed {
		return w.generation
	}
	return w.scheduleLocked()
}

// Cancel disarms the watchdog. Fires already in flight become stale.
func (w *Watchdog) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
	w.generation++
	w.armed = false
}

func (w *Watchdog) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generation
}

func (w *Watchdog) Armed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.armed
}

func (w *Watchdog) scheduleLocked() uint64 {
	w.stopLocked()
	w.generation++
	w.armed = true
	gen := w.generation
	w.timer = time.AfterFunc(w.timeout, func() { w.fire(gen) })
	return gen
}

func (w *Watchdog) stopLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watchdog) fire(gen uint64) {
	w.mu.Lock()
	if !w.armed || gen != w.generation {
		w.mu.Unlock()
		return
	}
	w.armed = false
	w.timer = nil
	w.mu.Unlock()

	if w.onFire != nil {
		w.onFire(gen)
	}
}
