// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_transcript

import (
	"sync"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
)

// Log is the append-only, ordered record of finalized turns for one session.
type Log struct {
	mu         sync.RWMutex
	utterances []internal_type.Utterance
}

func NewLog() *Log {
	return &Log{}
}

// Append records u at the end of the log and returns the stored copy, whose
// Sequence is its 1-based position.
func (l *Log) Append(u internal_type.Utterance) internal_type.Utterance {
	l.mu.Lock()
	defer l.mu.Unlock()
	u.Sequence = uint64(len(l.utterances) + 1)
	l.utterances = append(l.utterances, u)
	return u
}

// Snapshot returns a copy of the log in order. Callers may keep it.
func (l *Log) Snapshot() []internal_type.Utterance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]internal_type.Utterance, len(l.utterances))
	copy(out, l.utterances)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.utterances)
}

// Last returns the most recent utterance spoken by party.
func (l *Log) Last(party internal_type.Party) (internal_type.Utterance, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.utterances) - 1; i >= 0; i-- {
		if l.utterances[i].Speaker == party {
			return l.utterances[i], true
		}
	}
	return internal_type.Utterance{}, false
}
