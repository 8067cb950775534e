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

// Sequencer writes utterances into a Log in the order their turns started,
// whatever order their translations settle in. A turn takes a ticket when it
// starts and later either commits an utterance or releases the ticket.
type Sequencer struct {
	mu      sync.Mutex
	log     *Log
	next    uint64
	head    uint64
	pending map[uint64]*slot
}

type slot struct {
	released  bool
	utterance internal_type.Utterance
}

func NewSequencer(log *Log) *Sequencer {
	return &Sequencer{log: log, next: 1, head: 1, pending: make(map[uint64]*slot)}
}

// Reserve hands out the next ticket in turn-start order.
func (s *Sequencer) Reserve() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.next
	s.next++
	return t
}

// Commit stores u under ticket and returns every utterance that became
// appendable, in log order.
func (s *Sequencer) Commit(ticket uint64, u internal_type.Utterance) []internal_type.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket < s.head {
		return nil
	}
	if _, dup := s.pending[ticket]; dup {
		return nil
	}
	s.pending[ticket] = &slot{utterance: u}
	return s.drainLocked()
}

// Release gives up a ticket whose turn produced nothing.
func (s *Sequencer) Release(ticket uint64) []internal_type.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket < s.head {
		return nil
	}
	if _, dup := s.pending[ticket]; dup {
		return nil
	}
	s.pending[ticket] = &slot{released: true}
	return s.drainLocked()
}

// Outstanding is the number of reserved tickets not yet written or released.
func (s *Sequencer) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.next-s.head) - len(s.pending)
}

func (s *Sequencer) drainLocked() []internal_type.Utterance {
	var out []internal_type.Utterance
	for {
		sl, ok := s.pending[s.head]
		if !ok {
			return out
		}
		delete(s.pending, s.head)
		s.head++
		if !sl.released {
			out = append(out, s.log.Append(sl.utterance))
		}
	}
}
