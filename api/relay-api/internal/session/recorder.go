// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_session

import (
	"context"
	"sync"
	"time"

	internal_history "github.com/samvaad/api/relay-api/internal/history"
	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/utils"
)

const turnWriteTimeout = 10 * time.Second

type pendingTurn struct {
	key       internal_history.RecordKey
	utterance internal_type.Utterance
}

// turnRecorder writes utterances to history off the coordinator loop, in the
// order they were appended. enqueue never blocks.
type turnRecorder struct {
	logger commons.Logger
	store  internal_history.Store

	mu      sync.Mutex
	queue   []pendingTurn
	closed  bool
	wake    chan struct{}
	drained chan struct{}
	once    sync.Once
}

func newTurnRecorder(logger commons.Logger, store internal_history.Store) *turnRecorder {
	r := &turnRecorder{
		logger:  logger,
		store:   store,
		wake:    make(chan struct{}, 1),
		drained: make(chan struct{}),
	}
	if store == nil {
		close(r.drained)
		r.closed = true
		return r
	}
	utils.Go(context.Background(), r.run)
	return r
}

func (r *turnRecorder) enqueue(key internal_history.RecordKey, u internal_type.Utterance) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warnf("utterance %s arrived after history closed", u.ID)
		return
	}
	r.queue = append(r.queue, pendingTurn{key: key, utterance: u})
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// close stops accepting turns and waits until the queued ones are written.
func (r *turnRecorder) close() {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		select {
		case r.wake <- struct{}{}:
		default:
		}
	})
	<-r.drained
}

func (r *turnRecorder) run() {
	defer close(r.drained)
	for range r.wake {
		r.mu.Lock()
		batch := r.queue
		r.queue = nil
		closed := r.closed
		r.mu.Unlock()

		for _, t := range batch {
			ctx, cancel := context.WithTimeout(context.Background(), turnWriteTimeout)
			err := r.store.AppendConversationTurn(ctx, t.key, internal_history.TurnFromUtterance(t.utterance))
			cancel()
			if err != nil {
				r.logger.Errorf("history write of utterance %s failed: %v", t.utterance.ID, err)
			}
		}
		if closed {
			return
		}
	}
}
