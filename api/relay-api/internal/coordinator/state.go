// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_coordinator

import (
	"fmt"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhaseSpeaking
	PhaseTranslating
	PhasePlaying
	PhaseEnded
)

// State is the coordinator's position in the turn cycle. Party is the party
// being waited for in PhaseWaiting and the speaker of the current turn in
// the speaking, translating and playing phases.
type State struct {
	Phase Phase
	Party internal_type.Party
}

func (s State) String() string {
	switch s.Phase {
	case PhaseIdle:
		return "Idle"
	case PhaseWaiting:
		return fmt.Sprintf("WaitingFor(%s)", s.Party)
	case PhaseSpeaking:
		return s.Party.String() + "Speaking"
	case PhaseTranslating:
		return "Translating" + s.Party.String()
	case PhasePlaying:
		return "PlayingTo" + s.Party.Other().String()
	case PhaseEnded:
		return "Ended"
	default:
		return fmt.Sprintf("Phase(%d)", int(s.Phase))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func Idle() State                            { return State{Phase: PhaseIdle} }
func Ended() State                           { return State{Phase: PhaseEnded} }
func WaitingFor(p internal_type.Party) State { return State{Phase: PhaseWaiting, Party: p} }
func Speaking(p internal_type.Party) State   { return State{Phase: PhaseSpeaking, Party: p} }
func Translating(p internal_type.Party) State {
	return State{Phase: PhaseTranslating, Party: p}
}

// PlayingFrom is the state in which p's translated turn is played to the
// other party.
func PlayingFrom(p internal_type.Party) State { return State{Phase: PhasePlaying, Party: p} }
