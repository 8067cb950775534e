// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_coordinator

import (
	"sync"
	"time"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
)

// Metadata describes the consultation. It is validated by Start.
type Metadata struct {
	PatientName string `json:"patientName" validate:"required"`
	PatientAge  int    `json:"patientAge" validate:"gte=1,lte=150"`
	// Identifier keys the history record; history is skipped when empty.
	Identifier string `json:"identifier,omitempty"`
}

// Settings is the per-session state the controller creates and shares with
// the coordinator. Only the coordinator mutates it.
type Settings struct {
	mu        sync.RWMutex
	metadata  Metadata
	languages [2]string
	autoFlow  bool
}

func NewSettings(metadata Metadata, clinicianLanguage, patientLanguage string, autoFlow bool) *Settings {
	s := &Settings{metadata: metadata, autoFlow: autoFlow}
	s.languages[internal_type.Clinician] = clinicianLanguage
	s.languages[internal_type.Patient] = patientLanguage
	return s
}

func (s *Settings) Metadata() Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata
}

func (s *Settings) Language(p internal_type.Party) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.languages[p]
}

func (s *Settings) AutoFlow() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoFlow
}

func (s *Settings) setLanguage(p internal_type.Party, tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.languages[p] = tag
}

func (s *Settings) setAutoFlow(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoFlow = enabled
}

// Config holds the timing knobs of the turn cycle.
type Config struct {
	SilenceTimeout time.Duration
	// MinSpeechLength is the shortest finalized text, in runes, that counts
	// as speech.
	MinSpeechLength    int
	InitialParty       internal_type.Party
	TranslationTimeout time.Duration
	// FlushTimeout bounds the translation of the turn flushed by End.
	FlushTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		SilenceTimeout:     5 * time.Second,
		MinSpeechLength:    2,
		InitialParty:       internal_type.Clinician,
		TranslationTimeout: 8 * time.Second,
		FlushTimeout:       5 * time.Second,
	}
}
