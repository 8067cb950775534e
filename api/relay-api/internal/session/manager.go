// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	internal_analysis "github.com/samvaad/api/relay-api/internal/analysis"
	internal_capture "github.com/samvaad/api/relay-api/internal/capture"
	internal_coordinator "github.com/samvaad/api/relay-api/internal/coordinator"
	internal_history "github.com/samvaad/api/relay-api/internal/history"
	internal_narrator "github.com/samvaad/api/relay-api/internal/narrator"
	internal_transcript "github.com/samvaad/api/relay-api/internal/transcript"
	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

var ErrSessionNotFound = errors.New("session not found")

// Dependencies are shared by every session. History and Analyzer are
// optional.
type Dependencies struct {
	Recognizer  internal_type.Recognizer
	Translator  internal_type.Translator
	Synthesizer internal_type.Synthesizer
	Normalizer  internal_type.TextNormalizer
	History     internal_history.Store
	Analyzer    internal_analysis.Analyzer
}

// Defaults fill in what a create request leaves out.
type Defaults struct {
	ClinicianLanguage string
	PatientLanguage   string
	AutoFlow          bool
}

type CreateRequest struct {
	PatientName       string `json:"patientName"`
	PatientAge        int    `json:"patientAge"`
	Identifier        string `json:"identifier"`
	ClinicianLanguage string `json:"clinicianLanguage"`
	PatientLanguage   string `json:"patientLanguage"`
	AutoFlow          *bool  `json:"autoFlow"`
}

// Manager is the registry of live consultations.
type Manager struct {
	ctx       context.Context
	logger    commons.Logger
	cfg       internal_coordinator.Config
	defaults  Defaults
	deps      Dependencies
	stopGrace time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

type ManagerOption func(*Manager)

// WithStopGrace bounds how long a stopping capture waits for its last
// recognition result.
func WithStopGrace(d time.Duration) ManagerOption {
	return func(m *Manager) { m.stopGrace = d }
}

func NewManager(ctx context.Context, logger commons.Logger, cfg internal_coordinator.Config, defaults Defaults, deps Dependencies, opts ...ManagerOption) *Manager {
	m := &Manager{
		ctx:       ctx,
		logger:    logger,
		cfg:       cfg,
		defaults:  defaults,
		deps:      deps,
		stopGrace: internal_capture.DefaultStopGrace,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create builds a consultation and starts it. A session that fails to start
// is discarded.
func (m *Manager) Create(req CreateRequest) (*Session, error) {
	clinicianLanguage, patientLanguage := req.ClinicianLanguage, req.PatientLanguage
	if clinicianLanguage == "" {
		clinicianLanguage = m.defaults.ClinicianLanguage
	}
	if patientLanguage == "" {
		patientLanguage = m.defaults.PatientLanguage
	}
	autoFlow := m.defaults.AutoFlow
	if req.AutoFlow != nil {
		autoFlow = *req.AutoFlow
	}

	settings := internal_coordinator.NewSettings(internal_coordinator.Metadata{
		PatientName: req.PatientName,
		PatientAge:  req.PatientAge,
		Identifier:  req.Identifier,
	}, clinicianLanguage, patientLanguage, autoFlow)

	s := &Session{
		ID:          uuid.NewString(),
		CreatedDate: time.Now(),
		logger:      m.logger,
		outlet:      &outlet{},
		history:     m.deps.History,
		analyzer:    m.deps.Analyzer,
		recorder:    newTurnRecorder(m.logger, m.deps.History),
	}

	var captures [2]internal_type.CaptureChannel
	for _, p := range []internal_type.Party{internal_type.Clinician, internal_type.Patient} {
		captures[p] = internal_capture.NewCaptureChannel(m.logger, p, m.deps.Recognizer,
			internal_capture.WithStopGrace(m.stopGrace))
	}
	narrator := internal_narrator.NewNarrator(m.logger, m.deps.Synthesizer, s.outlet, m.deps.Normalizer)

	s.coordinator = internal_coordinator.NewCoordinator(
		m.ctx,
		m.logger,
		settings,
		captures,
		m.deps.Translator,
		narrator,
		internal_transcript.NewLog(),
		internal_coordinator.WithConfig(m.cfg),
		internal_coordinator.WithObserver(s),
	)

	if err := s.start(); err != nil {
		s.Close()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove ends and releases a session.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if _, err := s.End(ctx); err != nil {
		m.logger.Warnf("session %s did not end cleanly: %v", id, err)
	}
	s.Close()
	return nil
}

// Sweep releases ended sessions older than maxAge.
func (m *Manager) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.SessionState() == Ended && s.CreatedDate.Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.logger.Infof("released %d ended sessions", len(stale))
	}
	return len(stale)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close ends every session.
func (m *Manager) Close(ctx context.Context) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		_ = m.Remove(ctx, id)
	}
}
