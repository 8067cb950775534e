// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	internal_analysis "github.com/samvaad/api/relay-api/internal/analysis"
	internal_coordinator "github.com/samvaad/api/relay-api/internal/coordinator"
	internal_history "github.com/samvaad/api/relay-api/internal/history"
	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/utils"
)

type SessionState int

const (
	NotStarted SessionState = iota
	Active
	Ended
)

func (s SessionState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Active:
		return "active"
	case Ended:
		return "ended"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is what a finished consultation produced.
type Outcome struct {
	Transcript    []internal_type.Utterance         `json:"transcript"`
	Analysis      *internal_analysis.AnalysisResult `json:"analysis,omitempty"`
	AnalysisError string                            `json:"analysisError,omitempty"`
}

// View is a read-only picture of a session.
type View struct {
	ID                string                            `json:"id"`
	Session           SessionState                      `json:"session"`
	State             string                            `json:"state"`
	Metadata          internal_coordinator.Metadata     `json:"metadata"`
	ClinicianLanguage string                            `json:"clinicianLanguage"`
	PatientLanguage   string                            `json:"patientLanguage"`
	AutoFlow          bool                              `json:"autoFlow"`
	Transcript        []internal_type.Utterance         `json:"transcript"`
	Analysis          *internal_analysis.AnalysisResult `json:"analysis,omitempty"`
	CreatedDate       time.Time                         `json:"createdDate"`
}

// Session binds operator intents to one consultation's coordinator and owns
// its lifecycle. It also observes the coordinator: events go to the attached
// operator connection and each utterance is persisted to history.
type Session struct {
	ID          string
	CreatedDate time.Time

	logger      commons.Logger
	coordinator *internal_coordinator.Coordinator
	outlet      *outlet
	history     internal_history.Store
	analyzer    internal_analysis.Analyzer
	recorder    *turnRecorder

	mu          sync.Mutex
	state       SessionState
	outcome     *Outcome
	analysis    *internal_analysis.AnalysisResult
	analysisErr error
}

func (s *Session) SessionState() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) recordKey() (internal_history.RecordKey, bool) {
	meta := s.coordinator.Settings().Metadata()
	return internal_history.RecordKey{
		SessionID:   s.ID,
		Identifier:  meta.Identifier,
		PatientName: meta.PatientName,
		PatientAge:  meta.PatientAge,
	}, meta.Identifier != "" && s.history != nil
}

// start moves NotStarted to Active.
func (s *Session) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NotStarted {
		return fmt.Errorf("%w: session is %s", internal_type.ErrInvalidTransition, s.state)
	}
	if err := s.coordinator.Start(); err != nil {
		return err
	}
	s.state = Active
	s.logger.Infof("session %s started", s.ID)
	return nil
}

func (s *Session) StartCapture(party internal_type.Party) error {
	return s.coordinator.StartCapture(party)
}

func (s *Session) StopCapture(party internal_type.Party) error {
	return s.coordinator.StopCapture(party)
}

func (s *Session) SetAutoFlow(enabled bool) error {
	return s.coordinator.SetAutoFlow(enabled)
}

func (s *Session) SetLanguage(party internal_type.Party, language string) error {
	return s.coordinator.SetLanguage(party, language)
}

func (s *Session) CancelPlayback() error {
	return s.coordinator.CancelPlayback()
}

func (s *Session) Replay(party internal_type.Party) error {
	return s.coordinator.Replay(party)
}

// Feed routes operator microphone audio to the party holding the floor.
func (s *Session) Feed(audio []byte) {
	if err := s.coordinator.Feed(audio); err != nil {
		s.logger.Debugf("session %s dropped %d bytes of audio: %v", s.ID, len(audio), err)
	}
}

// End finishes the consultation: the coordinator flushes and stops, pending
// history writes complete, and the transcript is analyzed. Calling End again
// returns the first outcome.
func (s *Session) End(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome != nil {
		return s.outcome, nil
	}

	transcript, err := s.coordinator.End()
	if err != nil {
		return nil, err
	}
	s.state = Ended
	s.recorder.close()
	s.logger.Infof("session %s ended with %d utterances", s.ID, len(transcript))

	s.outcome = &Outcome{Transcript: transcript}
	s.analyzeLocked(ctx, transcript)
	return s.outcome, nil
}

// RetryAnalysis runs the analysis again after it failed.
func (s *Session) RetryAnalysis(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ended {
		return nil, fmt.Errorf("%w: analysis runs once the session has ended", internal_type.ErrInvalidTransition)
	}
	if s.analysis == nil {
		s.analyzeLocked(ctx, s.outcome.Transcript)
	}
	return s.outcome, s.analysisErr
}

func (s *Session) analyzeLocked(ctx context.Context, transcript []internal_type.Utterance) {
	if s.analyzer == nil {
		s.analysisErr = fmt.Errorf("%w: analysis is not configured", internal_type.ErrAnalysisUnavailable)
		s.outcome.AnalysisError = s.analysisErr.Error()
		return
	}

	result, err := s.analyzer.Analyze(ctx, transcript)
	if err != nil {
		s.analysisErr = err
		s.outcome.AnalysisError = err.Error()
		s.logger.Warnf("session %s analysis failed: %v", s.ID, err)
		s.outlet.Emit(internal_type.Event{
			Type:    internal_type.EventNotice,
			Kind:    "analysis_unavailable",
			Message: err.Error(),
		})
		return
	}
	s.analysis = result
	s.analysisErr = nil
	s.outcome.Analysis = result
	s.outcome.AnalysisError = ""
	s.outlet.Emit(internal_type.Event{Type: internal_type.EventAnalysis, Payload: result})

	if key, ok := s.recordKey(); ok {
		summary := internal_history.TranscriptSummary{
			Diseases:           result.Diseases,
			Symptoms:           result.Symptoms,
			KeyTreatmentPoints: result.KeyTreatmentPoints,
			RedFlags:           result.RedFlags,
			Prescription:       strings.Join(result.MedicationsPrescribed, "; "),
			Summary:            result.Summary,
		}
		if err := s.history.SaveTranscriptSummary(ctx, key, summary); err != nil {
			s.logger.Errorf("session %s summary not saved: %v", s.ID, err)
		}
	}
}

// Verify reviews a prescription for this patient. Name, age, symptoms and
// conditions default to what the session and its analysis know.
func (s *Session) Verify(ctx context.Context, req internal_analysis.VerificationRequest) (*internal_analysis.VerificationResult, error) {
	if s.analyzer == nil {
		return nil, fmt.Errorf("%w: verification is not configured", internal_type.ErrVerificationUnavailable)
	}
	meta := s.coordinator.Settings().Metadata()
	if req.PatientName == "" {
		req.PatientName = meta.PatientName
	}
	if req.PatientAge == 0 {
		req.PatientAge = meta.PatientAge
	}

	s.mu.Lock()
	analysis := s.analysis
	s.mu.Unlock()
	if analysis != nil {
		if len(req.Symptoms) == 0 {
			req.Symptoms = analysis.Symptoms
		}
		if len(req.Conditions) == 0 {
			req.Conditions = analysis.Diseases
		}
		if len(req.MedicalHistory) == 0 {
			req.MedicalHistory = analysis.MedicalHistory
		}
		if len(req.Allergies) == 0 {
			req.Allergies = analysis.Allergies
		}
	}
	return s.analyzer.Verify(ctx, req)
}

func (s *Session) View() View {
	settings := s.coordinator.Settings()
	s.mu.Lock()
	state, analysis := s.state, s.analysis
	s.mu.Unlock()
	return View{
		ID:                s.ID,
		Session:           state,
		State:             s.coordinator.State().String(),
		Metadata:          settings.Metadata(),
		ClinicianLanguage: settings.Language(internal_type.Clinician),
		PatientLanguage:   settings.Language(internal_type.Patient),
		AutoFlow:          settings.AutoFlow(),
		Transcript:        s.coordinator.Transcript(),
		Analysis:          analysis,
		CreatedDate:       s.CreatedDate,
	}
}

// Attach makes target the operator connection of this session. A previously
// attached connection stops receiving output.
func (s *Session) Attach(target Outlet) {
	s.outlet.attach(target)
	target.Emit(internal_type.Event{Type: internal_type.EventState, State: s.coordinator.State().String()})
}

func (s *Session) Detach(target Outlet) {
	s.outlet.detach(target)
}

// Close releases the coordinator. The session should have ended first.
func (s *Session) Close() {
	s.coordinator.Close()
	s.recorder.close()
}

// =============================================================================
// Live stream intents
// =============================================================================

func (s *Session) OnAudio(audio []byte) {
	s.Feed(audio)
}

func (s *Session) OnIntent(intent internal_type.Intent) {
	err := s.dispatch(intent)
	if err != nil {
		s.outlet.Emit(internal_type.Event{Type: internal_type.EventError, Kind: intent.Type, Message: err.Error()})
	}
}

func (s *Session) dispatch(intent internal_type.Intent) error {
	needParty := func() (internal_type.Party, error) {
		if intent.Party == nil {
			return 0, errors.New("party is required")
		}
		return *intent.Party, nil
	}

	switch intent.Type {
	case internal_type.IntentStartCapture:
		p, err := needParty()
		if err != nil {
			return err
		}
		return s.StartCapture(p)
	case internal_type.IntentStopCapture:
		p, err := needParty()
		if err != nil {
			return err
		}
		return s.StopCapture(p)
	case internal_type.IntentAutoFlow:
		if intent.Enabled == nil {
			return errors.New("enabled is required")
		}
		return s.SetAutoFlow(*intent.Enabled)
	case internal_type.IntentSetLanguage:
		p, err := needParty()
		if err != nil {
			return err
		}
		return s.SetLanguage(p, intent.Language)
	case internal_type.IntentCancelPlayback:
		return s.CancelPlayback()
	case internal_type.IntentReplay:
		p, err := needParty()
		if err != nil {
			return err
		}
		return s.Replay(p)
	case internal_type.IntentEnd:
		utils.Go(context.Background(), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if _, err := s.End(ctx); err != nil {
				s.logger.Errorf("session %s end failed: %v", s.ID, err)
			}
		})
		return nil
	}
	return fmt.Errorf("unknown intent %q", intent.Type)
}

// =============================================================================
// Coordinator observer
// =============================================================================

func (s *Session) OnState(state internal_coordinator.State) {
	s.outlet.Emit(internal_type.Event{Type: internal_type.EventState, State: state.String()})
}

func (s *Session) OnTranscript(party internal_type.Party, text string) {
	s.outlet.Emit(internal_type.Event{Type: internal_type.EventTranscript, Party: &party, Text: text})
}

func (s *Session) OnUtterance(u internal_type.Utterance) {
	s.outlet.Emit(internal_type.Event{Type: internal_type.EventUtterance, Utterance: &u})
	if key, ok := s.recordKey(); ok {
		s.recorder.enqueue(key, u)
	}
}

func (s *Session) OnPlayback(listener internal_type.Party, text string, outcome internal_type.PlaybackOutcome) {
	s.outlet.Emit(internal_type.Event{
		Type:    internal_type.EventPlayback,
		Party:   &listener,
		Text:    text,
		Outcome: outcome.String(),
	})
}

func (s *Session) OnNotice(n internal_coordinator.Notice) {
	party := n.Party
	s.outlet.Emit(internal_type.Event{
		Type:    internal_type.EventNotice,
		Kind:    string(n.Kind),
		Party:   &party,
		Message: n.Message,
	})
}
