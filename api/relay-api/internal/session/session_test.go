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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_analysis "github.com/samvaad/api/relay-api/internal/analysis"
	internal_coordinator "github.com/samvaad/api/relay-api/internal/coordinator"
	internal_history "github.com/samvaad/api/relay-api/internal/history"
	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeStream struct {
	results chan internal_type.RecognitionResult
	once    sync.Once
}

func (s *fakeStream) Send([]byte) error                               { return nil }
func (s *fakeStream) Results() <-chan internal_type.RecognitionResult { return s.results }
func (s *fakeStream) CloseSend() error {
	s.once.Do(func() { close(s.results) })
	return nil
}
func (s *fakeStream) Close() error { return s.CloseSend() }

type fakeRecognizer struct {
	mu      sync.Mutex
	streams []*fakeStream
}

func (r *fakeRecognizer) Stream(context.Context, string) (internal_type.RecognitionStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &fakeStream{results: make(chan internal_type.RecognitionResult, 16)}
	r.streams = append(r.streams, s)
	return s, nil
}

func (r *fakeRecognizer) Name() string { return "fake" }

func (r *fakeRecognizer) say(text string) {
	r.mu.Lock()
	s := r.streams[len(r.streams)-1]
	r.mu.Unlock()
	s.results <- internal_type.RecognitionResult{Text: text, IsFinal: true, Confidence: 0.9}
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	return "<" + text + ">", nil
}
func (fakeTranslator) Name() string { return "fake" }

type fakeSynthesizer struct{}

func (fakeSynthesizer) Synthesize(context.Context, string, string) ([]byte, error) {
	return []byte{0, 0, 0, 0}, nil
}
func (fakeSynthesizer) Name() string { return "fake" }

type fakeStore struct {
	mu        sync.Mutex
	turns     []*internal_history.ConversationTurn
	summaries []internal_history.TranscriptSummary
	keys      []internal_history.RecordKey
}

func (f *fakeStore) AppendConversationTurn(_ context.Context, key internal_history.RecordKey, turn *internal_history.ConversationTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, turn)
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeStore) SaveTranscriptSummary(_ context.Context, key internal_history.RecordKey, summary internal_history.TranscriptSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summary)
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeStore) FindByIdentifier(context.Context, string) ([]*internal_history.ConsultationRecord, error) {
	return nil, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }

type fakeAnalyzer struct {
	mu       sync.Mutex
	err      error
	analyzed int
	verified []internal_analysis.VerificationRequest
}

func (f *fakeAnalyzer) Analyze(_ context.Context, transcript []internal_type.Utterance) (*internal_analysis.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed++
	if f.err != nil {
		return nil, f.err
	}
	return &internal_analysis.AnalysisResult{
		Diseases:              []string{"Migraine"},
		Symptoms:              []string{"headache"},
		MedicationsPrescribed: []string{"Sumatriptan - 50mg", "Paracetamol - 500mg"},
		Allergies:             []string{"sulfa"},
		Summary:               "Migraine.",
	}, nil
}

func (f *fakeAnalyzer) Verify(_ context.Context, req internal_analysis.VerificationRequest) (*internal_analysis.VerificationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, req)
	return &internal_analysis.VerificationResult{OverallSafety: "safe", CanPrescribe: true}, nil
}

type fakeOutlet struct {
	mu     sync.Mutex
	events []internal_type.Event
}

func (o *fakeOutlet) Play(context.Context, []byte) error { return nil }
func (o *fakeOutlet) Emit(e internal_type.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *fakeOutlet) types() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.events))
	for _, e := range o.events {
		out = append(out, e.Type)
	}
	return out
}

// =============================================================================
// Harness
// =============================================================================

type harness struct {
	manager    *Manager
	recognizer *fakeRecognizer
	store      *fakeStore
	analyzer   *fakeAnalyzer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, _ := commons.NewApplicationLogger()
	h := &harness{recognizer: &fakeRecognizer{}, store: &fakeStore{}, analyzer: &fakeAnalyzer{}}
	cfg := internal_coordinator.DefaultConfig()
	cfg.SilenceTimeout = time.Minute
	h.manager = NewManager(context.Background(), logger, cfg,
		Defaults{ClinicianLanguage: "en-US", PatientLanguage: "hi-IN"},
		Dependencies{
			Recognizer:  h.recognizer,
			Translator:  fakeTranslator{},
			Synthesizer: fakeSynthesizer{},
			History:     h.store,
			Analyzer:    h.analyzer,
		},
		WithStopGrace(200*time.Millisecond),
	)
	t.Cleanup(func() { h.manager.Close(context.Background()) })
	return h
}

func validRequest() CreateRequest {
	return CreateRequest{PatientName: "Meena", PatientAge: 35, Identifier: "ID-42"}
}

// speak runs one manual turn for party and waits for its utterance.
func (h *harness) speak(t *testing.T, s *Session, party internal_type.Party, text string, want int) {
	t.Helper()
	require.NoError(t, s.StartCapture(party))
	h.recognizer.say(text)
	require.NoError(t, s.StopCapture(party))
	require.Eventually(t, func() bool { return len(s.View().Transcript) == want }, 2*time.Second, 5*time.Millisecond)
}

// =============================================================================
// Tests
// =============================================================================

func TestManager_CreateRejectsInvalidMetadata(t *testing.T) {
	h := newHarness(t)
	req := validRequest()
	req.PatientAge = 0
	_, err := h.manager.Create(req)
	assert.ErrorIs(t, err, internal_type.ErrInvalidMetadata)
	assert.Equal(t, 0, h.manager.Len())

	req = validRequest()
	req.PatientLanguage = "xx-XX"
	_, err = h.manager.Create(req)
	assert.ErrorIs(t, err, internal_type.ErrUnsupportedLanguage)
}

func TestManager_CreateAppliesDefaults(t *testing.T) {
	h := newHarness(t)
	s, err := h.manager.Create(validRequest())
	require.NoError(t, err)

	view := s.View()
	assert.Equal(t, Active, view.Session)
	assert.Equal(t, "en-US", view.ClinicianLanguage)
	assert.Equal(t, "hi-IN", view.PatientLanguage)
	assert.False(t, view.AutoFlow)
	assert.Equal(t, "WaitingFor(Clinician)", view.State)

	got, err := h.manager.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = h.manager.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_EndAnalyzesAndPersists(t *testing.T) {
	h := newHarness(t)
	s, err := h.manager.Create(validRequest())
	require.NoError(t, err)

	h.speak(t, s, internal_type.Clinician, "Where does it hurt", 1)
	h.speak(t, s, internal_type.Patient, "My head", 2)

	outcome, err := s.End(context.Background())
	require.NoError(t, err)
	require.Len(t, outcome.Transcript, 2)
	assert.Equal(t, "<Where does it hurt>", outcome.Transcript[0].TranslatedText)
	require.NotNil(t, outcome.Analysis)
	assert.Empty(t, outcome.AnalysisError)
	assert.Equal(t, Ended, s.SessionState())

	h.store.mu.Lock()
	require.Len(t, h.store.turns, 2)
	assert.Equal(t, "clinician", h.store.turns[0].Speaker)
	assert.Equal(t, "patient", h.store.turns[1].Speaker)
	require.Len(t, h.store.summaries, 1)
	assert.Equal(t, "Sumatriptan - 50mg; Paracetamol - 500mg", h.store.summaries[0].Prescription)
	for _, k := range h.store.keys {
		assert.Equal(t, "ID-42", k.Identifier)
		assert.Equal(t, s.ID, k.SessionID)
	}
	h.store.mu.Unlock()

	again, err := s.End(context.Background())
	require.NoError(t, err)
	assert.Same(t, outcome, again)
	assert.Equal(t, 1, h.analyzer.analyzed)

	assert.ErrorIs(t, s.StartCapture(internal_type.Clinician), internal_type.ErrSessionEnded)
}

func TestSession_WithoutIdentifierSkipsHistory(t *testing.T) {
	h := newHarness(t)
	req := validRequest()
	req.Identifier = ""
	s, err := h.manager.Create(req)
	require.NoError(t, err)

	h.speak(t, s, internal_type.Clinician, "Hello there", 1)
	_, err = s.End(context.Background())
	require.NoError(t, err)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	assert.Empty(t, h.store.turns)
	assert.Empty(t, h.store.summaries)
}

func TestSession_RetryAnalysis(t *testing.T) {
	h := newHarness(t)
	h.analyzer.err = internal_type.ErrAnalysisUnavailable
	s, err := h.manager.Create(validRequest())
	require.NoError(t, err)

	_, err = s.RetryAnalysis(context.Background())
	assert.ErrorIs(t, err, internal_type.ErrInvalidTransition)

	h.speak(t, s, internal_type.Clinician, "Any allergies", 1)
	outcome, err := s.End(context.Background())
	require.NoError(t, err)
	assert.Nil(t, outcome.Analysis)
	assert.NotEmpty(t, outcome.AnalysisError)
	assert.Len(t, outcome.Transcript, 1)

	h.analyzer.mu.Lock()
	h.analyzer.err = nil
	h.analyzer.mu.Unlock()
	outcome, err = s.RetryAnalysis(context.Background())
	require.NoError(t, err)
	require.NotNil(t, outcome.Analysis)
	assert.Empty(t, outcome.AnalysisError)
}

func TestSession_VerifyFillsFromSessionAndAnalysis(t *testing.T) {
	h := newHarness(t)
	s, err := h.manager.Create(validRequest())
	require.NoError(t, err)
	h.speak(t, s, internal_type.Patient, "Headache since morning", 1)
	_, err = s.End(context.Background())
	require.NoError(t, err)

	result, err := s.Verify(context.Background(), internal_analysis.VerificationRequest{
		PrescribedMedicines: []string{"Sumatriptan 50mg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "safe", result.OverallSafety)

	require.Len(t, h.analyzer.verified, 1)
	req := h.analyzer.verified[0]
	assert.Equal(t, "Meena", req.PatientName)
	assert.Equal(t, 35, req.PatientAge)
	assert.Equal(t, []string{"headache"}, req.Symptoms)
	assert.Equal(t, []string{"Migraine"}, req.Conditions)
	assert.Equal(t, []string{"sulfa"}, req.Allergies)
}

func TestSession_AttachedOutletReceivesEvents(t *testing.T) {
	h := newHarness(t)
	s, err := h.manager.Create(validRequest())
	require.NoError(t, err)

	out := &fakeOutlet{}
	s.Attach(out)
	h.speak(t, s, internal_type.Clinician, "Take a deep breath", 1)

	types := out.types()
	assert.Contains(t, types, internal_type.EventState)
	assert.Contains(t, types, internal_type.EventUtterance)

	s.OnIntent(internal_type.Intent{Type: internal_type.IntentStartCapture})
	s.OnIntent(internal_type.Intent{Type: "dance"})
	errorsSeen := 0
	for _, typ := range out.types() {
		if typ == internal_type.EventError {
			errorsSeen++
		}
	}
	assert.Equal(t, 2, errorsSeen)

	s.Detach(out)
	before := len(out.types())
	enabled := true
	s.OnIntent(internal_type.Intent{Type: internal_type.IntentAutoFlow, Enabled: &enabled})
	assert.True(t, s.View().AutoFlow)
	assert.Equal(t, before, len(out.types()))
}

func TestSession_EndIntent(t *testing.T) {
	h := newHarness(t)
	s, err := h.manager.Create(validRequest())
	require.NoError(t, err)

	s.OnIntent(internal_type.Intent{Type: internal_type.IntentEnd})
	require.Eventually(t, func() bool { return s.SessionState() == Ended }, 2*time.Second, 5*time.Millisecond)
}

func TestManager_SweepReleasesEndedSessions(t *testing.T) {
	h := newHarness(t)
	live, err := h.manager.Create(validRequest())
	require.NoError(t, err)
	done, err := h.manager.Create(validRequest())
	require.NoError(t, err)
	_, err = done.End(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, h.manager.Sweep(0))
	assert.Equal(t, 1, h.manager.Len())
	_, err = h.manager.Get(live.ID)
	assert.NoError(t, err)
	assert.True(t, errors.Is(h.manager.Remove(context.Background(), done.ID), ErrSessionNotFound))
}
