// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_transcript "github.com/samvaad/api/relay-api/internal/transcript"
	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

// =============================================================================
// Fakes
// =============================================================================

// floor counts open captures across both parties.
type floor struct {
	mu         sync.Mutex
	active     int
	violations int
}

type fakeCapture struct {
	mu      sync.Mutex
	floor   *floor
	out     chan internal_type.Snapshot
	text    string
	opens   int
	stops   int
	langs   []string
	openErr error
}

func (f *fakeCapture) Open(_ context.Context, language string) (<-chan internal_type.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.floor.mu.Lock()
	f.floor.active++
	if f.floor.active > 1 {
		f.floor.violations++
	}
	f.floor.mu.Unlock()

	f.out = make(chan internal_type.Snapshot, 16)
	f.text = ""
	f.opens++
	f.langs = append(f.langs, language)
	return f.out, nil
}

func (f *fakeCapture) Feed([]byte) error { return nil }

func (f *fakeCapture) Stop() internal_type.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.closeLocked()
	return internal_type.Snapshot{Text: f.text, Final: true}
}

func (f *fakeCapture) closeLocked() {
	if f.out == nil {
		return
	}
	close(f.out)
	f.out = nil
	f.floor.mu.Lock()
	f.floor.active--
	f.floor.mu.Unlock()
}

func (f *fakeCapture) say(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	if f.out != nil {
		f.out <- internal_type.Snapshot{Text: text}
	}
}

// hangUp ends the capture from the provider side.
func (f *fakeCapture) hangUp(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.out != nil {
		f.out <- internal_type.Snapshot{Text: f.text, Final: true, Err: err}
	}
	f.closeLocked()
}

func (f *fakeCapture) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

type fakeTranslator struct {
	mu    sync.Mutex
	gate  chan struct{}
	err   error
	dict  map[string]string
	calls int
}

func (f *fakeTranslator) Translate(ctx context.Context, text, _, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	gate, err := f.gate, f.err
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if out, ok := f.dict[text]; ok {
		return out, nil
	}
	return "[" + text + "]", nil
}

func (f *fakeTranslator) Name() string { return "fake" }

type fakePlayback struct {
	text     string
	language string
	once     sync.Once
	done     chan struct{}
	mu       sync.Mutex
	outcome  internal_type.PlaybackOutcome
}

func (p *fakePlayback) Done() <-chan struct{} { return p.done }
func (p *fakePlayback) Err() error            { return nil }
func (p *fakePlayback) Outcome() internal_type.PlaybackOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome
}

func (p *fakePlayback) finish(o internal_type.PlaybackOutcome) {
	p.once.Do(func() {
		p.mu.Lock()
		p.outcome = o
		p.mu.Unlock()
		close(p.done)
	})
}

type fakeNarrator struct {
	mu    sync.Mutex
	plays []*fakePlayback
}

func (n *fakeNarrator) Speak(_ context.Context, text, language string) internal_type.Playback {
	n.mu.Lock()
	defer n.mu.Unlock()
	if l := len(n.plays); l > 0 {
		n.plays[l-1].finish(internal_type.PlaybackCancelled)
	}
	p := &fakePlayback{text: text, language: language, done: make(chan struct{})}
	n.plays = append(n.plays, p)
	return p
}

func (n *fakeNarrator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if l := len(n.plays); l > 0 {
		n.plays[l-1].finish(internal_type.PlaybackCancelled)
	}
}

func (n *fakeNarrator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.plays)
}

func (n *fakeNarrator) last() *fakePlayback {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.plays) == 0 {
		return nil
	}
	return n.plays[len(n.plays)-1]
}

type recorder struct {
	mu      sync.Mutex
	states  []State
	notices []Notice
	played  []internal_type.PlaybackOutcome
}

func (r *recorder) OnState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}
func (r *recorder) OnTranscript(internal_type.Party, string) {}
func (r *recorder) OnUtterance(internal_type.Utterance)      {}
func (r *recorder) OnPlayback(_ internal_type.Party, _ string, o internal_type.PlaybackOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, o)
}
func (r *recorder) OnNotice(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) noticeKinds() []NoticeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]NoticeKind, 0, len(r.notices))
	for _, n := range r.notices {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func (r *recorder) sawState(s State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.states {
		if st == s {
			return true
		}
	}
	return false
}

// =============================================================================
// Harness
// =============================================================================

type harness struct {
	c          *Coordinator
	floor      *floor
	captures   [2]*fakeCapture
	translator *fakeTranslator
	narrator   *fakeNarrator
	observer   *recorder
}

func newTestLogger() commons.Logger {
	logger, _ := commons.NewApplicationLogger()
	return logger
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SilenceTimeout = time.Minute
	cfg.TranslationTimeout = 2 * time.Second
	cfg.FlushTimeout = time.Second
	return cfg
}

func newHarness(t *testing.T, autoFlow bool, cfg Config) *harness {
	t.Helper()
	h := &harness{
		floor:      &floor{},
		translator: &fakeTranslator{dict: map[string]string{"Hello": "Namaste"}},
		narrator:   &fakeNarrator{},
		observer:   &recorder{},
	}
	h.captures[internal_type.Clinician] = &fakeCapture{floor: h.floor}
	h.captures[internal_type.Patient] = &fakeCapture{floor: h.floor}

	settings := NewSettings(Metadata{PatientName: "Asha", PatientAge: 42, Identifier: "P-1"}, "en-US", "hi-IN", autoFlow)
	h.c = NewCoordinator(
		context.Background(),
		newTestLogger(),
		settings,
		[2]internal_type.CaptureChannel{h.captures[0], h.captures[1]},
		h.translator,
		h.narrator,
		internal_transcript.NewLog(),
		WithConfig(cfg),
		WithObserver(h.observer),
	)
	t.Cleanup(h.c.Close)
	return h
}

func (h *harness) waitState(t *testing.T, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return h.c.State() == want }, 2*time.Second, 5*time.Millisecond,
		"want %s, have %s", want, h.c.State())
}

func (h *harness) waitPlays(t *testing.T, n int) *fakePlayback {
	t.Helper()
	require.Eventually(t, func() bool { return h.narrator.count() >= n }, 2*time.Second, 5*time.Millisecond)
	return h.narrator.last()
}

// =============================================================================
// Start
// =============================================================================

func TestStart_RejectsInvalidMetadata(t *testing.T) {
	cases := []Metadata{
		{PatientName: "", PatientAge: 30},
		{PatientName: "Ravi", PatientAge: 0},
		{PatientName: "Ravi", PatientAge: 151},
	}
	for _, meta := range cases {
		h := newHarness(t, false, testConfig())
		h.c.settings.metadata = meta
		err := h.c.Start()
		assert.ErrorIs(t, err, internal_type.ErrInvalidMetadata)
		assert.Equal(t, Idle(), h.c.State())
	}
}

func TestStart_RejectsUnsupportedLanguage(t *testing.T) {
	h := newHarness(t, false, testConfig())
	h.c.settings.setLanguage(internal_type.Patient, "fr-FR")
	err := h.c.Start()
	assert.ErrorIs(t, err, internal_type.ErrUnsupportedLanguage)
	assert.Equal(t, Idle(), h.c.State())
}

func TestStart_ManualWaitsForInitialParty(t *testing.T) {
	h := newHarness(t, false, testConfig())
	require.NoError(t, h.c.Start())
	assert.Equal(t, WaitingFor(internal_type.Clinician), h.c.State())
	assert.Equal(t, 0, h.captures[internal_type.Clinician].openCount())

	assert.ErrorIs(t, h.c.Start(), internal_type.ErrInvalidTransition)
}

func TestStart_AutoFlowOpensInitialCapture(t *testing.T) {
	h := newHarness(t, true, testConfig())
	require.NoError(t, h.c.Start())
	assert.Equal(t, Speaking(internal_type.Clinician), h.c.State())
	assert.Equal(t, []string{"en-US"}, h.captures[internal_type.Clinician].langs)
}

func TestStart_CaptureUnavailableRevertsToIdle(t *testing.T) {
	h := newHarness(t, true, testConfig())
	h.captures[internal_type.Clinician].openErr = errors.New("no microphone")

	err := h.c.Start()
	assert.ErrorIs(t, err, internal_type.ErrCaptureUnavailable)
	assert.Equal(t, Idle(), h.c.State())
	assert.Contains(t, h.observer.noticeKinds(), NoticeCaptureUnavailable)
}

func TestStartCapture_BeforeStart(t *testing.T) {
	h := newHarness(t, false, testConfig())
	assert.ErrorIs(t, h.c.StartCapture(internal_type.Patient), internal_type.ErrSessionNotStarted)
}

// =============================================================================
// Turn flow
// =============================================================================

func TestScenario_SilenceTranslatesNarratesAndHandsOff(t *testing.T) {
	cfg := testConfig()
	cfg.SilenceTimeout = 60 * time.Millisecond
	h := newHarness(t, true, cfg)
	require.NoError(t, h.c.Start())

	h.captures[internal_type.Clinician].say("Hello")

	play := h.waitPlays(t, 1)
	assert.Equal(t, "Namaste", play.text)
	assert.Equal(t, "hi-IN", play.language)
	h.waitState(t, PlayingFrom(internal_type.Clinician))

	transcript := h.c.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, internal_type.Clinician, transcript[0].Speaker)
	assert.Equal(t, "Hello", transcript[0].OriginalText)
	assert.Equal(t, "Namaste", transcript[0].TranslatedText)
	assert.Equal(t, "en-US", transcript[0].SourceLang)
	assert.Equal(t, "hi-IN", transcript[0].TargetLang)

	play.finish(internal_type.PlaybackCompleted)
	h.waitState(t, Speaking(internal_type.Patient))
	assert.True(t, h.observer.sawState(Translating(internal_type.Clinician)))
	assert.Equal(t, []string{"hi-IN"}, h.captures[internal_type.Patient].langs)
}

func TestStopCapture_TwiceProducesOneUtterance(t *testing.T) {
	h := newHarness(t, false, testConfig())
	require.NoError(t, h.c.Start())
	require.NoError(t, h.c.StartCapture(internal_type.Clinician))
	h.captures[internal_type.Clinician].say("How are you")

	require.NoError(t, h.c.StopCapture(internal_type.Clinician))
	require.NoError(t, h.c.StopCapture(internal_type.Clinician))

	h.waitState(t, WaitingFor(internal_type.Patient))
	assert.Len(t, h.c.Transcript(), 1)
	assert.Equal(t, 0, h.narrator.count())
}

func TestStopCapture_EmptyTurnKeepsFloor(t *testing.T) {
	h := newHarness(t, false, testConfig())
	require.NoError(t, h.c.Start())
	require.NoError(t, h.c.StartCapture(internal_type.Patient))
	h.captures[internal_type.Patient].say("a")

	require.NoError(t, h.c.StopCapture(internal_type.Patient))
	assert.Equal(t, WaitingFor(internal_type.Patient), h.c.State())
	assert.Empty(t, h.c.Transcript())
	assert.Equal(t, 0, h.translator.calls)
}

func TestStartCapture_PreemptsOtherPartyAndDefersUntilTranslated(t *testing.T) {
	h := newHarness(t, true, testConfig())
	h.translator.gate = make(chan struct{})
	require.NoError(t, h.c.Start())
	h.captures[internal_type.Clinician].say("I have a fever")

	require.NoError(t, h.c.StartCapture(internal_type.Patient))
	assert.Equal(t, Translating(internal_type.Clinician), h.c.State())
	assert.Equal(t, 0, h.captures[internal_type.Patient].openCount())

	close(h.translator.gate)
	h.waitState(t, Speaking(internal_type.Patient))

	transcript := h.c.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, "I have a fever", transcript[0].OriginalText)
	assert.Equal(t, 0, h.narrator.count())
	assert.Zero(t, h.floor.violations)
}

func TestStartCapture_OtherPartyWithEmptyTurnOpensImmediately(t *testing.T) {
	h := newHarness(t, false, testConfig())
	require.NoError(t, h.c.Start())
	require.NoError(t, h.c.StartCapture(internal_type.Clinician))
	require.NoError(t, h.c.StartCapture(internal_type.Patient))

	assert.Equal(t, Speaking(internal_type.Patient), h.c.State())
	assert.Zero(t, h.floor.violations)
	assert.Empty(t, h.c.Transcript())
}

func TestScenario_TranslationFailureStillLogsAndAdvances(t *testing.T) {
	h := newHarness(t, true, testConfig())
	h.translator.err = internal_type.ErrTranslationUnavailable
	require.NoError(t, h.c.Start())
	h.captures[internal_type.Clinician].say("Take this twice a day")

	require.NoError(t, h.c.StopCapture(internal_type.Clinician))
	h.waitState(t, Speaking(internal_type.Patient))

	transcript := h.c.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, internal_type.TranslationFailedMarker, transcript[0].TranslatedText)
	assert.Equal(t, 0, h.narrator.count())
	assert.Contains(t, h.observer.noticeKinds(), NoticeTranslationUnavailable)
}

func TestScenario_EndFlushesPendingSpeech(t *testing.T) {
	h := newHarness(t, true, testConfig())
	require.NoError(t, h.c.Start())
	h.captures[internal_type.Clinician].say("I feel")
	require.Eventually(t, func() bool {
		var pending string
		_ = h.c.do(func() error { pending = h.c.pending[internal_type.Clinician]; return nil })
		return pending == "I feel"
	}, time.Second, 5*time.Millisecond)

	transcript, err := h.c.End()
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	assert.Equal(t, "I feel", transcript[0].OriginalText)
	assert.Equal(t, "[I feel]", transcript[0].TranslatedText)
	assert.Equal(t, Ended(), h.c.State())

	assert.ErrorIs(t, h.c.StartCapture(internal_type.Patient), internal_type.ErrSessionEnded)
	assert.ErrorIs(t, h.c.StopCapture(internal_type.Clinician), internal_type.ErrSessionEnded)
	assert.ErrorIs(t, h.c.Replay(internal_type.Clinician), internal_type.ErrSessionEnded)
	assert.ErrorIs(t, h.c.CancelPlayback(), internal_type.ErrSessionEnded)

	again, err := h.c.End()
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestEnd_InflightTranslationLoggedAsFailed(t *testing.T) {
	h := newHarness(t, false, testConfig())
	h.translator.gate = make(chan struct{})
	require.NoError(t, h.c.Start())
	require.NoError(t, h.c.StartCapture(internal_type.Clinician))
	h.captures[internal_type.Clinician].say("Any allergies")
	require.NoError(t, h.c.StopCapture(internal_type.Clinician))
	assert.Equal(t, Translating(internal_type.Clinician), h.c.State())

	transcript, err := h.c.End()
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	assert.Equal(t, internal_type.TranslationFailedMarker, transcript[0].TranslatedText)
	close(h.translator.gate)
}

func TestScenario_RestartSamePartyKeepsLastTranscript(t *testing.T) {
	h := newHarness(t, false, testConfig())
	require.NoError(t, h.c.Start())
	require.NoError(t, h.c.StartCapture(internal_type.Clinician))
	h.captures[internal_type.Clinician].say("first try")
	staleGen := h.c.watchdogs[internal_type.Clinician].Generation()

	require.NoError(t, h.c.StartCapture(internal_type.Clinician))
	h.captures[internal_type.Clinician].say("second try")

	require.NoError(t, h.c.do(func() error {
		h.c.onSilence(internal_type.Clinician, staleGen)
		return nil
	}))
	assert.Equal(t, Speaking(internal_type.Clinician), h.c.State())

	require.NoError(t, h.c.StopCapture(internal_type.Clinician))
	h.waitState(t, WaitingFor(internal_type.Patient))
	transcript := h.c.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, "second try", transcript[0].OriginalText)
	assert.Equal(t, uint64(1), transcript[0].Sequence)
}

func TestCapture_ProviderHangUpFinalizesTurn(t *testing.T) {
	h := newHarness(t, false, testConfig())
	require.NoError(t, h.c.Start())
	require.NoError(t, h.c.StartCapture(internal_type.Patient))
	h.captures[internal_type.Patient].say("My head hurts")
	h.captures[internal_type.Patient].hangUp(errors.New("stream reset"))

	h.waitState(t, WaitingFor(internal_type.Clinician))
	transcript := h.c.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, internal_type.Patient, transcript[0].Speaker)
	assert.Contains(t, h.observer.noticeKinds(), NoticeCaptureFailed)
}

// =============================================================================
// Playback
// =============================================================================

func TestAutoFlowDisabledMidPlayback_FinishesCurrentHandOff(t *testing.T) {
	h := newHarness(t, true, testConfig())
	require.NoError(t, h.c.Start())
	h.captures[internal_type.Clinician].say("Hello")
	require.NoError(t, h.c.StopCapture(internal_type.Clinician))
	play := h.waitPlays(t, 1)

	require.NoError(t, h.c.SetAutoFlow(false))
	play.finish(internal_type.PlaybackCompleted)
	h.waitState(t, Speaking(internal_type.Patient))

	h.captures[internal_type.Patient].say("Thank you doctor")
	require.NoError(t, h.c.StopCapture(internal_type.Patient))
	h.waitState(t, WaitingFor(internal_type.Clinician))
	assert.Equal(t, 1, h.narrator.count())
	assert.Equal(t, 1, h.captures[internal_type.Clinician].openCount())
}

func TestCancelPlayback_SuppressesHandOff(t *testing.T) {
	h := newHarness(t, true, testConfig())
	require.NoError(t, h.c.Start())
	h.captures[internal_type.Clinician].say("Hello")
	require.NoError(t, h.c.StopCapture(internal_type.Clinician))
	play := h.waitPlays(t, 1)
	h.waitState(t, PlayingFrom(internal_type.Clinician))

	require.NoError(t, h.c.CancelPlayback())
	assert.Equal(t, WaitingFor(internal_type.Patient), h.c.State())
	assert.Equal(t, internal_type.PlaybackCancelled, play.Outcome())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, h.captures[internal_type.Patient].openCount())
	assert.Equal(t, WaitingFor(internal_type.Patient), h.c.State())
}

func TestPlaybackFailure_TreatedAsCompletion(t *testing.T) {
	h := newHarness(t, true, testConfig())
	require.NoError(t, h.c.Start())
	h.captures[internal_type.Clinician].say("Hello")
	require.NoError(t, h.c.StopCapture(internal_type.Clinician))

	h.waitPlays(t, 1).finish(internal_type.PlaybackFailed)
	h.waitState(t, Speaking(internal_type.Patient))
	assert.Contains(t, h.observer.noticeKinds(), NoticePlaybackFailure)
}

func TestStartCapture_DuringPlaybackCancelsIt(t *testing.T) {
	h := newHarness(t, true, testConfig())
	require.NoError(t, h.c.Start())
	h.captures[internal_type.Clinician].say("Hello")
	require.NoError(t, h.c.StopCapture(internal_type.Clinician))
	play := h.waitPlays(t, 1)
	h.waitState(t, PlayingFrom(internal_type.Clinician))

	require.NoError(t, h.c.StartCapture(internal_type.Clinician))
	assert.Equal(t, Speaking(internal_type.Clinician), h.c.State())
	assert.Equal(t, internal_type.PlaybackCancelled, play.Outcome())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, h.captures[internal_type.Patient].openCount())
}

func TestReplay(t *testing.T) {
	h := newHarness(t, false, testConfig())
	require.NoError(t, h.c.Start())
	assert.ErrorIs(t, h.c.Replay(internal_type.Clinician), internal_type.ErrNothingToReplay)

	require.NoError(t, h.c.StartCapture(internal_type.Clinician))
	h.captures[internal_type.Clinician].say("Hello")
	assert.ErrorIs(t, h.c.Replay(internal_type.Clinician), internal_type.ErrCaptureActive)
	require.NoError(t, h.c.StopCapture(internal_type.Clinician))
	h.waitState(t, WaitingFor(internal_type.Patient))

	require.NoError(t, h.c.Replay(internal_type.Clinician))
	play := h.waitPlays(t, 1)
	assert.Equal(t, "Namaste", play.text)
	assert.Equal(t, "hi-IN", play.language)
	assert.Equal(t, PlayingFrom(internal_type.Clinician), h.c.State())

	play.finish(internal_type.PlaybackCompleted)
	h.waitState(t, WaitingFor(internal_type.Patient))
	assert.Equal(t, 0, h.captures[internal_type.Patient].openCount())
}

func TestReplay_FailedTranslationHasNothingToPlay(t *testing.T) {
	h := newHarness(t, false, testConfig())
	h.translator.err = errors.New("offline")
	require.NoError(t, h.c.Start())
	require.NoError(t, h.c.StartCapture(internal_type.Patient))
	h.captures[internal_type.Patient].say("Pain here")
	require.NoError(t, h.c.StopCapture(internal_type.Patient))
	h.waitState(t, WaitingFor(internal_type.Clinician))

	assert.ErrorIs(t, h.c.Replay(internal_type.Patient), internal_type.ErrNothingToReplay)
}

// =============================================================================
// Settings
// =============================================================================

func TestSetLanguage(t *testing.T) {
	h := newHarness(t, false, testConfig())
	require.NoError(t, h.c.Start())

	assert.ErrorIs(t, h.c.SetLanguage(internal_type.Patient, "de-DE"), internal_type.ErrUnsupportedLanguage)

	require.NoError(t, h.c.StartCapture(internal_type.Patient))
	assert.ErrorIs(t, h.c.SetLanguage(internal_type.Patient, "ta-IN"), internal_type.ErrCaptureActive)
	require.NoError(t, h.c.SetLanguage(internal_type.Clinician, "te-IN"))
	assert.Equal(t, "te-IN", h.c.Settings().Language(internal_type.Clinician))

	require.NoError(t, h.c.StopCapture(internal_type.Patient))
	require.NoError(t, h.c.SetLanguage(internal_type.Patient, "ta-IN"))
	assert.Equal(t, "ta-IN", h.c.Settings().Language(internal_type.Patient))
}

func TestSetLanguage_AppliesToNextTurn(t *testing.T) {
	h := newHarness(t, false, testConfig())
	require.NoError(t, h.c.Start())
	require.NoError(t, h.c.SetLanguage(internal_type.Patient, "kn-IN"))
	require.NoError(t, h.c.StartCapture(internal_type.Clinician))
	h.captures[internal_type.Clinician].say("Open your mouth")
	require.NoError(t, h.c.StopCapture(internal_type.Clinician))
	h.waitState(t, WaitingFor(internal_type.Patient))

	transcript := h.c.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, "kn-IN", transcript[0].TargetLang)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Idle", Idle().String())
	assert.Equal(t, "WaitingFor(Patient)", WaitingFor(internal_type.Patient).String())
	assert.Equal(t, "ClinicianSpeaking", Speaking(internal_type.Clinician).String())
	assert.Equal(t, "PlayingToPatient", PlayingFrom(internal_type.Clinician).String())
}
