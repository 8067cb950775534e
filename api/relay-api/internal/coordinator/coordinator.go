// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	internal_transcript "github.com/samvaad/api/relay-api/internal/transcript"
	internal_type "github.com/samvaad/api/relay-api/internal/type"
	internal_watchdog "github.com/samvaad/api/relay-api/internal/watchdog"
	"github.com/samvaad/pkg/commons"
)

const eventQueueSize = 64

var validate = validator.New()

// translationJob is one finalized turn awaiting its translation.
type translationJob struct {
	party       internal_type.Party
	ticket      uint64
	text        string
	sourceLang  string
	targetLang  string
	finalizedAt time.Time
	cancel      context.CancelFunc
}

// playJob is the narration currently addressed to speaker.Other().
type playJob struct {
	id       uint64
	speaker  internal_type.Party
	text     string
	playback internal_type.Playback
	// handoff is decided when playback starts: a playback that began under
	// auto-flow still hands the floor over even if auto-flow is switched off
	// while it plays.
	handoff bool
}

// Coordinator is the turn-taking state machine of one session. Every state
// mutation runs on a single loop goroutine; operator calls and asynchronous
// completions (snapshots, watchdog fires, translations, playbacks) are queued
// to it and applied one at a time.
type Coordinator struct {
	logger     commons.Logger
	cfg        Config
	settings   *Settings
	captures   [2]internal_type.CaptureChannel
	translator internal_type.Translator
	narrator   internal_type.Narrator
	log        *internal_transcript.Log
	sequencer  *internal_transcript.Sequencer
	observer   Observer

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan func()
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once

	stateMu sync.RWMutex
	current State

	// loop-owned
	watchdogs    [2]*internal_watchdog.Watchdog
	turnGen      [2]uint64
	capturing    [2]bool
	pending      [2]string
	tickets      [2]uint64
	inflight     *translationJob
	playing      *playJob
	playSeq      uint64
	pendingStart *internal_type.Party
}

type Option func(*Coordinator)

func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observer = o
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(c *Coordinator) { c.cfg = cfg }
}

// NewCoordinator wires the collaborators of one session and starts its loop.
// captures is indexed by party.
func NewCoordinator(
	ctx context.Context,
	logger commons.Logger,
	settings *Settings,
	captures [2]internal_type.CaptureChannel,
	translator internal_type.Translator,
	narrator internal_type.Narrator,
	log *internal_transcript.Log,
	opts ...Option,
) *Coordinator {
	cctx, cancel := context.WithCancel(ctx)
	c := &Coordinator{
		logger:     logger,
		cfg:        DefaultConfig(),
		settings:   settings,
		captures:   captures,
		translator: translator,
		narrator:   narrator,
		log:        log,
		sequencer:  internal_transcript.NewSequencer(log),
		observer:   nopObserver{},
		ctx:        cctx,
		cancel:     cancel,
		queue:      make(chan func(), eventQueueSize),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		current:    Idle(),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, p := range []internal_type.Party{internal_type.Clinician, internal_type.Patient} {
		party := p
		c.watchdogs[party] = internal_watchdog.NewWatchdog(func(gen uint64) {
			c.post(func() { c.onSilence(party, gen) })
		})
	}
	go c.loop()
	return c
}

// =============================================================================
// Loop plumbing
// =============================================================================

func (c *Coordinator) loop() {
	defer close(c.done)
	for {
		select {
		case fn := <-c.queue:
			fn()
		case <-c.quit:
			return
		}
	}
}

// post queues an asynchronous completion. It is dropped once the loop has
// exited.
func (c *Coordinator) post(fn func()) {
	select {
	case c.queue <- fn:
	case <-c.done:
	}
}

// do runs fn on the loop and waits for its result.
func (c *Coordinator) do(fn func() error) error {
	result := make(chan error, 1)
	select {
	case c.queue <- func() { result <- fn() }:
	case <-c.done:
		return internal_type.ErrSessionEnded
	}
	select {
	case err := <-result:
		return err
	case <-c.done:
		return internal_type.ErrSessionEnded
	}
}

func (c *Coordinator) setState(s State) {
	c.stateMu.Lock()
	prev := c.current
	c.current = s
	c.stateMu.Unlock()
	if prev != s {
		c.logger.Debugf("coordinator state %s -> %s", prev, s)
		c.observer.OnState(s)
	}
}

func (c *Coordinator) notice(kind NoticeKind, party internal_type.Party, format string, args ...interface{}) {
	n := Notice{Kind: kind, Party: party, Message: fmt.Sprintf(format, args...)}
	c.logger.Warnf("notice %s for %s: %s", n.Kind, party, n.Message)
	c.observer.OnNotice(n)
}

// =============================================================================
// Reads
// =============================================================================

// State returns the current state. Safe from any goroutine.
func (c *Coordinator) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.current
}

// Transcript returns the ordered utterances appended so far.
func (c *Coordinator) Transcript() []internal_type.Utterance {
	return c.log.Snapshot()
}

func (c *Coordinator) Settings() *Settings {
	return c.settings
}

// Feed routes operator audio to whichever party is speaking. Audio that
// arrives while nobody holds the floor is dropped.
func (c *Coordinator) Feed(audio []byte) error {
	st := c.State()
	if st.Phase != PhaseSpeaking {
		return nil
	}
	return c.captures[st.Party].Feed(audio)
}

// =============================================================================
// Operator operations
// =============================================================================

// Start moves Idle to WaitingFor(initial party) once metadata and both
// languages are valid. With auto-flow the initial party's capture opens
// straight away.
func (c *Coordinator) Start() error {
	return c.do(func() error {
		switch c.current.Phase {
		case PhaseEnded:
			return internal_type.ErrSessionEnded
		case PhaseIdle:
		default:
			return fmt.Errorf("%w: start from %s", internal_type.ErrInvalidTransition, c.current)
		}

		if err := validate.Struct(c.settings.Metadata()); err != nil {
			return fmt.Errorf("%w: %v", internal_type.ErrInvalidMetadata, err)
		}
		for _, p := range []internal_type.Party{internal_type.Clinician, internal_type.Patient} {
			if _, ok := internal_type.LookupLanguage(c.settings.Language(p)); !ok {
				return fmt.Errorf("%w: %s language %q", internal_type.ErrUnsupportedLanguage, p, c.settings.Language(p))
			}
		}

		initial := c.cfg.InitialParty
		c.setState(WaitingFor(initial))
		if c.settings.AutoFlow() {
			if err := c.openCapture(initial); err != nil {
				c.setState(Idle())
				return err
			}
		}
		return nil
	})
}

// StartCapture gives party the floor. Any other capture is finalized first;
// when that leaves a translation in flight the capture opens once the
// translation settles. Restarting a party that is already capturing discards
// its unfinalized text.
func (c *Coordinator) StartCapture(party internal_type.Party) error {
	if !party.Valid() {
		return fmt.Errorf("invalid party %d", int(party))
	}
	return c.do(func() error {
		if err := c.requireActive(); err != nil {
			return err
		}

		other := party.Other()
		if c.capturing[other] {
			c.finalize(other)
		}
		if c.capturing[party] {
			c.discardTurn(party)
		}
		if c.inflight != nil {
			c.pendingStart = &party
			c.logger.Debugf("capture for %s deferred until %s translation settles", party, c.inflight.party)
			return nil
		}
		c.overridePlayback()
		return c.openCapture(party)
	})
}

// StopCapture finalizes party's turn. Stopping a party that is not capturing
// is a no-op.
func (c *Coordinator) StopCapture(party internal_type.Party) error {
	if !party.Valid() {
		return fmt.Errorf("invalid party %d", int(party))
	}
	return c.do(func() error {
		if err := c.requireActive(); err != nil {
			return err
		}
		if c.pendingStart != nil && *c.pendingStart == party {
			c.pendingStart = nil
		}
		if c.capturing[party] {
			c.finalize(party)
		}
		return nil
	})
}

// SetAutoFlow toggles automatic hand-off for turns finalized from now on.
func (c *Coordinator) SetAutoFlow(enabled bool) error {
	return c.do(func() error {
		if c.current.Phase == PhaseEnded {
			return internal_type.ErrSessionEnded
		}
		c.settings.setAutoFlow(enabled)
		return nil
	})
}

// SetLanguage changes party's language while that party is not capturing.
func (c *Coordinator) SetLanguage(party internal_type.Party, tag string) error {
	if !party.Valid() {
		return fmt.Errorf("invalid party %d", int(party))
	}
	lang, ok := internal_type.LookupLanguage(tag)
	if !ok {
		return fmt.Errorf("%w: %q", internal_type.ErrUnsupportedLanguage, tag)
	}
	return c.do(func() error {
		if c.current.Phase == PhaseEnded {
			return internal_type.ErrSessionEnded
		}
		if c.capturing[party] {
			return fmt.Errorf("%w: %s language cannot change while capturing", internal_type.ErrCaptureActive, party)
		}
		c.settings.setLanguage(party, lang.Tag)
		c.pending[party] = ""
		return nil
	})
}

// CancelPlayback stops the narration in progress without handing off.
func (c *Coordinator) CancelPlayback() error {
	return c.do(func() error {
		if err := c.requireActive(); err != nil {
			return err
		}
		if job := c.overridePlayback(); job != nil {
			c.setState(WaitingFor(job.speaker.Other()))
		}
		return nil
	})
}

// Replay narrates party's most recent translation again, without hand-off.
func (c *Coordinator) Replay(party internal_type.Party) error {
	if !party.Valid() {
		return fmt.Errorf("invalid party %d", int(party))
	}
	return c.do(func() error {
		if err := c.requireActive(); err != nil {
			return err
		}
		if c.capturing[internal_type.Clinician] || c.capturing[internal_type.Patient] || c.inflight != nil {
			return fmt.Errorf("%w: replay needs a quiet floor", internal_type.ErrCaptureActive)
		}
		u, ok := c.log.Last(party)
		if !ok || u.TranslationFailed() {
			return internal_type.ErrNothingToReplay
		}
		c.overridePlayback()
		c.startPlayback(party, u.TranslatedText, u.TargetLang, false)
		return nil
	})
}

// End terminates the session: captures stop, watchdogs and playback are
// cancelled, a translation in flight is logged with the failure marker and
// any pending speech is flushed as a final utterance. Further calls are
// rejected with ErrSessionEnded; End itself is idempotent.
func (c *Coordinator) End() ([]internal_type.Utterance, error) {
	err := c.do(func() error {
		if c.current.Phase == PhaseEnded {
			return nil
		}
		c.pendingStart = nil
		for _, p := range []internal_type.Party{internal_type.Clinician, internal_type.Patient} {
			c.watchdogs[p].Cancel()
		}
		c.overridePlayback()

		if job := c.inflight; job != nil {
			c.inflight = nil
			job.cancel()
			c.commit(job, internal_type.TranslationFailedMarker)
		}

		for _, p := range []internal_type.Party{internal_type.Clinician, internal_type.Patient} {
			if !c.capturing[p] {
				continue
			}
			job := c.closeTurn(p)
			if job == nil {
				continue
			}
			flushCtx, cancel := context.WithTimeout(context.Background(), c.cfg.FlushTimeout)
			translated, err := c.translator.Translate(flushCtx, job.text, job.sourceLang, job.targetLang)
			cancel()
			if err != nil {
				c.notice(NoticeTranslationUnavailable, p, "translation of the final turn failed: %v", err)
				translated = internal_type.TranslationFailedMarker
			}
			c.commit(job, translated)
		}

		c.setState(Ended())
		c.cancel()
		return nil
	})
	if err != nil && !errors.Is(err, internal_type.ErrSessionEnded) {
		return nil, err
	}
	return c.log.Snapshot(), nil
}

// Close ends the session if needed and stops the loop.
func (c *Coordinator) Close() {
	_, _ = c.End()
	c.once.Do(func() {
		close(c.quit)
		<-c.done
		c.cancel()
	})
}

func (c *Coordinator) requireActive() error {
	switch c.current.Phase {
	case PhaseEnded:
		return internal_type.ErrSessionEnded
	case PhaseIdle:
		return internal_type.ErrSessionNotStarted
	}
	return nil
}

// =============================================================================
// Turn mechanics (loop only)
// =============================================================================

func (c *Coordinator) openCapture(party internal_type.Party) error {
	c.turnGen[party]++
	gen := c.turnGen[party]

	updates, err := c.captures[party].Open(c.ctx, c.settings.Language(party))
	if err != nil {
		if !errors.Is(err, internal_type.ErrCaptureUnavailable) {
			err = fmt.Errorf("%w: %v", internal_type.ErrCaptureUnavailable, err)
		}
		c.notice(NoticeCaptureUnavailable, party, "capture could not start: %v", err)
		c.setState(WaitingFor(party))
		return err
	}

	c.capturing[party] = true
	c.pending[party] = ""
	c.tickets[party] = c.sequencer.Reserve()
	c.watchdogs[party].Arm(c.cfg.SilenceTimeout)
	c.setState(Speaking(party))

	go func() {
		for snap := range updates {
			s := snap
			c.post(func() { c.onSnapshot(party, gen, s) })
		}
	}()
	return nil
}

func (c *Coordinator) onSnapshot(party internal_type.Party, gen uint64, snap internal_type.Snapshot) {
	if gen != c.turnGen[party] || !c.capturing[party] {
		return
	}
	if snap.Final {
		if snap.Err != nil {
			c.notice(NoticeCaptureFailed, party, "capture stopped: %v", snap.Err)
		}
		c.finalize(party)
		return
	}
	c.pending[party] = snap.Text
	c.watchdogs[party].Reset()
	c.observer.OnTranscript(party, snap.Text)
}

func (c *Coordinator) onSilence(party internal_type.Party, gen uint64) {
	if gen != c.watchdogs[party].Generation() || !c.capturing[party] {
		c.logger.Debugf("discarding stale silence fire for %s (generation %d)", party, gen)
		return
	}
	c.logger.Debugf("%s fell silent, finalizing turn", party)
	c.finalize(party)
}

// closeTurn stops party's capture and returns the finalized turn, or nil when
// nothing usable was said.
func (c *Coordinator) closeTurn(party internal_type.Party) *translationJob {
	c.capturing[party] = false
	c.watchdogs[party].Cancel()
	snap := c.captures[party].Stop()

	text := strings.TrimSpace(snap.Text)
	if text == "" {
		text = strings.TrimSpace(c.pending[party])
	}
	c.pending[party] = ""
	ticket := c.tickets[party]

	if !c.isSpeech(text) {
		c.publish(c.sequencer.Release(ticket))
		return nil
	}
	return &translationJob{
		party:       party,
		ticket:      ticket,
		text:        text,
		sourceLang:  c.settings.Language(party),
		targetLang:  c.settings.Language(party.Other()),
		finalizedAt: time.Now(),
	}
}

// finalize closes party's turn and sends it for translation. An empty turn
// leaves the floor with party, or goes to a deferred capture request.
func (c *Coordinator) finalize(party internal_type.Party) {
	job := c.closeTurn(party)
	if job == nil {
		if c.startDeferred() {
			return
		}
		c.setState(WaitingFor(party))
		return
	}

	tctx, cancel := context.WithTimeout(c.ctx, c.cfg.TranslationTimeout)
	job.cancel = cancel
	c.inflight = job
	c.setState(Translating(party))

	go func() {
		translated, err := c.translator.Translate(tctx, job.text, job.sourceLang, job.targetLang)
		c.post(func() { c.onTranslated(job, translated, err) })
	}()
}

func (c *Coordinator) onTranslated(job *translationJob, translated string, err error) {
	if c.inflight != job {
		c.logger.Debugf("discarding stale translation for %s", job.party)
		return
	}
	c.inflight = nil
	job.cancel()

	failed := err != nil
	if failed {
		c.notice(NoticeTranslationUnavailable, job.party, "translation failed: %v", err)
		translated = internal_type.TranslationFailedMarker
	}
	c.commit(job, translated)

	if c.startDeferred() {
		return
	}
	other := job.party.Other()
	if !c.settings.AutoFlow() {
		c.setState(WaitingFor(other))
		return
	}
	if failed {
		c.setState(WaitingFor(other))
		_ = c.openCapture(other)
		return
	}
	c.startPlayback(job.party, translated, job.targetLang, true)
}

func (c *Coordinator) startDeferred() bool {
	if c.pendingStart == nil {
		return false
	}
	party := *c.pendingStart
	c.pendingStart = nil
	c.overridePlayback()
	_ = c.openCapture(party)
	return true
}

func (c *Coordinator) commit(job *translationJob, translated string) {
	u := internal_type.Utterance{
		ID:             uuid.NewString(),
		Speaker:        job.party,
		OriginalText:   job.text,
		TranslatedText: translated,
		SourceLang:     job.sourceLang,
		TargetLang:     job.targetLang,
		Timestamp:      job.finalizedAt,
	}
	c.publish(c.sequencer.Commit(job.ticket, u))
}

func (c *Coordinator) publish(appended []internal_type.Utterance) {
	for _, u := range appended {
		c.logger.Infof("utterance #%d appended: speaker=%s source=%s target=%s", u.Sequence, u.Speaker, u.SourceLang, u.TargetLang)
		c.observer.OnUtterance(u)
	}
}

// discardTurn abandons party's capture without producing an utterance.
func (c *Coordinator) discardTurn(party internal_type.Party) {
	c.capturing[party] = false
	c.watchdogs[party].Cancel()
	c.captures[party].Stop()
	c.pending[party] = ""
	c.publish(c.sequencer.Release(c.tickets[party]))
}

func (c *Coordinator) isSpeech(text string) bool {
	minimum := c.cfg.MinSpeechLength
	if minimum < 1 {
		minimum = 1
	}
	return utf8.RuneCountInString(text) >= minimum
}

// =============================================================================
// Playback (loop only)
// =============================================================================

func (c *Coordinator) startPlayback(speaker internal_type.Party, text, language string, handoff bool) {
	c.playSeq++
	job := &playJob{id: c.playSeq, speaker: speaker, text: text, handoff: handoff}
	c.setState(PlayingFrom(speaker))
	job.playback = c.narrator.Speak(c.ctx, text, language)
	c.playing = job

	go func() {
		<-job.playback.Done()
		c.post(func() { c.onPlaybackSettled(job) })
	}()
}

func (c *Coordinator) onPlaybackSettled(job *playJob) {
	if c.playing != job {
		return
	}
	c.playing = nil

	outcome := job.playback.Outcome()
	listener := job.speaker.Other()
	c.observer.OnPlayback(listener, job.text, outcome)
	if outcome == internal_type.PlaybackFailed {
		c.notice(NoticePlaybackFailure, listener, "playback failed: %v", job.playback.Err())
	}

	c.setState(WaitingFor(listener))
	if job.handoff {
		_ = c.openCapture(listener)
	}
}

// overridePlayback cancels the narration in progress as a manual override, so
// its settlement is ignored and no hand-off follows.
func (c *Coordinator) overridePlayback() *playJob {
	job := c.playing
	if job == nil {
		return nil
	}
	c.playing = nil
	c.narrator.Cancel()
	c.observer.OnPlayback(job.speaker.Other(), job.text, internal_type.PlaybackCancelled)
	return job
}
