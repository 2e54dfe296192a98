package speech

import (
	"strings"
	"sync"
	"time"
)

// State is the sequencer's playback state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

// RatePref is where the sequencer reads and writes the shared narration rate.
// Implemented by the annotation store.
type RatePref interface {
	AudioRate() float64
	SetAudioRate(rate float64)
}

// settleDelay is how long the sequencer waits after canceling an utterance
// before issuing a new one. The underlying engine is not guaranteed to accept
// an overlapping start/cancel synchronously, so re-speaking is deferred by a
// conservative fixed delay rather than a completion handshake.
const settleDelay = 100 * time.Millisecond

// Sequencer narrates an ordered verse list one utterance at a time, advancing
// automatically on completion. At most one utterance is ever live: every
// transition that changes index or state first cancels the active utterance.
type Sequencer struct {
	mu     sync.Mutex
	engine Engine
	pref   RatePref

	verses []string
	index  int
	state  State

	voices []Voice
	voice  Voice

	// gen invalidates in-flight utterance completions. Any transition that
	// cancels speech bumps it; a completion carrying a stale gen is ignored.
	gen    uint64
	settle time.Duration

	events chan struct{}
}

// NewSequencer builds a sequencer on the given engine. Voices tagged for lang
// are preferred; when none match, the full voice list is offered. The first
// candidate is auto-selected.
func NewSequencer(engine Engine, pref RatePref, lang string) *Sequencer {
	s := &Sequencer{
		engine: engine,
		pref:   pref,
		settle: settleDelay,
		events: make(chan struct{}, 1),
	}
	all := engine.Voices()
	var preferred []Voice
	for _, v := range all {
		if lang != "" && strings.HasPrefix(strings.ToLower(v.Lang), strings.ToLower(lang)) {
			preferred = append(preferred, v)
		}
	}
	if len(preferred) == 0 {
		preferred = all
	}
	s.voices = preferred
	if len(preferred) > 0 {
		s.voice = preferred[0]
	}
	return s
}

// Events delivers a signal after every observable state change, for UI
// re-rendering. The channel is never closed and drops signals when the
// consumer lags (coalescing is fine: consumers re-read Status).
func (s *Sequencer) Events() <-chan struct{} {
	return s.events
}

func (s *Sequencer) notifyLocked() {
	select {
	case s.events <- struct{}{}:
	default:
	}
}

// Status is a snapshot of the sequencer for rendering.
type Status struct {
	State  State
	Index  int
	Count  int
	Rate   float64
	Voice  Voice
	Voices []Voice
}

// Status returns a copy of the current playback state.
func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:  s.state,
		Index:  s.index,
		Count:  len(s.verses),
		Rate:   s.pref.AudioRate(),
		Voice:  s.voice,
		Voices: append([]Voice(nil), s.voices...),
	}
}

// SetVerses replaces the verse list, stopping any playback and resetting the
// position to the start.
func (s *Sequencer) SetVerses(verses []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.verses = append([]string(nil), verses...)
	s.index = 0
	s.state = StateIdle
	s.notifyLocked()
}

// Play starts or resumes narration at the current index. No-op when already
// playing or when the verse list is empty.
func (s *Sequencer) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePlaying || len(s.verses) == 0 {
		return
	}
	s.state = StatePlaying
	s.speakLocked()
	s.notifyLocked()
}

// Pause cancels any in-flight utterance and preserves the current index.
func (s *Sequencer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	if s.state == StatePlaying {
		s.state = StatePaused
	}
	s.notifyLocked()
}

// TogglePlay plays when idle or paused, pauses when playing.
func (s *Sequencer) TogglePlay() {
	s.mu.Lock()
	playing := s.state == StatePlaying
	s.mu.Unlock()
	if playing {
		s.Pause()
	} else {
		s.Play()
	}
}

// Next skips to the following verse, clamped to the list end.
func (s *Sequencer) Next() { s.step(1) }

// Prev skips to the preceding verse, clamped to the list start.
func (s *Sequencer) Prev() { s.step(-1) }

func (s *Sequencer) step(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.verses) == 0 {
		return
	}
	wasPlaying := s.state == StatePlaying
	s.cancelLocked()
	s.index = clamp(s.index+delta, 0, len(s.verses)-1)
	if wasPlaying {
		s.state = StatePlaying
		s.respeakAfterSettleLocked()
	}
	s.notifyLocked()
}

// SetRate updates the shared rate preference. A rate change does not carry
// over mid-utterance: when playing, the current verse restarts at the new
// rate.
func (s *Sequencer) SetRate(rate float64) {
	s.pref.SetAudioRate(rate)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePlaying {
		s.cancelLocked()
		s.state = StatePlaying
		s.respeakAfterSettleLocked()
	}
	s.notifyLocked()
}

// SetVoice selects the voice for subsequent utterances only.
func (s *Sequencer) SetVoice(v Voice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = v
	s.notifyLocked()
}

// Stop cancels playback and resets the position to the first verse.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.state = StateIdle
	s.index = 0
	s.notifyLocked()
}

// Close releases the sequencer: all pending speech is canceled and the
// playing flag cleared, regardless of current state.
func (s *Sequencer) Close() {
	s.Stop()
}

// cancelLocked stops the live utterance, if any, and invalidates its pending
// completion.
func (s *Sequencer) cancelLocked() {
	s.gen++
	s.engine.Cancel()
}

// speakLocked issues the utterance at the current index and watches for its
// outcome. Caller must hold the lock with state == StatePlaying.
func (s *Sequencer) speakLocked() {
	if s.index < 0 || s.index >= len(s.verses) {
		s.state = StateIdle
		return
	}
	s.gen++
	gen := s.gen
	done := s.engine.Speak(Utterance{
		Text:  s.verses[s.index],
		Rate:  s.pref.AudioRate(),
		Voice: s.voice,
	})
	go func() {
		s.onOutcome(gen, <-done)
	}()
}

// onOutcome handles an utterance ending. The auto-chain only fires when the
// sequencer is still playing and the completion is not stale: a Pause issued
// between utterances suppresses the next auto-speak.
func (s *Sequencer) onOutcome(gen uint64, out Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state != StatePlaying {
		return
	}
	switch out {
	case OutcomeDone:
		if s.index+1 < len(s.verses) {
			s.index++
			s.speakLocked()
		} else {
			// Natural end of chapter.
			s.state = StateIdle
		}
	case OutcomeError:
		// Fail-stop: no retry, no skip.
		s.state = StateIdle
	case OutcomeCanceled:
		// The transition that canceled already set the next state.
		return
	}
	s.notifyLocked()
}

// respeakAfterSettleLocked schedules the current verse to be spoken after the
// settle delay, unless another transition supersedes it first.
func (s *Sequencer) respeakAfterSettleLocked() {
	gen := s.gen
	time.AfterFunc(s.settle, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || s.state != StatePlaying {
			return
		}
		s.speakLocked()
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
