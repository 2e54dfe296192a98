// Package speech narrates verse lists through a pluggable text-to-speech
// engine. The Sequencer owns the playback state machine; Engine abstracts the
// synthesis backend so the sequencer is testable without real audio output.
package speech

import (
	"bufio"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Voice identifies one synthesis voice.
type Voice struct {
	ID   string
	Name string
	Lang string
}

// Outcome is the terminal result of one utterance.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeCanceled
	OutcomeError
)

// Utterance is one unit of synthesized speech: a single verse's text with the
// rate and voice to speak it at.
type Utterance struct {
	Text  string
	Rate  float64
	Voice Voice
}

// Engine is the speech-synthesis capability the sequencer depends on.
//
// Speak starts one utterance and returns a channel that delivers exactly one
// Outcome when the utterance finishes, errors, or is canceled. Cancel stops
// any in-flight utterance; its channel then delivers OutcomeCanceled.
type Engine interface {
	Voices() []Voice
	Speak(u Utterance) <-chan Outcome
	Cancel()
}

// baseWordsPerMinute is the speaking rate corresponding to rate 1.0.
const baseWordsPerMinute = 175

// ExecEngine synthesizes speech by running a system TTS command per
// utterance: `say` on macOS, `espeak-ng`/`espeak` elsewhere.
type ExecEngine struct {
	mu       sync.Mutex
	command  string
	lang     string
	current  *exec.Cmd
	canceled bool
}

// NewExecEngine builds an engine around the given TTS command. An empty
// command autodetects one for the host platform.
func NewExecEngine(command, lang string) *ExecEngine {
	if strings.TrimSpace(command) == "" {
		command = detectCommand()
	}
	return &ExecEngine{command: command, lang: lang}
}

func detectCommand() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return "espeak"
}

// Voices lists the voices the TTS command offers. Failures yield an empty
// list; narration then runs with the command's default voice.
func (e *ExecEngine) Voices() []Voice {
	switch {
	case strings.HasSuffix(e.command, "say"):
		return parseSayVoices(runOutput(e.command, "-v", "?"))
	default:
		return parseEspeakVoices(runOutput(e.command, "--voices"))
	}
}

// Speak runs one TTS process for the utterance.
func (e *ExecEngine) Speak(u Utterance) <-chan Outcome {
	out := make(chan Outcome, 1)

	wpm := int(baseWordsPerMinute * u.Rate)
	if wpm <= 0 {
		wpm = baseWordsPerMinute
	}
	var args []string
	if strings.HasSuffix(e.command, "say") {
		args = append(args, "-r", strconv.Itoa(wpm))
		if u.Voice.ID != "" {
			args = append(args, "-v", u.Voice.ID)
		}
	} else {
		args = append(args, "-s", strconv.Itoa(wpm))
		switch {
		case u.Voice.ID != "":
			args = append(args, "-v", u.Voice.ID)
		case e.lang != "":
			args = append(args, "-v", e.lang)
		}
	}
	args = append(args, u.Text)
	cmd := exec.Command(e.command, args...)

	e.mu.Lock()
	e.cancelLocked()
	e.current = cmd
	e.canceled = false
	e.mu.Unlock()

	if err := cmd.Start(); err != nil {
		out <- OutcomeError
		return out
	}

	go func() {
		err := cmd.Wait()
		e.mu.Lock()
		canceled := e.canceled
		if e.current == cmd {
			e.current = nil
		}
		e.mu.Unlock()
		switch {
		case canceled:
			out <- OutcomeCanceled
		case err != nil:
			out <- OutcomeError
		default:
			out <- OutcomeDone
		}
	}()
	return out
}

// Cancel kills any in-flight TTS process.
func (e *ExecEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

func (e *ExecEngine) cancelLocked() {
	if e.current != nil && e.current.Process != nil {
		e.canceled = true
		_ = e.current.Process.Kill()
	}
}

func runOutput(command string, args ...string) string {
	out, err := exec.Command(command, args...).Output()
	if err != nil {
		return ""
	}
	return string(out)
}

// parseEspeakVoices reads `espeak --voices` output. Columns:
// Pty Language Age/Gender VoiceName File Other Languages
func parseEspeakVoices(out string) []Voice {
	var voices []Voice
	scanner := bufio.NewScanner(strings.NewReader(out))
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false // header row
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{
			ID:   fields[1],
			Name: fields[3],
			Lang: fields[1],
		})
	}
	return voices
}

// parseSayVoices reads `say -v ?` output: "Name  lang_REGION  # comment".
func parseSayVoices(out string) []Voice {
	var voices []Voice
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		lang := fields[len(fields)-1]
		name := strings.Join(fields[:len(fields)-1], " ")
		voices = append(voices, Voice{
			ID:   name,
			Name: name,
			Lang: strings.ReplaceAll(lang, "_", "-"),
		})
	}
	return voices
}
