// Package voice is the assistant's ear and mouth: it captures one
// utterance per call, turns it into text and speaks replies.
package voice

import (
	"context"
	"errors"
	log "log/slog"
	"regexp"
	"strings"
	"time"
)

// Capture is one unit of user input. Sources that already have text
// (typed or sent over the control socket) fill Text; the microphone
// fills PCM, 16 kHz mono float32.
type Capture struct {
	Text string
	PCM  []float32
}

type Source interface {
	// Capture waits at most onset for input to begin.
	Capture(ctx context.Context, onset time.Duration) (Capture, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
}

type Speaker interface {
	Speak(text string) error
}

type Gateway struct {
	src     Source
	stt     Transcriber
	speaker Speaker
	onset   time.Duration
}

func NewGateway(src Source, stt Transcriber, speaker Speaker, onset time.Duration) *Gateway {
	if onset <= 0 {
		onset = 5 * time.Second
	}
	return &Gateway{src: src, stt: stt, speaker: speaker, onset: onset}
}

// Listen returns the next utterance. On failure it has already spoken
// the matching apology; callers treat any error as "no command".
// io.EOF and context cancellation are returned without an apology.
func (g *Gateway) Listen(ctx context.Context) (string, error) {
	log.Info("Listening...")

	text, err := g.listen(ctx)
	if err != nil {
		if silent(err) {
			return "", err
		}

		err = classify(err)
		log.Warn("Listen failed", "err", err)
		g.Speak(apology(err))
		return "", err
	}

	log.Info("User said", "text", text)
	return text, nil
}

func (g *Gateway) listen(ctx context.Context) (string, error) {
	c, err := g.src.Capture(ctx, g.onset)
	if err != nil {
		return "", err
	}

	if text := strings.TrimSpace(c.Text); text != "" {
		return text, nil
	}
	if len(c.PCM) == 0 {
		return "", ErrNoSpeech
	}
	if g.stt == nil {
		return "", errors.New("no transcriber configured")
	}

	log.Info("Recognizing...", "samples", len(c.PCM))

	text, err := g.stt.Transcribe(ctx, c.PCM)
	if err != nil {
		return "", err
	}

	text = cleanTranscript(text)
	if text == "" {
		return "", ErrNotUnderstood
	}
	return text, nil
}

// annotation matches whisper's non-speech markers such as
// "[BLANK_AUDIO]" or "(wind blowing)".
var annotation = regexp.MustCompile(`[\(\[][A-Za-z_][A-Za-z_\s]*[\)\]]`)

func cleanTranscript(text string) string {
	text = annotation.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Speak blocks until the text has been spoken. Synthesis failures are
// logged only.
func (g *Gateway) Speak(text string) {
	log.Debug("Speaking", "text", text)
	if err := g.speaker.Speak(text); err != nil {
		log.Error("Failed to voice out", "err", err)
	}
}
