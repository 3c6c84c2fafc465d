package assistant

import (
	"context"
	"errors"
	"io"
	log "log/slog"
)

const Greeting = "Hello! I am your voice assistant. How can I help you today?"

type Ears interface {
	Listen(ctx context.Context) (string, error)
}

type Mouth interface {
	Speak(text string)
}

type Brain interface {
	Handle(ctx context.Context, utterance string) bool
}

// Run greets the user once and then serves utterances until the user
// says exit/quit, the input is exhausted or ctx is cancelled.
func Run(ctx context.Context, ears Ears, mouth Mouth, brain Brain) error {
	mouth.Speak(Greeting)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		query, err := ears.Listen(ctx)
		if errors.Is(err, io.EOF) {
			log.Info("Input closed")
			return nil
		}
		if err != nil || query == "" {
			continue
		}

		if !brain.Handle(ctx, query) {
			log.Info("Exit requested")
			return nil
		}
	}
}
