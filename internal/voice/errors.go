package voice

import (
	"context"
	"errors"
	"io"
	"net"

	openai "github.com/openai/openai-go/v3"
)

var (
	// ErrNoSpeech: nothing was heard before the onset timeout.
	ErrNoSpeech = errors.New("no speech detected")
	// ErrNotUnderstood: audio was captured but produced no transcript.
	ErrNotUnderstood = errors.New("speech not understood")
	// ErrServiceUnavailable: the transcription service could not be reached.
	ErrServiceUnavailable = errors.New("speech service unavailable")
	// ErrUnexpected wraps every other listen failure.
	ErrUnexpected = errors.New("unexpected listen failure")
)

const (
	apologyNoSpeech      = "Sorry, I did not hear anything. Please try again."
	apologyNotUnderstood = "Sorry, I did not understand that."
	apologyUnavailable   = "Sorry, my speech service is down."
	apologyUnexpected    = "Sorry, something went wrong."
)

// classify maps a raw capture/transcription error onto one of the four
// listen failure classes.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrNoSpeech),
		errors.Is(err, ErrNotUnderstood),
		errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, ErrUnexpected):
		return err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return errors.Join(ErrServiceUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrServiceUnavailable, err)
	}

	return errors.Join(ErrUnexpected, err)
}

func apology(err error) string {
	switch {
	case errors.Is(err, ErrNoSpeech):
		return apologyNoSpeech
	case errors.Is(err, ErrNotUnderstood):
		return apologyNotUnderstood
	case errors.Is(err, ErrServiceUnavailable):
		return apologyUnavailable
	default:
		return apologyUnexpected
	}
}

// silent errors end a listen without an apology.
func silent(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled)
}
