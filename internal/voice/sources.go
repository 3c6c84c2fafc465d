package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"minipro/internal/audio"
	"minipro/internal/ipc"
	"minipro/pkg/audioconv"
)

// Mic records from the default input device.
type Mic struct {
	Rec *audio.Recorder
}

func (m Mic) Capture(ctx context.Context, onset time.Duration) (Capture, error) {
	pcm, err := m.Rec.Record(ctx, onset)
	if errors.Is(err, audio.ErrNoOnset) {
		return Capture{}, fmt.Errorf("%w: %w", ErrNoSpeech, err)
	}
	if err != nil {
		return Capture{}, err
	}
	return Capture{PCM: pcm}, nil
}

// Socket serves messages from the control socket. Audio messages are
// decoded from the named file and still go through the transcriber.
type Socket struct {
	Msgs   <-chan ipc.ControlMessage
	Decode func(path string) ([]float32, error)
}

func NewSocket(srv *ipc.Server) Socket {
	return Socket{
		Msgs: srv.Messages(),
		Decode: func(path string) ([]float32, error) {
			return audioconv.DecodeFile(path, audioconv.Options{MaxSamples: 30 * audioconv.TargetRate})
		},
	}
}

func (s Socket) Capture(ctx context.Context, onset time.Duration) (Capture, error) {
	msg, err := receive(ctx, onset, s.Msgs)
	if err != nil {
		return Capture{}, err
	}

	switch msg.Cmd {
	case ipc.CmdAudio:
		pcm, err := s.Decode(msg.Path)
		if err != nil {
			return Capture{}, err
		}
		return Capture{PCM: pcm}, nil
	default:
		return Capture{Text: msg.Text}, nil
	}
}

// Keyboard reads one typed line per utterance.
type Keyboard struct {
	lines <-chan string
}

func NewKeyboard(r io.Reader) Keyboard {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				lines <- line
			}
		}
	}()
	return Keyboard{lines: lines}
}

func (k Keyboard) Capture(ctx context.Context, onset time.Duration) (Capture, error) {
	line, err := receive(ctx, onset, k.lines)
	if err != nil {
		return Capture{}, err
	}
	return Capture{Text: line}, nil
}

// receive waits up to onset for the next value. A closed channel
// means the input is gone for good.
func receive[T any](ctx context.Context, onset time.Duration, ch <-chan T) (T, error) {
	var zero T

	t := time.NewTimer(onset)
	defer t.Stop()

	select {
	case v, ok := <-ch:
		if !ok {
			return zero, io.EOF
		}
		return v, nil
	case <-t.C:
		return zero, ErrNoSpeech
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
