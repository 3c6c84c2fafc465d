package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"minipro/pkg/audioconv"
)

// WhisperCLI shells out to a whisper.cpp command line binary, for hosts
// where the cgo bindings are not available at runtime.
type WhisperCLI struct {
	ExecPath  string
	ModelPath string
	Language  string
	TempDir   string
}

func (w *WhisperCLI) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	if len(pcm) == 0 {
		return "", errors.New("no audio samples provided")
	}

	data, err := audioconv.EncodeWAV(pcm, audioconv.TargetRate)
	if err != nil {
		return "", fmt.Errorf("encode wav: %w", err)
	}

	f, err := os.CreateTemp(w.TempDir, "minipro-*.wav")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	lang := w.Language
	if lang == "" {
		lang = "en"
	}

	cmd := exec.CommandContext(ctx, w.ExecPath, "-m", w.ModelPath, "-l", lang, "-nt", "-np", "-f", f.Name())
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", w.ExecPath, err, strings.TrimSpace(stderr.String()))
	}

	return strings.Join(strings.Fields(out.String()), " "), nil
}
