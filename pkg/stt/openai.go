package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go/v3"

	"minipro/pkg/audioconv"
)

// OpenAI transcribes through the hosted transcription endpoint. Errors
// from the API keep their *openai.Error so callers can tell a service
// outage from a local failure.
type OpenAI struct {
	client   openai.Client
	model    openai.AudioModel
	language string
}

func NewOpenAI(client openai.Client, language string) *OpenAI {
	if language == "" {
		language = "en"
	}
	return &OpenAI{
		client:   client,
		model:    openai.AudioModelWhisper1,
		language: language,
	}
}

func (o *OpenAI) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	if len(pcm) == 0 {
		return "", errors.New("no audio samples provided")
	}

	wav, err := audioconv.EncodeWAV(pcm, audioconv.TargetRate)
	if err != nil {
		return "", fmt.Errorf("encode wav: %w", err)
	}

	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(wav), "speech.wav", "audio/wav"),
		Model:    o.model,
		Language: openai.String(o.language),
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}

	return resp.Text, nil
}
