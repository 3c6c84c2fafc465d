package nlu

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
)

const AnswerFailed = "Sorry, I couldn't process your request."

// Extractor pulls the answer to question out of passage.
type Extractor interface {
	Extract(ctx context.Context, question, passage string) (string, error)
}

// Answerer answers free-form questions from the stored reference
// passage. It never fails; problems turn into AnswerFailed.
type Answerer struct {
	model   Extractor
	passage string
	timeout time.Duration
}

func NewAnswerer(model Extractor, passage string, timeout time.Duration) *Answerer {
	return &Answerer{model: model, passage: passage, timeout: timeout}
}

func (a *Answerer) Answer(ctx context.Context, question string) string {
	answer, err := a.answer(ctx, question)
	if err != nil {
		log.Error("Failed to answer", "question", question, "err", err)
		return AnswerFailed
	}

	log.Debug("Answered", "question", question, "answer", answer)
	return answer
}

func (a *Answerer) answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("empty question")
	}
	if strings.TrimSpace(a.passage) == "" {
		return "", errors.New("empty context")
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	answer, err := a.model.Extract(ctx, question, a.passage)
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.New("empty answer")
	}
	return answer, nil
}

const extractPrompt = `
You are an extractive question answering model.
You receive a CONTEXT passage and a QUESTION.

RULES:
1. Answer with the shortest span copied verbatim from CONTEXT that answers the QUESTION.
2. Do NOT rephrase, explain or add words that are not in CONTEXT.
3. Do NOT use knowledge outside CONTEXT.
4. If CONTEXT holds no answer, reply with the span that is most relevant anyway.
5. Output ONLY the span. No quotes, no markdown.
`

// OpenAIExtractor runs extraction on an OpenAI chat model.
type OpenAIExtractor struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAIExtractor(client openai.Client, model string) *OpenAIExtractor {
	if model == "" {
		model = string(openai.ChatModelGPT5Nano)
	}
	return &OpenAIExtractor{client: client, model: openai.ChatModel(model)}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, question, passage string) (string, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractPrompt),
			openai.UserMessage(fmt.Sprintf("CONTEXT:\n%s\n\nQUESTION:\n%s", passage, question)),
		},
		Model: e.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}

	return strings.Trim(strings.TrimSpace(content), `"`), nil
}
