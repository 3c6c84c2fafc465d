// Package content loads the static text resources the assistant needs
// at startup: the joke list and the reference passage for questions.
package content

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrResource marks a resource that is missing or unreadable.
var ErrResource = errors.New("resource unavailable")

type Store struct {
	Jokes   []string
	Context string
}

func Load(jokesPath, contextPath string) (*Store, error) {
	jokes, err := LoadJokes(jokesPath)
	if err != nil {
		return nil, err
	}

	passage, err := LoadContext(contextPath)
	if err != nil {
		return nil, err
	}

	return &Store{Jokes: jokes, Context: passage}, nil
}

// LoadJokes returns one joke per line in file order.
func LoadJokes(path string) ([]string, error) {
	text, err := read(path)
	if err != nil {
		return nil, err
	}
	return splitLines(text), nil
}

func LoadContext(path string) (string, error) {
	return read(path)
}

func read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrResource, path, err)
	}
	return string(b), nil
}

// splitLines follows the usual line semantics: a final terminator does
// not start an extra empty line, and \r\n counts as one terminator.
func splitLines(text string) []string {
	if text == "" {
		return []string{}
	}

	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
