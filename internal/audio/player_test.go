package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine stays busy for a fixed number of Busy polls.
type fakeEngine struct {
	loadErr  error
	playErr  error
	stopErr  error
	busyFor  int
	loaded   string
	stops    int
	stopped  bool
	busyPoll int
}

func (f *fakeEngine) Load(path string) error {
	f.loaded = path
	return f.loadErr
}

func (f *fakeEngine) Play() error { return f.playErr }

func (f *fakeEngine) Busy() bool {
	if f.stopped {
		return false
	}
	f.busyPoll++
	return f.busyPoll <= f.busyFor
}

func (f *fakeEngine) Stop() error {
	f.stops++
	f.stopped = true
	return f.stopErr
}

type scriptedEars struct {
	replies []string
	calls   int
}

func (s *scriptedEars) Listen(context.Context) (string, error) {
	s.calls++
	if len(s.replies) == 0 {
		return "", errors.New("no speech detected")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func newTestPlayer(e Engine, ears Listener) *MusicPlayer {
	p := NewMusicPlayer(e, "sos.wav", ears)
	p.SetPollInterval(0)
	return p
}

func TestPlayStoppedByVoice(t *testing.T) {
	engine := &fakeEngine{busyFor: 10}
	ears := &scriptedEars{replies: []string{"turn it up", "Please STOP MUSIC now"}}
	p := newTestPlayer(engine, ears)

	assert.Equal(t, MsgStopped, p.Play(context.Background()))
	assert.Equal(t, "sos.wav", engine.loaded)
	assert.Equal(t, 1, engine.stops)
	assert.Equal(t, 2, ears.calls)
	assert.Equal(t, Stopped, p.State())
}

func TestPlayStopSongPhrase(t *testing.T) {
	engine := &fakeEngine{busyFor: 10}
	p := newTestPlayer(engine, &scriptedEars{replies: []string{"stop song"}})
	assert.Equal(t, MsgStopped, p.Play(context.Background()))
}

func TestPlayFinishesNaturally(t *testing.T) {
	engine := &fakeEngine{busyFor: 3}
	ears := &scriptedEars{}
	p := newTestPlayer(engine, ears)

	assert.Equal(t, MsgFinished, p.Play(context.Background()))
	assert.Equal(t, 3, ears.calls)
	assert.Zero(t, engine.stops)
	assert.Equal(t, Idle, p.State())
}

func TestPlayFailures(t *testing.T) {
	tests := []struct {
		name   string
		engine *fakeEngine
	}{
		{"load", &fakeEngine{loadErr: os.ErrNotExist}},
		{"play", &fakeEngine{playErr: errors.New("device busy")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlayer(tt.engine, &scriptedEars{})
			assert.Equal(t, MsgPlayFailed, p.Play(context.Background()))
			assert.Equal(t, Idle, p.State())
		})
	}
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := &fakeEngine{busyFor: 100}
	p := newTestPlayer(engine, &scriptedEars{})
	assert.Equal(t, MsgStopped, p.Play(ctx))
	assert.Equal(t, 1, engine.stops)
}

func TestStop(t *testing.T) {
	p := newTestPlayer(&fakeEngine{}, &scriptedEars{})
	assert.Equal(t, MsgStopped, p.Stop())
	assert.Equal(t, Idle, p.State())

	p = newTestPlayer(&fakeEngine{stopErr: errors.New("boom")}, &scriptedEars{})
	assert.Equal(t, MsgStopFailed, p.Stop())
}

func TestIsStopPhrase(t *testing.T) {
	assert.True(t, IsStopPhrase("Stop Music"))
	assert.True(t, IsStopPhrase("could you stop song please"))
	assert.False(t, IsStopPhrase("stop"))
	assert.False(t, IsStopPhrase("music stop"))
}

func TestBeepEngineLoadErrors(t *testing.T) {
	e := NewBeepEngine(0)

	assert.Error(t, e.Load(filepath.Join(t.TempDir(), "missing.wav")))

	txt := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("la la"), 0o644))
	assert.ErrorContains(t, e.Load(txt), "unsupported audio format")

	bad := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("definitely not riff"), 0o644))
	assert.Error(t, e.Load(bad))

	assert.False(t, e.Busy())
	assert.NoError(t, e.Stop())
}
