package audio

import (
	"context"
	log "log/slog"
	"strings"
	"sync"
	"time"
)

type State int

const (
	Idle State = iota
	Playing
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	MsgFinished   = "Playing music..."
	MsgStopped    = "Music stopped."
	MsgPlayFailed = "Sorry, I couldn't play the music."
	MsgStopFailed = "Sorry, I couldn't stop the music."
)

var stopPhrases = []string{"stop music", "stop song"}

// Listener is the part of the voice gateway the player needs to hear
// a stop command while music is on.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

type MusicPlayer struct {
	engine Engine
	track  string
	ears   Listener
	poll   time.Duration

	mu    sync.Mutex
	state State
}

func NewMusicPlayer(engine Engine, track string, ears Listener) *MusicPlayer {
	return &MusicPlayer{
		engine: engine,
		track:  track,
		ears:   ears,
		poll:   time.Second,
	}
}

// SetPollInterval changes the pause between stop-command polls.
func (p *MusicPlayer) SetPollInterval(d time.Duration) { p.poll = d }

func (p *MusicPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *MusicPlayer) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Play starts the track and keeps listening for a stop phrase until the
// track ends. It returns the sentence to speak afterwards.
func (p *MusicPlayer) Play(ctx context.Context) string {
	log.Info("Loading music file", "file", p.track)
	if err := p.engine.Load(p.track); err != nil {
		log.Error("Failed to load music", "file", p.track, "err", err)
		p.setState(Idle)
		return MsgPlayFailed
	}

	if err := p.engine.Play(); err != nil {
		log.Error("Failed to play music", "file", p.track, "err", err)
		p.setState(Idle)
		return MsgPlayFailed
	}

	p.setState(Playing)
	log.Info("Playing music...")

	for p.engine.Busy() {
		text, err := p.ears.Listen(ctx)
		if err == nil && IsStopPhrase(text) {
			p.halt()
			log.Info("Music stopped by user")
			return MsgStopped
		}

		if !p.wait(ctx) {
			p.halt()
			log.Info("Music stopped", "reason", ctx.Err())
			return MsgStopped
		}
	}

	p.setState(Idle)
	log.Info("Music finished playing")
	return MsgFinished
}

// Stop asks the engine to stop whatever it is doing.
func (p *MusicPlayer) Stop() string {
	if err := p.engine.Stop(); err != nil {
		log.Error("Failed to stop music", "err", err)
		return MsgStopFailed
	}

	p.mu.Lock()
	if p.state == Playing {
		p.state = Stopped
	}
	p.mu.Unlock()

	return MsgStopped
}

func (p *MusicPlayer) halt() {
	if err := p.engine.Stop(); err != nil {
		log.Warn("Stopping playback", "err", err)
	}
	p.setState(Stopped)
}

func (p *MusicPlayer) wait(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	if p.poll <= 0 {
		return true
	}

	t := time.NewTimer(p.poll)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func IsStopPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range stopPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
